package transfer

import (
	"context"

	"slice/internal/core/id"
)

// Repository stores waybills.
type Repository interface {
	// Create inserts the header and its lines.
	Create(ctx context.Context, t *Transfer) error

	// GetByID returns the transfer with lines or NotFound.
	GetByID(ctx context.Context, transferID id.ID) (*Transfer, error)

	// GetForUpdate is GetByID holding a row lock on the header until the transaction ends.
	GetForUpdate(ctx context.Context, transferID id.ID) (*Transfer, error)

	// UpdateStatus persists status, sender, receiver and dates only while the
	// stored status still equals expected. ok is false when it did not.
	UpdateStatus(ctx context.Context, t *Transfer, expected Status) (ok bool, err error)

	// ListOutgoing returns Pending and In-Transit transfers from a branch,
	// Pending first, then by sent date ascending.
	ListOutgoing(ctx context.Context, branchID id.ID) ([]Transfer, error)

	// ListIncoming returns In-Transit transfers to a branch, newest sent first.
	ListIncoming(ctx context.Context, branchID id.ID) ([]Transfer, error)
}
