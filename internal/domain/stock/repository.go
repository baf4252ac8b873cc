package stock

import (
	"context"

	"slice/internal/core/id"
	"slice/internal/core/types"
)

// Repository defines storage operations for branch inventory.
// All methods run in the transaction carried by ctx when there is one.
type Repository interface {
	// Deduct subtracts amount only when current_quantity >= amount.
	// ok is false when no row matched, either because the record is missing or short.
	Deduct(ctx context.Context, branchID, itemID id.ID, amount types.Quantity) (level Level, ok bool, err error)

	// Credit adds amount, creating the record with the given threshold if absent.
	Credit(ctx context.Context, branchID, itemID id.ID, amount, threshold types.Quantity) (Level, error)

	// Ensure creates a zero record if absent and returns the current one.
	Ensure(ctx context.Context, branchID, itemID id.ID, threshold types.Quantity) (*Record, error)

	// Overwrite sets the quantity of a record unconditionally.
	Overwrite(ctx context.Context, stockID id.ID, qty types.Quantity) error

	Get(ctx context.Context, branchID, itemID id.ID) (*Record, error)
	GetByID(ctx context.Context, stockID id.ID) (*Record, error)
	ListByBranch(ctx context.Context, branchID id.ID, filter Filter) ([]Record, error)
	SetThreshold(ctx context.Context, stockID id.ID, threshold types.Quantity) error
}
