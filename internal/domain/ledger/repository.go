package ledger

import (
	"context"

	"slice/internal/core/id"
)

// Repository stores journal entries.
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	List(ctx context.Context, filter Filter) ([]Entry, error)
	ListByReference(ctx context.Context, referenceID id.ID) ([]Entry, error)
}
