package waste

import (
	"context"

	"slice/internal/core/id"
)

// Repository stores waste records.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	ListRecent(ctx context.Context, branchID id.ID, limit int) ([]Record, error)
}
