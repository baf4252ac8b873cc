package sales

import (
	"context"

	"slice/internal/core/id"
)

// Repository stores sales transactions.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	ListRecent(ctx context.Context, branchID id.ID, limit int) ([]Sale, error)
}
