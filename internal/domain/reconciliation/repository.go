package reconciliation

import (
	"context"

	"slice/internal/core/id"
)

// Repository stores inventory adjustments.
type Repository interface {
	Create(ctx context.Context, a *Adjustment) error
	ListByBranch(ctx context.Context, branchID id.ID, limit int) ([]Adjustment, error)
}
