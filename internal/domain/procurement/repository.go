package procurement

import (
	"context"

	"slice/internal/core/id"
	"slice/internal/core/types"
)

// Repository stores purchases.
type Repository interface {
	// Create inserts the header and its details.
	Create(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error)
	List(ctx context.Context, branchID id.ID, limit int) ([]Purchase, error)
	// LatestUnitCost returns the base-unit price of the most recent purchase
	// detail for the item across all branches. found is false when never purchased.
	LatestUnitCost(ctx context.Context, itemID id.ID) (cost types.Money, found bool, err error)
}
