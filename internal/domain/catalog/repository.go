package catalog

import (
	"context"

	"slice/internal/core/id"
	"slice/internal/core/types"
)

// BranchRepository persists branches.
type BranchRepository interface {
	Create(ctx context.Context, b *Branch) error
	// GetByID returns apperror NotFound when the branch does not exist.
	GetByID(ctx context.Context, branchID id.ID) (*Branch, error)
	List(ctx context.Context) ([]Branch, error)
}

// ItemRepository persists master inventory items.
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)
	// GetByIDs returns the items found; missing ids are simply absent from the map.
	GetByIDs(ctx context.Context, itemIDs []id.ID) (map[id.ID]Item, error)
	List(ctx context.Context, category string) ([]Item, error)
}

// ProductRepository persists menu products.
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	List(ctx context.Context, onlyAvailable bool) ([]Product, error)
	UpdatePrice(ctx context.Context, productID id.ID, price types.Money) error
	SetAvailability(ctx context.Context, productID id.ID, available bool) error
}
