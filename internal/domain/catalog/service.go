package catalog

import (
	"context"
	"time"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/pkg/logger"
)

// Service manages branches, items and products.
type Service struct {
	branches BranchRepository
	items    ItemRepository
	products ProductRepository
}

// NewService creates a catalog service.
func NewService(branches BranchRepository, items ItemRepository, products ProductRepository) *Service {
	return &Service{
		branches: branches,
		items:    items,
		products: products,
	}
}

// --- Branches ---

func (s *Service) CreateBranch(ctx context.Context, b *Branch) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.ID = id.New()
	b.CreatedAt = time.Now().UTC()
	if err := s.branches.Create(ctx, b); err != nil {
		return apperror.Wrap(err)
	}
	logger.Info(ctx, "branch created", "branch_id", b.ID, "name", b.Name)
	return nil
}

func (s *Service) GetBranch(ctx context.Context, branchID id.ID) (*Branch, error) {
	b, err := s.branches.GetByID(ctx, branchID)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return b, nil
}

func (s *Service) ListBranches(ctx context.Context) ([]Branch, error) {
	list, err := s.branches.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return list, nil
}

// ValidateBranch reports an unknown branch as a validation failure of the caller's input.
func (s *Service) ValidateBranch(ctx context.Context, branchID id.ID) (*Branch, error) {
	if id.IsNil(branchID) {
		return nil, apperror.NewValidation("branch is required").WithDetail("field", "branchId")
	}
	b, err := s.branches.GetByID(ctx, branchID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewValidation("unknown branch").WithDetail("branch_id", branchID.String())
		}
		return nil, apperror.Wrap(err)
	}
	return b, nil
}

// --- Items ---

func (s *Service) AddItem(ctx context.Context, item *Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	item.ID = id.New()
	item.CreatedAt = time.Now().UTC()
	if err := s.items.Create(ctx, item); err != nil {
		return apperror.Wrap(err)
	}
	logger.Info(ctx, "item added", "item_id", item.ID, "name", item.Name)
	return nil
}

func (s *Service) UpdateItem(ctx context.Context, item *Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if _, err := s.items.GetByID(ctx, item.ID); err != nil {
		return apperror.Wrap(err)
	}
	if err := s.items.Update(ctx, item); err != nil {
		return apperror.Wrap(err)
	}
	return nil
}

func (s *Service) GetItem(ctx context.Context, itemID id.ID) (*Item, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return item, nil
}

func (s *Service) ListItems(ctx context.Context, category string) ([]Item, error) {
	list, err := s.items.List(ctx, category)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return list, nil
}

// ResolveItems loads every referenced item, failing validation on the first unknown id.
func (s *Service) ResolveItems(ctx context.Context, itemIDs []id.ID) (map[id.ID]Item, error) {
	found, err := s.items.GetByIDs(ctx, itemIDs)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	for _, itemID := range itemIDs {
		if _, ok := found[itemID]; !ok {
			return nil, apperror.NewValidation("unknown item").WithDetail("item_id", itemID.String())
		}
	}
	return found, nil
}

// --- Products ---

func (s *Service) AddProduct(ctx context.Context, p *Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.ID = id.New()
	p.CreatedAt = time.Now().UTC()
	if err := s.products.Create(ctx, p); err != nil {
		return apperror.Wrap(err)
	}
	logger.Info(ctx, "product added", "product_id", p.ID, "name", p.Name, "price", p.BasePrice)
	return nil
}

func (s *Service) GetProduct(ctx context.Context, productID id.ID) (*Product, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context, onlyAvailable bool) ([]Product, error) {
	list, err := s.products.List(ctx, onlyAvailable)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return list, nil
}

func (s *Service) UpdatePrice(ctx context.Context, productID id.ID, price types.Money) error {
	if price.IsNegative() {
		return apperror.NewValidation("price must not be negative").WithDetail("field", "price")
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return apperror.Wrap(err)
	}
	if err := s.products.UpdatePrice(ctx, productID, price); err != nil {
		return apperror.Wrap(err)
	}
	logger.Info(ctx, "product price updated", "product_id", productID, "price", price)
	return nil
}

func (s *Service) SetAvailability(ctx context.Context, productID id.ID, available bool) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return apperror.Wrap(err)
	}
	if err := s.products.SetAvailability(ctx, productID, available); err != nil {
		return apperror.Wrap(err)
	}
	return nil
}
