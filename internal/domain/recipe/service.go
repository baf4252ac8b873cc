package recipe

import (
	"context"
	"fmt"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/tx"
	"slice/internal/core/types"
	"slice/internal/domain/catalog"
	"slice/pkg/logger"
)

// Catalog is the part of the catalog service recipes depend on.
type Catalog interface {
	GetProduct(ctx context.Context, productID id.ID) (*catalog.Product, error)
	ListProducts(ctx context.Context, onlyAvailable bool) ([]catalog.Product, error)
	ResolveItems(ctx context.Context, itemIDs []id.ID) (map[id.ID]catalog.Item, error)
}

// StockReader returns current quantities of items at a branch.
type StockReader interface {
	QuantitiesFor(ctx context.Context, branchID id.ID, itemIDs []id.ID) (map[id.ID]types.Quantity, error)
}

// Service answers recipe questions against live stock.
type Service struct {
	txm     tx.Manager
	repo    Repository
	catalog Catalog
	stock   StockReader
}

// NewService creates a recipe service.
func NewService(txm tx.Manager, repo Repository, cat Catalog, stock StockReader) *Service {
	return &Service{
		txm:     txm,
		repo:    repo,
		catalog: cat,
		stock:   stock,
	}
}

// ComputeMaxCookable returns how many units of productID branchID can still prepare.
func (s *Service) ComputeMaxCookable(ctx context.Context, branchID, productID id.ID) (int64, error) {
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return 0, err
	}
	lines, err := s.lines(ctx, productID)
	if err != nil {
		return 0, err
	}
	return s.maxCookable(ctx, branchID, lines)
}

func (s *Service) maxCookable(ctx context.Context, branchID id.ID, lines []Line) (int64, error) {
	if len(lines) == 0 {
		return Unbounded, nil
	}
	qty, err := s.stock.QuantitiesFor(ctx, branchID, itemIDs(lines))
	if err != nil {
		return 0, err
	}
	return ComputeMaxCookable(lines, qty), nil
}

// ComputeDeduction returns the ingredient amounts consumed by selling quantity units.
func (s *Service) ComputeDeduction(ctx context.Context, productID id.ID, quantity int64) ([]Requirement, error) {
	if quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	lines, err := s.lines(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ComputeDeduction(lines, quantity)
}

// GetRecipe returns the lines of a product.
func (s *Service) GetRecipe(ctx context.Context, productID id.ID) ([]Line, error) {
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.lines(ctx, productID)
}

// SetRecipe replaces all lines of a product.
func (s *Service) SetRecipe(ctx context.Context, productID id.ID, input []LineInput) ([]Line, error) {
	ids := make([]id.ID, 0, len(input))
	seen := make(map[id.ID]struct{}, len(input))
	for i, in := range input {
		if in.RequiredQty.IsNegative() {
			return nil, apperror.NewValidation(fmt.Sprintf("line %d: required quantity must not be negative", i)).
				WithDetail("item_id", in.ItemID.String())
		}
		if _, dup := seen[in.ItemID]; dup {
			return nil, apperror.NewValidation(fmt.Sprintf("line %d: duplicate ingredient", i)).
				WithDetail("item_id", in.ItemID.String())
		}
		seen[in.ItemID] = struct{}{}
		ids = append(ids, in.ItemID)
	}

	var out []Line
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
			return err
		}
		items, err := s.catalog.ResolveItems(ctx, ids)
		if err != nil {
			return err
		}

		out = make([]Line, 0, len(input))
		for _, in := range input {
			item := items[in.ItemID]
			out = append(out, Line{
				ProductID:   productID,
				ItemID:      in.ItemID,
				ItemName:    item.Name,
				BaseUnit:    item.BaseUnit,
				RequiredQty: in.RequiredQty,
			})
		}
		if err := s.repo.ReplaceLines(ctx, productID, out); err != nil {
			return fmt.Errorf("replace recipe lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	logger.Info(ctx, "recipe saved", "product_id", productID, "lines", len(out))
	return out, nil
}

// Menu lists available products with their price and cookable cap at branchID.
func (s *Service) Menu(ctx context.Context, branchID id.ID) ([]MenuEntry, error) {
	products, err := s.catalog.ListProducts(ctx, true)
	if err != nil {
		return nil, err
	}

	menu := make([]MenuEntry, 0, len(products))
	for _, p := range products {
		lines, err := s.lines(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		limit, err := s.maxCookable(ctx, branchID, lines)
		if err != nil {
			return nil, err
		}
		menu = append(menu, MenuEntry{
			ProductID:   p.ID,
			Name:        p.Name,
			Category:    p.Category,
			Price:       p.BasePrice,
			MaxCookable: limit,
		})
	}
	return menu, nil
}

func (s *Service) lines(ctx context.Context, productID id.ID) ([]Line, error) {
	lines, err := s.repo.LinesForProduct(ctx, productID)
	if err != nil {
		return nil, apperror.Wrap(fmt.Errorf("load recipe: %w", err))
	}
	return lines, nil
}
