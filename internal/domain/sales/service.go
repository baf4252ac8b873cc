package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/tx"
	"slice/internal/core/types"
	"slice/internal/domain/catalog"
	"slice/internal/domain/events"
	"slice/internal/domain/ledger"
	"slice/internal/domain/recipe"
	"slice/pkg/logger"
)

const (
	defaultRecentLimit = 50

	// MaxQuantity bounds the portions of one sale.
	MaxQuantity int64 = 10_000
)

// Catalog resolves the branch and product of a sale.
type Catalog interface {
	ValidateBranch(ctx context.Context, branchID id.ID) (*catalog.Branch, error)
	GetProduct(ctx context.Context, productID id.ID) (*catalog.Product, error)
}

// Recipes expands a sale into ingredient requirements.
type Recipes interface {
	ComputeDeduction(ctx context.Context, productID id.ID, quantity int64) ([]recipe.Requirement, error)
}

// Stock deducts ingredients.
type Stock interface {
	Deduct(ctx context.Context, branchID, itemID id.ID, amount types.Quantity) error
}

// Ledger posts the sale revenue.
type Ledger interface {
	Income(ctx context.Context, branchID id.ID, category string, amount types.Money, description string, referenceID id.ID, userID string) (*ledger.Entry, error)
}

// Service is the sale orchestrator.
type Service struct {
	txm     tx.Manager
	repo    Repository
	catalog Catalog
	recipes Recipes
	stock   Stock
	ledger  Ledger
	events  events.Publisher
}

// NewService creates a sales service.
func NewService(txm tx.Manager, repo Repository, cat Catalog, recipes Recipes, stock Stock, led Ledger, publisher events.Publisher) *Service {
	return &Service{
		txm:     txm,
		repo:    repo,
		catalog: cat,
		recipes: recipes,
		stock:   stock,
		ledger:  led,
		events:  publisher,
	}
}

// ProcessSale deducts every ingredient, records the sale and posts the income
// in one transaction. Any short ingredient rolls back the whole sale.
func (s *Service) ProcessSale(ctx context.Context, in Input) (*Sale, error) {
	if in.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if in.Quantity > MaxQuantity {
		return nil, apperror.NewValidation(fmt.Sprintf("quantity must not exceed %d", MaxQuantity)).
			WithDetail("field", "quantity")
	}
	if id.IsNil(in.ProductID) {
		return nil, apperror.NewValidation("product is required").WithDetail("field", "productId")
	}

	var sale *Sale
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.catalog.ValidateBranch(ctx, in.BranchID); err != nil {
			return err
		}
		product, err := s.catalog.GetProduct(ctx, in.ProductID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewValidation("unknown product").WithDetail("product_id", in.ProductID.String())
			}
			return err
		}
		if !product.IsAvailable {
			return apperror.NewValidation("product is not available").WithDetail("product_id", in.ProductID.String())
		}

		price := product.BasePrice
		reqs, err := s.recipes.ComputeDeduction(ctx, product.ID, in.Quantity)
		if err != nil {
			return err
		}
		for _, r := range reqs {
			if err := s.stock.Deduct(ctx, in.BranchID, r.ItemID, r.Amount); err != nil {
				return err
			}
		}

		total := price.Mul(decimal.NewFromInt(in.Quantity))
		sale = &Sale{
			ID:              id.New(),
			BranchID:        in.BranchID,
			ProductID:       product.ID,
			ProductName:     product.Name,
			QuantitySold:    in.Quantity,
			UnitPrice:       price,
			TotalAmount:     total,
			SoldBy:          in.UserID,
			TransactionDate: time.Now().UTC(),
		}
		if err := s.repo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		desc := fmt.Sprintf("Sale: %d x %s", in.Quantity, product.Name)
		if _, err := s.ledger.Income(ctx, in.BranchID, ledger.CategorySales, total, desc, sale.ID, in.UserID); err != nil {
			return err
		}

		return s.events.Publish(ctx, events.Event{
			AggregateType: events.AggregateSale,
			AggregateID:   sale.ID,
			Type:          events.TypeSaleProcessed,
			Payload: Payload{
				SaleID:      sale.ID,
				BranchID:    sale.BranchID,
				ProductID:   sale.ProductID,
				Quantity:    sale.QuantitySold,
				TotalAmount: sale.TotalAmount,
			},
		})
	})
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	logger.Info(ctx, "sale processed",
		"sale_id", sale.ID,
		"branch_id", sale.BranchID,
		"product_id", sale.ProductID,
		"quantity", sale.QuantitySold,
		"total", sale.TotalAmount,
	)
	return sale, nil
}

// ListRecent returns the latest sales of a branch, newest first.
func (s *Service) ListRecent(ctx context.Context, branchID id.ID, limit int) ([]Sale, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	list, err := s.repo.ListRecent(ctx, branchID, limit)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return list, nil
}
