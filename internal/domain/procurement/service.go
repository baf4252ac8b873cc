package procurement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/numerator"
	"slice/internal/core/tx"
	"slice/internal/core/types"
	"slice/internal/domain/catalog"
	"slice/internal/domain/events"
	"slice/internal/domain/ledger"
	"slice/internal/domain/stock"
	"slice/pkg/logger"
)

const defaultListLimit = 50

// Catalog resolves the branch and items of a purchase.
type Catalog interface {
	ValidateBranch(ctx context.Context, branchID id.ID) (*catalog.Branch, error)
	ResolveItems(ctx context.Context, itemIDs []id.ID) (map[id.ID]catalog.Item, error)
}

// Stock receives purchased quantities.
type Stock interface {
	Ensure(ctx context.Context, branchID, itemID id.ID) (*stock.Record, error)
	Credit(ctx context.Context, branchID, itemID id.ID, amount types.Quantity) error
}

// Ledger posts the purchase expense.
type Ledger interface {
	Expense(ctx context.Context, branchID id.ID, category string, amount types.Money, description string, referenceID id.ID, userID string) (*ledger.Entry, error)
}

// Service is the purchase orchestrator and the inventory cost source.
type Service struct {
	txm       tx.Manager
	repo      Repository
	catalog   Catalog
	stock     Stock
	ledger    Ledger
	numerator numerator.Generator
	events    events.Publisher
}

// NewService creates a procurement service.
func NewService(
	txm tx.Manager,
	repo Repository,
	cat Catalog,
	stk Stock,
	led Ledger,
	num numerator.Generator,
	publisher events.Publisher,
) *Service {
	return &Service{
		txm:       txm,
		repo:      repo,
		catalog:   cat,
		stock:     stk,
		ledger:    led,
		numerator: num,
		events:    publisher,
	}
}

// ProcessPurchase converts bulk lines into base units, increments stock and
// posts one Ingredients expense for the purchase total.
func (s *Service) ProcessPurchase(ctx context.Context, in Input) (*Purchase, error) {
	supplier := strings.TrimSpace(in.Supplier)
	if supplier == "" {
		return nil, apperror.NewValidation("supplier is required").WithDetail("field", "supplier")
	}
	if len(in.Lines) == 0 {
		return nil, apperror.NewValidation("purchase must have at least one line")
	}
	ids := make([]id.ID, 0, len(in.Lines))
	for i, l := range in.Lines {
		if !l.Quantity.IsPositive() {
			return nil, apperror.NewValidation(fmt.Sprintf("line %d: quantity must be positive", i)).
				WithDetail("item_id", l.ItemID.String())
		}
		if l.UnitPrice.IsNegative() {
			return nil, apperror.NewValidation(fmt.Sprintf("line %d: unit price must not be negative", i)).
				WithDetail("item_id", l.ItemID.String())
		}
		ids = append(ids, l.ItemID)
	}

	var p *Purchase
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.catalog.ValidateBranch(ctx, in.BranchID); err != nil {
			return err
		}
		items, err := s.catalog.ResolveItems(ctx, ids)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(numerator.PrefixPurchase), nil, now)
		if err != nil {
			return fmt.Errorf("generate purchase number: %w", err)
		}

		p = &Purchase{
			ID:           id.New(),
			Number:       number,
			BranchID:     in.BranchID,
			Supplier:     supplier,
			TotalAmount:  types.Zero(),
			PurchasedBy:  in.UserID,
			PurchaseDate: now,
			Details:      make([]Detail, 0, len(in.Lines)),
		}
		for _, l := range in.Lines {
			d, err := convertLine(p.ID, items[l.ItemID], l)
			if err != nil {
				return err
			}
			p.TotalAmount = p.TotalAmount.Add(d.LineTotal)
			p.Details = append(p.Details, d)
		}

		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}

		for _, d := range p.Details {
			if _, err := s.stock.Ensure(ctx, p.BranchID, d.ItemID); err != nil {
				return err
			}
			if err := s.stock.Credit(ctx, p.BranchID, d.ItemID, d.Quantity); err != nil {
				return err
			}
		}

		desc := fmt.Sprintf("Purchase from %s", supplier)
		if _, err := s.ledger.Expense(ctx, p.BranchID, ledger.CategoryIngredients, p.TotalAmount, desc, p.ID, in.UserID); err != nil {
			return err
		}

		return s.events.Publish(ctx, events.Event{
			AggregateType: events.AggregatePurchase,
			AggregateID:   p.ID,
			Type:          events.TypePurchaseReceived,
			Payload: Payload{
				PurchaseID:  p.ID,
				Number:      p.Number,
				BranchID:    p.BranchID,
				Supplier:    p.Supplier,
				TotalAmount: p.TotalAmount,
			},
		})
	})
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	logger.Info(ctx, "purchase received",
		"purchase_id", p.ID,
		"number", p.Number,
		"branch_id", p.BranchID,
		"lines", len(p.Details),
		"total", p.TotalAmount,
	)
	return p, nil
}

// convertLine turns a bulk line into base units: quantity × ratio and price / ratio.
func convertLine(purchaseID id.ID, item catalog.Item, l LineInput) (Detail, error) {
	ratio := item.Ratio()
	baseQty, err := l.Quantity.MulDecimal(ratio)
	if err != nil {
		return Detail{}, apperror.NewValidation("quantity too large after unit conversion").
			WithDetail("item_id", l.ItemID.String()).
			WithDetail("quantity", l.Quantity.String()).
			WithDetail("conversion_ratio", ratio.String())
	}
	return Detail{
		ID:              id.New(),
		PurchaseID:      purchaseID,
		ItemID:          l.ItemID,
		ItemName:        item.Name,
		BulkQuantity:    l.Quantity,
		BulkUnitPrice:   l.UnitPrice,
		ConversionRatio: ratio,
		Quantity:        baseQty,
		UnitPrice:       l.UnitPrice.DivRound(ratio, 8),
		LineTotal:       l.Quantity.Times(l.UnitPrice),
	}, nil
}

// LatestUnitCost returns the base-unit cost of the item's most recent
// purchase across all branches, or zero when it was never purchased.
func (s *Service) LatestUnitCost(ctx context.Context, itemID id.ID) (types.Money, error) {
	cost, found, err := s.repo.LatestUnitCost(ctx, itemID)
	if err != nil {
		return types.Zero(), apperror.Wrap(fmt.Errorf("latest unit cost: %w", err))
	}
	if !found {
		return types.Zero(), nil
	}
	return cost, nil
}

// Get returns a purchase with its details.
func (s *Service) Get(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	p, err := s.repo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return p, nil
}

// List returns the latest purchases of a branch, newest first.
func (s *Service) List(ctx context.Context, branchID id.ID, limit int) ([]Purchase, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	list, err := s.repo.List(ctx, branchID, limit)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return list, nil
}
