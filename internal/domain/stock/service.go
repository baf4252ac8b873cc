package stock

import (
	"context"
	"fmt"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/events"
	"slice/pkg/logger"
)

// DefaultLowStockThreshold applies to records created by purchases and transfers.
var DefaultLowStockThreshold = types.NewQuantityFromInt(10)

// Service mutates and reads the stock ledger.
// Mutating methods must be called inside a transaction owned by the orchestrator.
type Service struct {
	repo      Repository
	events    events.Publisher
	threshold types.Quantity
}

// NewService creates a stock service. A zero threshold selects DefaultLowStockThreshold.
func NewService(repo Repository, publisher events.Publisher, threshold types.Quantity) *Service {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		events:    publisher,
		threshold: threshold,
	}
}

// Deduct removes amount from the branch's stock of item or fails with InsufficientStock.
// Nothing is written when the deduction fails.
func (s *Service) Deduct(ctx context.Context, branchID, itemID id.ID, amount types.Quantity) error {
	if !amount.IsPositive() {
		return apperror.NewValidation("deduction amount must be positive").
			WithDetail("item_id", itemID.String())
	}

	level, ok, err := s.repo.Deduct(ctx, branchID, itemID, amount)
	if err != nil {
		return apperror.Wrap(fmt.Errorf("deduct stock: %w", err))
	}
	if !ok {
		return s.insufficient(ctx, branchID, itemID, amount)
	}

	if level.Quantity <= level.Threshold {
		if err := s.events.Publish(ctx, events.Event{
			AggregateType: events.AggregateStock,
			AggregateID:   level.StockID,
			Type:          events.TypeStockLow,
			Payload: LowStockPayload{
				BranchID:  branchID,
				ItemID:    itemID,
				Quantity:  level.Quantity,
				Threshold: level.Threshold,
			},
		}); err != nil {
			return apperror.Wrap(fmt.Errorf("publish low stock: %w", err))
		}
		logger.Warn(ctx, "stock below threshold",
			"branch_id", branchID,
			"item_id", itemID,
			"quantity", level.Quantity,
			"threshold", level.Threshold,
		)
	}
	return nil
}

func (s *Service) insufficient(ctx context.Context, branchID, itemID id.ID, amount types.Quantity) error {
	var available types.Quantity
	var itemName string
	rec, err := s.repo.Get(ctx, branchID, itemID)
	switch {
	case err == nil:
		available = rec.CurrentQuantity
		itemName = rec.ItemName
	case apperror.IsNotFound(err):
	default:
		return apperror.Wrap(fmt.Errorf("read stock: %w", err))
	}

	appErr := apperror.NewInsufficientStock(itemID.String(), amount.String(), available.String()).
		WithDetail("branch_id", branchID.String())
	if itemName != "" {
		appErr = appErr.WithDetail("item_name", itemName)
	}
	return appErr
}

// Credit adds amount to the branch's stock of item, creating the record if needed.
func (s *Service) Credit(ctx context.Context, branchID, itemID id.ID, amount types.Quantity) error {
	if !amount.IsPositive() {
		return apperror.NewValidation("credit amount must be positive").
			WithDetail("item_id", itemID.String())
	}
	if _, err := s.repo.Credit(ctx, branchID, itemID, amount, s.threshold); err != nil {
		return apperror.Wrap(fmt.Errorf("credit stock: %w", err))
	}
	return nil
}

// Ensure returns the record for (branch, item), creating an empty one when absent.
func (s *Service) Ensure(ctx context.Context, branchID, itemID id.ID) (*Record, error) {
	rec, err := s.repo.Ensure(ctx, branchID, itemID, s.threshold)
	if err != nil {
		return nil, apperror.Wrap(fmt.Errorf("ensure stock: %w", err))
	}
	return rec, nil
}

// Overwrite replaces the quantity of a record with a counted value.
func (s *Service) Overwrite(ctx context.Context, stockID id.ID, qty types.Quantity) error {
	if qty.IsNegative() {
		return apperror.NewValidation("quantity must not be negative").WithDetail("stock_id", stockID.String())
	}
	if err := s.repo.Overwrite(ctx, stockID, qty); err != nil {
		return apperror.Wrap(fmt.Errorf("overwrite stock: %w", err))
	}
	return nil
}

// Get returns the record for (branch, item) or NotFound.
func (s *Service) Get(ctx context.Context, branchID, itemID id.ID) (*Record, error) {
	rec, err := s.repo.Get(ctx, branchID, itemID)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return rec, nil
}

// GetByID returns the record or NotFound.
func (s *Service) GetByID(ctx context.Context, stockID id.ID) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, stockID)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return rec, nil
}

// ListBranch returns every stock record of a branch.
func (s *Service) ListBranch(ctx context.Context, branchID id.ID) ([]Record, error) {
	list, err := s.repo.ListByBranch(ctx, branchID, Filter{})
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return list, nil
}

// ListLowStock returns records at or below their threshold.
func (s *Service) ListLowStock(ctx context.Context, branchID id.ID) ([]Record, error) {
	list, err := s.repo.ListByBranch(ctx, branchID, Filter{LowOnly: true})
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return list, nil
}

// QuantitiesFor returns current quantities for the given items; absent records are omitted.
func (s *Service) QuantitiesFor(ctx context.Context, branchID id.ID, itemIDs []id.ID) (map[id.ID]types.Quantity, error) {
	out := make(map[id.ID]types.Quantity, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	list, err := s.repo.ListByBranch(ctx, branchID, Filter{ItemIDs: itemIDs})
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	for _, r := range list {
		out[r.ItemID] = r.CurrentQuantity
	}
	return out, nil
}

// SetThreshold changes the low-stock threshold of a record.
func (s *Service) SetThreshold(ctx context.Context, stockID id.ID, threshold types.Quantity) error {
	if threshold.IsNegative() {
		return apperror.NewValidation("threshold must not be negative").WithDetail("field", "threshold")
	}
	if _, err := s.repo.GetByID(ctx, stockID); err != nil {
		return apperror.Wrap(err)
	}
	if err := s.repo.SetThreshold(ctx, stockID, threshold); err != nil {
		return apperror.Wrap(err)
	}
	return nil
}
