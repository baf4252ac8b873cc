package waste

import (
	"context"
	"fmt"
	"strings"
	"time"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/tx"
	"slice/internal/core/types"
	"slice/internal/domain/catalog"
	"slice/internal/domain/events"
	"slice/internal/domain/ledger"
	"slice/pkg/logger"
)

const defaultRecentLimit = 50

// Catalog resolves the branch and item of a waste report.
type Catalog interface {
	ValidateBranch(ctx context.Context, branchID id.ID) (*catalog.Branch, error)
	ResolveItems(ctx context.Context, itemIDs []id.ID) (map[id.ID]catalog.Item, error)
}

// Stock deducts wasted quantity.
type Stock interface {
	Deduct(ctx context.Context, branchID, itemID id.ID, amount types.Quantity) error
}

// CostSource values inventory at the latest known purchase price per base unit.
type CostSource interface {
	LatestUnitCost(ctx context.Context, itemID id.ID) (types.Money, error)
}

// Ledger posts the waste expense.
type Ledger interface {
	Expense(ctx context.Context, branchID id.ID, category string, amount types.Money, description string, referenceID id.ID, userID string) (*ledger.Entry, error)
}

// Service is the waste orchestrator.
type Service struct {
	txm     tx.Manager
	repo    Repository
	catalog Catalog
	stock   Stock
	costs   CostSource
	ledger  Ledger
	events  events.Publisher
}

// NewService creates a waste service.
func NewService(txm tx.Manager, repo Repository, cat Catalog, stock Stock, costs CostSource, led Ledger, publisher events.Publisher) *Service {
	return &Service{
		txm:     txm,
		repo:    repo,
		catalog: cat,
		stock:   stock,
		costs:   costs,
		ledger:  led,
		events:  publisher,
	}
}

// RecordWaste deducts the wasted quantity, logs it and books the loss.
// Reporting more than is on hand fails with InsufficientStock.
func (s *Service) RecordWaste(ctx context.Context, in Input) (*Record, error) {
	if !in.Quantity.IsPositive() {
		return nil, apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, apperror.NewValidation("reason is required").WithDetail("field", "reason")
	}

	var rec *Record
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.catalog.ValidateBranch(ctx, in.BranchID); err != nil {
			return err
		}
		items, err := s.catalog.ResolveItems(ctx, []id.ID{in.ItemID})
		if err != nil {
			return err
		}
		item := items[in.ItemID]

		if err := s.stock.Deduct(ctx, in.BranchID, in.ItemID, in.Quantity); err != nil {
			return err
		}

		cost, err := s.costs.LatestUnitCost(ctx, in.ItemID)
		if err != nil {
			return err
		}

		rec = &Record{
			ID:           id.New(),
			BranchID:     in.BranchID,
			ItemID:       in.ItemID,
			ItemName:     item.Name,
			Quantity:     in.Quantity,
			Reason:       reason,
			UnitCost:     cost,
			TotalCost:    in.Quantity.Times(cost),
			RecordedBy:   in.UserID,
			DateRecorded: time.Now().UTC(),
		}
		if err := s.repo.Create(ctx, rec); err != nil {
			return fmt.Errorf("create waste record: %w", err)
		}

		if rec.TotalCost.IsPositive() {
			desc := fmt.Sprintf("Waste: %s %s (%s)", in.Quantity, item.Name, reason)
			if _, err := s.ledger.Expense(ctx, in.BranchID, ledger.CategoryWaste, rec.TotalCost, desc, rec.ID, in.UserID); err != nil {
				return err
			}
		}

		return s.events.Publish(ctx, events.Event{
			AggregateType: events.AggregateWaste,
			AggregateID:   rec.ID,
			Type:          events.TypeWasteRecorded,
			Payload:       rec,
		})
	})
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	logger.Info(ctx, "waste recorded",
		"waste_id", rec.ID,
		"branch_id", rec.BranchID,
		"item_id", rec.ItemID,
		"quantity", rec.Quantity,
		"cost", rec.TotalCost,
	)
	return rec, nil
}

// ListRecent returns the latest waste records of a branch, newest first.
func (s *Service) ListRecent(ctx context.Context, branchID id.ID, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	list, err := s.repo.ListRecent(ctx, branchID, limit)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return list, nil
}
