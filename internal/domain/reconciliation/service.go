package reconciliation

import (
	"context"
	"fmt"
	"time"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/tx"
	"slice/internal/core/types"
	"slice/internal/domain/audit"
	"slice/internal/domain/events"
	"slice/internal/domain/ledger"
	"slice/internal/domain/stock"
	"slice/pkg/logger"
)

const defaultHistoryLimit = 100

// Stock reads and overwrites counted records.
type Stock interface {
	GetByID(ctx context.Context, stockID id.ID) (*stock.Record, error)
	ListBranch(ctx context.Context, branchID id.ID) ([]stock.Record, error)
	Overwrite(ctx context.Context, stockID id.ID, qty types.Quantity) error
}

// CostSource values inventory at the latest known purchase price per base unit.
type CostSource interface {
	LatestUnitCost(ctx context.Context, itemID id.ID) (types.Money, error)
}

// Ledger posts leakage expense.
type Ledger interface {
	Expense(ctx context.Context, branchID id.ID, category string, amount types.Money, description string, referenceID id.ID, userID string) (*ledger.Entry, error)
}

// Service is the reconciliation orchestrator.
type Service struct {
	txm    tx.Manager
	repo   Repository
	stock  Stock
	costs  CostSource
	ledger Ledger
	events events.Publisher
	audit  audit.Recorder
}

// NewService creates a reconciliation service.
func NewService(
	txm tx.Manager,
	repo Repository,
	stk Stock,
	costs CostSource,
	led Ledger,
	publisher events.Publisher,
	recorder audit.Recorder,
) *Service {
	return &Service{
		txm:    txm,
		repo:   repo,
		stock:  stk,
		costs:  costs,
		ledger: led,
		events: publisher,
		audit:  recorder,
	}
}

// SaveAdjustment records the variance between systemQty and physicalQty,
// overwrites the stock with the physical count and books any shortfall.
func (s *Service) SaveAdjustment(ctx context.Context, in Input) (*Adjustment, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var adj *Adjustment
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		adj, err = s.adjust(ctx, in)
		return err
	})
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	logger.Info(ctx, "stock adjusted",
		"adjustment_id", adj.ID,
		"stock_id", adj.StockID,
		"variance", adj.Variance,
		"loss", adj.LossAmount,
	)
	return adj, nil
}

// Sheet returns the branch's stock records for counting.
func (s *Service) Sheet(ctx context.Context, branchID id.ID) ([]SheetRow, error) {
	records, err := s.stock.ListBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	rows := make([]SheetRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, SheetRow{
			StockID:   r.ID,
			ItemID:    r.ItemID,
			ItemName:  r.ItemName,
			Category:  r.Category,
			BaseUnit:  r.BaseUnit,
			SystemQty: r.CurrentQuantity,
		})
	}
	return rows, nil
}

// SubmitCount applies a full count sheet in one transaction. Rows whose
// physical count equals the current quantity are skipped.
func (s *Service) SubmitCount(ctx context.Context, branchID id.ID, userID string, counts []Count) ([]Adjustment, error) {
	if id.IsNil(branchID) {
		return nil, apperror.NewValidation("branch is required").WithDetail("field", "branchId")
	}
	if len(counts) == 0 {
		return nil, apperror.NewValidation("count sheet is empty")
	}

	var out []Adjustment
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, c := range counts {
			rec, err := s.stock.GetByID(ctx, c.StockID)
			if err != nil {
				return err
			}
			if rec.BranchID != branchID {
				return apperror.NewValidation("stock record belongs to another branch").
					WithDetail("stock_id", c.StockID.String())
			}
			if rec.CurrentQuantity == c.PhysicalQty {
				continue
			}

			in := Input{
				StockID:     rec.ID,
				BranchID:    rec.BranchID,
				ItemID:      rec.ItemID,
				SystemQty:   rec.CurrentQuantity,
				PhysicalQty: c.PhysicalQty,
				UserID:      userID,
			}
			if err := validateInput(in); err != nil {
				return err
			}
			adj, err := s.adjust(ctx, in)
			if err != nil {
				return err
			}
			out = append(out, *adj)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	logger.Info(ctx, "count submitted", "branch_id", branchID, "rows", len(counts), "adjusted", len(out))
	return out, nil
}

// History returns the latest adjustments of a branch, newest first.
func (s *Service) History(ctx context.Context, branchID id.ID, limit int) ([]Adjustment, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	list, err := s.repo.ListByBranch(ctx, branchID, limit)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return list, nil
}

func validateInput(in Input) error {
	if id.IsNil(in.StockID) {
		return apperror.NewValidation("stock record is required").WithDetail("field", "stockId")
	}
	if in.PhysicalQty.IsNegative() {
		return apperror.NewValidation("physical quantity must not be negative").
			WithDetail("stock_id", in.StockID.String())
	}
	if in.SystemQty.IsNegative() {
		return apperror.NewValidation("system quantity must not be negative").
			WithDetail("stock_id", in.StockID.String())
	}
	return nil
}

// adjust must run inside a transaction.
func (s *Service) adjust(ctx context.Context, in Input) (*Adjustment, error) {
	rec, err := s.stock.GetByID(ctx, in.StockID)
	if err != nil {
		return nil, err
	}
	if rec.BranchID != in.BranchID || rec.ItemID != in.ItemID {
		return nil, apperror.NewValidation("stock record does not match branch and item").
			WithDetail("stock_id", in.StockID.String())
	}

	cost, err := s.costs.LatestUnitCost(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}

	variance := in.PhysicalQty - in.SystemQty
	loss := types.Zero()
	if variance.IsNegative() {
		loss = variance.Abs().Times(cost)
	}

	adj := &Adjustment{
		ID:             id.New(),
		StockID:        rec.ID,
		BranchID:       rec.BranchID,
		ItemID:         rec.ItemID,
		ItemName:       rec.ItemName,
		SystemQty:      in.SystemQty,
		PhysicalQty:    in.PhysicalQty,
		Variance:       variance,
		UnitCost:       cost,
		LossAmount:     loss,
		AdjustedBy:     in.UserID,
		AdjustmentDate: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, adj); err != nil {
		return nil, fmt.Errorf("create adjustment: %w", err)
	}
	if err := s.stock.Overwrite(ctx, rec.ID, in.PhysicalQty); err != nil {
		return nil, err
	}

	if loss.IsPositive() {
		desc := fmt.Sprintf("Inventory Leakage: %s units missing", variance.Abs())
		if _, err := s.ledger.Expense(ctx, rec.BranchID, ledger.CategoryLeakage, loss, desc, adj.ID, in.UserID); err != nil {
			return nil, err
		}
	}

	if err := s.audit.Record(ctx, audit.EntityAdjustment, adj.ID, audit.ActionAdjusted, map[string]any{
		"stock_id":     adj.StockID,
		"system_qty":   adj.SystemQty,
		"physical_qty": adj.PhysicalQty,
		"variance":     adj.Variance,
	}); err != nil {
		return nil, fmt.Errorf("audit adjustment: %w", err)
	}

	if err := s.events.Publish(ctx, events.Event{
		AggregateType: events.AggregateAdjustment,
		AggregateID:   adj.ID,
		Type:          events.TypeStockAdjusted,
		Payload:       adj,
	}); err != nil {
		return nil, fmt.Errorf("publish adjustment: %w", err)
	}
	return adj, nil
}
