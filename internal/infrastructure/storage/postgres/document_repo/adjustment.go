package document_repo

import (
	"context"

	"slice/internal/core/id"
	"slice/internal/domain/reconciliation"
	"slice/internal/infrastructure/storage/postgres"
)

const adjustmentsTable = "inventory_adjustments"

var adjustmentCols = []string{
	"id", "stock_id", "branch_id", "item_id", "item_name", "system_qty", "physical_qty",
	"variance", "unit_cost", "loss_amount", "adjusted_by", "adjustment_date",
}

// AdjustmentRepo implements reconciliation.Repository.
type AdjustmentRepo struct{ repo }

var _ reconciliation.Repository = (*AdjustmentRepo)(nil)

// NewAdjustmentRepo creates an adjustment repository.
func NewAdjustmentRepo(txm *postgres.TxManager) *AdjustmentRepo {
	return &AdjustmentRepo{newRepo(txm)}
}

func (r *AdjustmentRepo) Create(ctx context.Context, a *reconciliation.Adjustment) error {
	q := builder.Insert(adjustmentsTable).Columns(adjustmentCols...).
		Values(a.ID, a.StockID, a.BranchID, a.ItemID, a.ItemName, a.SystemQty, a.PhysicalQty,
			a.Variance, a.UnitCost, a.LossAmount, a.AdjustedBy, a.AdjustmentDate)
	return r.insert(ctx, q, "adjustment")
}

func (r *AdjustmentRepo) ListByBranch(ctx context.Context, branchID id.ID, limit int) ([]reconciliation.Adjustment, error) {
	var out []reconciliation.Adjustment
	q := recent(adjustmentsTable, adjustmentCols, "adjustment_date", branchID, limit)
	if err := r.selectAll(ctx, &out, q, "adjustments"); err != nil {
		return nil, err
	}
	return out, nil
}
