package document_repo

import (
	"context"

	"slice/internal/core/id"
	"slice/internal/domain/waste"
	"slice/internal/infrastructure/storage/postgres"
)

const wasteTable = "waste_logs"

var wasteCols = []string{
	"id", "branch_id", "item_id", "item_name", "quantity", "reason",
	"unit_cost", "total_cost", "recorded_by", "date_recorded",
}

// WasteRepo implements waste.Repository.
type WasteRepo struct{ repo }

var _ waste.Repository = (*WasteRepo)(nil)

// NewWasteRepo creates a waste repository.
func NewWasteRepo(txm *postgres.TxManager) *WasteRepo {
	return &WasteRepo{newRepo(txm)}
}

func (r *WasteRepo) Create(ctx context.Context, w *waste.Record) error {
	q := builder.Insert(wasteTable).Columns(wasteCols...).
		Values(w.ID, w.BranchID, w.ItemID, w.ItemName, w.Quantity, w.Reason,
			w.UnitCost, w.TotalCost, w.RecordedBy, w.DateRecorded)
	return r.insert(ctx, q, "waste record")
}

func (r *WasteRepo) ListRecent(ctx context.Context, branchID id.ID, limit int) ([]waste.Record, error) {
	var out []waste.Record
	if err := r.selectAll(ctx, &out, recent(wasteTable, wasteCols, "date_recorded", branchID, limit), "waste"); err != nil {
		return nil, err
	}
	return out, nil
}
