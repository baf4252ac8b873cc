// Package reconciliation applies physical stock counts to the stock ledger
// and books shrinkage as leakage expense.
package reconciliation

import (
	"time"

	"slice/internal/core/id"
	"slice/internal/core/types"
)

// Adjustment records one counted stock record.
type Adjustment struct {
	ID             id.ID          `db:"id" json:"id"`
	StockID        id.ID          `db:"stock_id" json:"stockId"`
	BranchID       id.ID          `db:"branch_id" json:"branchId"`
	ItemID         id.ID          `db:"item_id" json:"itemId"`
	ItemName       string         `db:"item_name" json:"itemName"`
	SystemQty      types.Quantity `db:"system_qty" json:"systemQty"`
	PhysicalQty    types.Quantity `db:"physical_qty" json:"physicalQty"`
	Variance       types.Quantity `db:"variance" json:"variance"`
	UnitCost       types.Money    `db:"unit_cost" json:"unitCost"`
	LossAmount     types.Money    `db:"loss_amount" json:"lossAmount"`
	AdjustedBy     string         `db:"adjusted_by" json:"adjustedBy"`
	AdjustmentDate time.Time      `db:"adjustment_date" json:"adjustmentDate"`
}

// Input is a single reconciliation of one stock record.
type Input struct {
	StockID     id.ID
	BranchID    id.ID
	ItemID      id.ID
	SystemQty   types.Quantity
	PhysicalQty types.Quantity
	UserID      string
}

// SheetRow is a stock record as presented for counting.
type SheetRow struct {
	StockID   id.ID          `json:"stockId"`
	ItemID    id.ID          `json:"itemId"`
	ItemName  string         `json:"itemName"`
	Category  string         `json:"category"`
	BaseUnit  string         `json:"baseUnit"`
	SystemQty types.Quantity `json:"systemQty"`
}

// Count is one physical count submitted from a sheet.
type Count struct {
	StockID     id.ID          `json:"stockId"`
	PhysicalQty types.Quantity `json:"physicalQty"`
}
