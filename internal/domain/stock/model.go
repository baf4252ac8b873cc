// Package stock is the per-branch inventory ledger.
//
// Every quantity change goes through Service so that the non-negative
// invariant holds: deductions are conditional writes that fail closed.
package stock

import (
	"time"

	"slice/internal/core/id"
	"slice/internal/core/types"
)

// Record is the current quantity of one item at one branch, in base units.
type Record struct {
	ID                id.ID          `db:"id" json:"id"`
	BranchID          id.ID          `db:"branch_id" json:"branchId"`
	ItemID            id.ID          `db:"item_id" json:"itemId"`
	ItemName          string         `db:"item_name" json:"itemName"`
	Category          string         `db:"category" json:"category"`
	BaseUnit          string         `db:"base_unit" json:"baseUnit"`
	CurrentQuantity   types.Quantity `db:"current_quantity" json:"currentQuantity"`
	LowStockThreshold types.Quantity `db:"low_stock_threshold" json:"lowStockThreshold"`
	ExpirationDate    *time.Time     `db:"expiration_date" json:"expirationDate,omitempty"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updatedAt"`
}

// IsLow reports whether the record is at or below its threshold.
func (r Record) IsLow() bool {
	return r.CurrentQuantity <= r.LowStockThreshold
}

// Level is the state of a record right after a mutation.
type Level struct {
	StockID   id.ID          `db:"id"`
	Quantity  types.Quantity `db:"current_quantity"`
	Threshold types.Quantity `db:"low_stock_threshold"`
}

// Filter narrows ListByBranch.
type Filter struct {
	LowOnly bool
	ItemIDs []id.ID
}

// LowStockPayload is the body of a stock.low event.
type LowStockPayload struct {
	BranchID  id.ID          `json:"branchId"`
	ItemID    id.ID          `json:"itemId"`
	Quantity  types.Quantity `json:"quantity"`
	Threshold types.Quantity `json:"threshold"`
}
