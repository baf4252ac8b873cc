// Package waste records spoiled or discarded inventory.
package waste

import (
	"time"

	"slice/internal/core/id"
	"slice/internal/core/types"
)

// Record is one waste log row valued at the cost known when it was recorded.
type Record struct {
	ID           id.ID          `db:"id" json:"id"`
	BranchID     id.ID          `db:"branch_id" json:"branchId"`
	ItemID       id.ID          `db:"item_id" json:"itemId"`
	ItemName     string         `db:"item_name" json:"itemName"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`
	Reason       string         `db:"reason" json:"reason"`
	UnitCost     types.Money    `db:"unit_cost" json:"unitCost"`
	TotalCost    types.Money    `db:"total_cost" json:"totalCost"`
	RecordedBy   string         `db:"recorded_by" json:"recordedBy"`
	DateRecorded time.Time      `db:"date_recorded" json:"dateRecorded"`
}

// Input is a waste report.
type Input struct {
	BranchID id.ID
	ItemID   id.ID
	Quantity types.Quantity
	Reason   string
	UserID   string
}
