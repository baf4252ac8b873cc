// Package reports aggregates the financial ledger into dashboard figures.
package reports

import (
	"time"

	"slice/internal/core/id"
	"slice/internal/core/types"
)

// Filter bounds a report by transaction date and optionally by branch.
type Filter struct {
	From     time.Time
	To       time.Time
	BranchID *id.ID
}

// Totals are raw sums per entry type.
type Totals struct {
	Income  types.Money `db:"income"`
	Expense types.Money `db:"expense"`
}

// PnL is a profit and loss summary.
type PnL struct {
	From     time.Time   `json:"from"`
	To       time.Time   `json:"to"`
	BranchID *id.ID      `json:"branchId,omitempty"`
	Revenue  types.Money `json:"revenue"`
	Expenses types.Money `json:"expenses"`
	Net      types.Money `json:"net"`
	// Margin is net over revenue in percent, zero without revenue.
	Margin types.Money `json:"margin"`
}

// BranchPerformance is the P&L of one branch.
type BranchPerformance struct {
	BranchID   id.ID       `db:"branch_id" json:"branchId"`
	BranchName string      `db:"branch_name" json:"branchName"`
	Revenue    types.Money `db:"income" json:"revenue"`
	Expenses   types.Money `db:"expense" json:"expenses"`
	Net        types.Money `db:"-" json:"net"`
}

// CategoryTotal is the sum of one ledger category.
type CategoryTotal struct {
	Type     string      `db:"type" json:"type"`
	Category string      `db:"category" json:"category"`
	Amount   types.Money `db:"amount" json:"amount"`
}
