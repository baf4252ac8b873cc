// Package ledger is the append-only financial journal.
package ledger

import (
	"time"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
)

// EntryType is the direction of money.
type EntryType string

const (
	TypeIncome  EntryType = "Income"
	TypeExpense EntryType = "Expense"
)

// Categories used by the orchestrators.
const (
	CategorySales       = "Sales"
	CategoryIngredients = "Ingredients"
	CategoryWaste       = "Waste"
	CategoryLeakage     = "Leakage"
)

// Entry is one journal line. Entries are never updated or deleted.
type Entry struct {
	ID              id.ID       `db:"id" json:"id"`
	TransactionDate time.Time   `db:"transaction_date" json:"transactionDate"`
	BranchID        *id.ID      `db:"branch_id" json:"branchId,omitempty"`
	Type            EntryType   `db:"type" json:"type"`
	Category        string      `db:"category" json:"category"`
	Amount          types.Money `db:"amount" json:"amount"`
	Description     string      `db:"description" json:"description"`
	ReferenceID     *id.ID      `db:"reference_id" json:"referenceId,omitempty"`
	CreatedBy       string      `db:"created_by" json:"createdBy"`
}

// Validate checks the entry before it is appended.
func (e *Entry) Validate() error {
	if e.Type != TypeIncome && e.Type != TypeExpense {
		return apperror.NewValidation("invalid ledger entry type").WithDetail("type", string(e.Type))
	}
	if e.Category == "" {
		return apperror.NewValidation("ledger category is required")
	}
	if e.Amount.IsNegative() {
		return apperror.NewValidation("ledger amount must not be negative").WithDetail("amount", e.Amount.String())
	}
	return nil
}

// Filter narrows List.
type Filter struct {
	BranchID *id.ID
	Type     EntryType
	Category string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}
