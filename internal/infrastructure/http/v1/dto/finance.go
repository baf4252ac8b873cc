package dto

import (
	"slice/internal/core/apperror"
	"slice/internal/domain/ledger"
)

// LedgerQuery filters GET /ledger.
type LedgerQuery struct {
	PeriodQuery
	Type     string `form:"type"`
	Category string `form:"category"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

func (q LedgerQuery) ToFilter() (ledger.Filter, error) {
	branchID, err := q.Branch()
	if err != nil {
		return ledger.Filter{}, err
	}
	f := ledger.Filter{
		BranchID: branchID,
		Category: q.Category,
		From:     q.From,
		To:       q.To,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if q.Type != "" {
		f.Type = ledger.EntryType(q.Type)
		if f.Type != ledger.TypeIncome && f.Type != ledger.TypeExpense {
			return ledger.Filter{}, apperror.NewValidation("type must be Income or Expense").WithDetail("type", q.Type)
		}
	}
	return f, nil
}
