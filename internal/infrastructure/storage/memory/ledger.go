package memory

import (
	"context"
	"sort"

	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/ledger"
	"slice/internal/domain/reports"
)

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct{ s *Store }

var _ ledger.Repository = (*LedgerRepo)(nil)

func (r *LedgerRepo) Append(ctx context.Context, e *ledger.Entry) error {
	return r.s.write(ctx, func(st *state) error {
		st.ledger = append(st.ledger, *e)
		return nil
	})
}

func matchEntry(e ledger.Entry, f ledger.Filter) bool {
	if f.BranchID != nil && (e.BranchID == nil || *e.BranchID != *f.BranchID) {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.From != nil && e.TransactionDate.Before(*f.From) {
		return false
	}
	if f.To != nil && !e.TransactionDate.Before(*f.To) {
		return false
	}
	return true
}

func (r *LedgerRepo) List(ctx context.Context, f ledger.Filter) ([]ledger.Entry, error) {
	var out []ledger.Entry
	r.s.view(func(st *state) {
		skipped := 0
		for i := len(st.ledger) - 1; i >= 0; i-- {
			e := st.ledger[i]
			if !matchEntry(e, f) {
				continue
			}
			if skipped < f.Offset {
				skipped++
				continue
			}
			if f.Limit > 0 && len(out) >= f.Limit {
				break
			}
			out = append(out, e)
		}
	})
	return out, nil
}

func (r *LedgerRepo) ListByReference(ctx context.Context, referenceID id.ID) ([]ledger.Entry, error) {
	var out []ledger.Entry
	r.s.view(func(st *state) {
		for _, e := range st.ledger {
			if e.ReferenceID != nil && *e.ReferenceID == referenceID {
				out = append(out, e)
			}
		}
	})
	return out, nil
}

// ReportRepo implements reports.Repository over the in-memory ledger.
type ReportRepo struct{ s *Store }

var _ reports.Repository = (*ReportRepo)(nil)

func inPeriod(e ledger.Entry, f reports.Filter) bool {
	if e.TransactionDate.Before(f.From) || !e.TransactionDate.Before(f.To) {
		return false
	}
	if f.BranchID != nil && (e.BranchID == nil || *e.BranchID != *f.BranchID) {
		return false
	}
	return true
}

func (r *ReportRepo) Totals(ctx context.Context, f reports.Filter) (reports.Totals, error) {
	out := reports.Totals{Income: types.Zero(), Expense: types.Zero()}
	r.s.view(func(st *state) {
		for _, e := range st.ledger {
			if !inPeriod(e, f) {
				continue
			}
			switch e.Type {
			case ledger.TypeIncome:
				out.Income = out.Income.Add(e.Amount)
			case ledger.TypeExpense:
				out.Expense = out.Expense.Add(e.Amount)
			}
		}
	})
	return out, nil
}

func (r *ReportRepo) ByBranch(ctx context.Context, f reports.Filter) ([]reports.BranchPerformance, error) {
	var out []reports.BranchPerformance
	r.s.view(func(st *state) {
		idx := make(map[id.ID]int, len(st.branches))
		for _, b := range st.branches {
			idx[b.ID] = len(out)
			out = append(out, reports.BranchPerformance{
				BranchID:   b.ID,
				BranchName: b.Name,
				Revenue:    types.Zero(),
				Expenses:   types.Zero(),
			})
		}
		for _, e := range st.ledger {
			if !inPeriod(e, f) || e.BranchID == nil {
				continue
			}
			i, ok := idx[*e.BranchID]
			if !ok {
				continue
			}
			switch e.Type {
			case ledger.TypeIncome:
				out[i].Revenue = out[i].Revenue.Add(e.Amount)
			case ledger.TypeExpense:
				out[i].Expenses = out[i].Expenses.Add(e.Amount)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].BranchName < out[j].BranchName })
	return out, nil
}

func (r *ReportRepo) ByCategory(ctx context.Context, f reports.Filter) ([]reports.CategoryTotal, error) {
	type key struct{ typ, category string }
	sums := map[key]types.Money{}
	r.s.view(func(st *state) {
		for _, e := range st.ledger {
			if !inPeriod(e, f) {
				continue
			}
			k := key{string(e.Type), e.Category}
			if cur, ok := sums[k]; ok {
				sums[k] = cur.Add(e.Amount)
			} else {
				sums[k] = e.Amount
			}
		}
	})
	out := make([]reports.CategoryTotal, 0, len(sums))
	for k, v := range sums {
		out = append(out, reports.CategoryTotal{Type: k.typ, Category: k.category, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out, nil
}
