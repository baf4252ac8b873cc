// Package report_repo aggregates the financial ledger for reports.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"slice/internal/domain/reports"
	"slice/internal/infrastructure/storage/postgres"
)

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const (
	incomeSum  = "COALESCE(SUM(l.amount) FILTER (WHERE l.type = 'Income'), 0) AS income"
	expenseSum = "COALESCE(SUM(l.amount) FILTER (WHERE l.type = 'Expense'), 0) AS expense"
)

// LedgerReportRepo implements reports.Repository.
type LedgerReportRepo struct {
	txm *postgres.TxManager
}

var _ reports.Repository = (*LedgerReportRepo)(nil)

// NewLedgerReportRepo creates a report repository.
func NewLedgerReportRepo(txm *postgres.TxManager) *LedgerReportRepo {
	return &LedgerReportRepo{txm: txm}
}

func period(q squirrel.SelectBuilder, f reports.Filter) squirrel.SelectBuilder {
	q = q.Where(squirrel.GtOrEq{"l.transaction_date": f.From}).
		Where(squirrel.Lt{"l.transaction_date": f.To})
	if f.BranchID != nil {
		q = q.Where(squirrel.Eq{"l.branch_id": *f.BranchID})
	}
	return q
}

func totalsQuery(f reports.Filter) squirrel.SelectBuilder {
	return period(builder.Select(incomeSum, expenseSum).From("financial_ledger l"), f)
}

// byBranchQuery keeps branches without entries; the period goes into the join.
func byBranchQuery(f reports.Filter) squirrel.SelectBuilder {
	return builder.Select("b.id AS branch_id", "b.name AS branch_name", incomeSum, expenseSum).
		From("branches b").
		LeftJoin("financial_ledger l ON l.branch_id = b.id AND l.transaction_date >= ? AND l.transaction_date < ?", f.From, f.To).
		GroupBy("b.id", "b.name").
		OrderBy("b.name")
}

func byCategoryQuery(f reports.Filter) squirrel.SelectBuilder {
	return period(builder.Select("l.type", "l.category", "SUM(l.amount) AS amount").From("financial_ledger l"), f).
		GroupBy("l.type", "l.category").
		OrderBy("l.type", "amount DESC")
}

func (r *LedgerReportRepo) Totals(ctx context.Context, f reports.Filter) (reports.Totals, error) {
	var out reports.Totals
	if err := r.get(ctx, &out, totalsQuery(f)); err != nil {
		return reports.Totals{}, err
	}
	return out, nil
}

func (r *LedgerReportRepo) ByBranch(ctx context.Context, f reports.Filter) ([]reports.BranchPerformance, error) {
	var out []reports.BranchPerformance
	if err := r.list(ctx, &out, byBranchQuery(f)); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LedgerReportRepo) ByCategory(ctx context.Context, f reports.Filter) ([]reports.CategoryTotal, error) {
	var out []reports.CategoryTotal
	if err := r.list(ctx, &out, byCategoryQuery(f)); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LedgerReportRepo) get(ctx context.Context, dest any, q squirrel.SelectBuilder) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build report query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), dest, sql, args...); err != nil {
		return fmt.Errorf("report query: %w", err)
	}
	return nil
}

func (r *LedgerReportRepo) list(ctx context.Context, dest any, q squirrel.SelectBuilder) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build report query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), dest, sql, args...); err != nil {
		return fmt.Errorf("report query: %w", err)
	}
	return nil
}
