package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"slice/internal/core/id"
	"slice/internal/domain/ledger"
	"slice/internal/infrastructure/storage/postgres"
)

const ledgerTable = "financial_ledger"

var ledgerCols = []string{
	"id", "transaction_date", "branch_id", "type", "category",
	"amount", "description", "reference_id", "created_by",
}

// LedgerRepo implements ledger.Repository. Entries are never updated or deleted.
type LedgerRepo struct {
	txm *postgres.TxManager
}

var _ ledger.Repository = (*LedgerRepo)(nil)

// NewLedgerRepo creates a ledger repository.
func NewLedgerRepo(txm *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{txm: txm}
}

func (r *LedgerRepo) Append(ctx context.Context, e *ledger.Entry) error {
	sql, args, err := builder.Insert(ledgerTable).
		Columns(ledgerCols...).
		Values(e.ID, e.TransactionDate, e.BranchID, string(e.Type), e.Category,
			e.Amount, e.Description, e.ReferenceID, e.CreatedBy).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func (r *LedgerRepo) List(ctx context.Context, f ledger.Filter) ([]ledger.Entry, error) {
	return r.selectEntries(ctx, ledgerListQuery(f))
}

func (r *LedgerRepo) ListByReference(ctx context.Context, referenceID id.ID) ([]ledger.Entry, error) {
	q := builder.Select(ledgerCols...).From(ledgerTable).
		Where(squirrel.Eq{"reference_id": referenceID}).
		OrderBy("transaction_date", "id")
	return r.selectEntries(ctx, q)
}

func (r *LedgerRepo) selectEntries(ctx context.Context, q squirrel.SelectBuilder) ([]ledger.Entry, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out []ledger.Entry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return out, nil
}

func ledgerListQuery(f ledger.Filter) squirrel.SelectBuilder {
	q := builder.Select(ledgerCols...).From(ledgerTable)
	if f.BranchID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *f.BranchID})
	}
	if f.Type != "" {
		q = q.Where(squirrel.Eq{"type": string(f.Type)})
	}
	if f.Category != "" {
		q = q.Where(squirrel.Eq{"category": f.Category})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"transaction_date": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"transaction_date": *f.To})
	}
	q = q.OrderBy("transaction_date DESC", "id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}
