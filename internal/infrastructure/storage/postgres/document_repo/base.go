// Package document_repo provides PostgreSQL implementations of the document
// repositories: transfers, sales, waste, purchases and stock adjustments.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"slice/internal/core/apperror"
	"slice/internal/infrastructure/storage/postgres"
)

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type repo struct {
	txm   *postgres.TxManager
	batch *postgres.BatchInserter
}

func newRepo(txm *postgres.TxManager) repo {
	return repo{txm: txm, batch: postgres.NewBatchInserter(txm)}
}

func (r repo) insert(ctx context.Context, q squirrel.InsertBuilder, what string) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", what, err)
	}
	return nil
}

func (r repo) get(ctx context.Context, dest any, q squirrel.SelectBuilder, entity string, key any) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), dest, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return apperror.NewNotFound(entity, key)
		}
		return fmt.Errorf("get %s: %w", entity, err)
	}
	return nil
}

func (r repo) selectAll(ctx context.Context, dest any, q squirrel.SelectBuilder, what string) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), dest, sql, args...); err != nil {
		return fmt.Errorf("list %s: %w", what, err)
	}
	return nil
}

// recent returns the newest rows of a branch.
func recent(table string, cols []string, dateCol string, branchID any, limit int) squirrel.SelectBuilder {
	return builder.Select(cols...).From(table).
		Where(squirrel.Eq{"branch_id": branchID}).
		OrderBy(dateCol+" DESC", "id DESC").
		Limit(uint64(limit))
}
