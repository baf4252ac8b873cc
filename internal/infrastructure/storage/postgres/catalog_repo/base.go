// Package catalog_repo provides PostgreSQL implementations of the catalog and recipe repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"slice/internal/core/apperror"
	"slice/internal/infrastructure/storage/postgres"
)

// builder is the squirrel builder with PostgreSQL placeholders.
var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type repo struct {
	txm *postgres.TxManager
}

func (r repo) exec(ctx context.Context, q squirrel.Sqlizer, what string) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s: %w", what, err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	return tag.RowsAffected(), nil
}

// get scans one row into dest, mapping no rows to NotFound(entity, key).
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

// mustAffect turns a zero row count into NotFound.
func mustAffect(n int64, entity string, key any) error {
	if n == 0 {
		return apperror.NewNotFound(entity, key)
	}
	return nil
}
