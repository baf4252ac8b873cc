// Package register_repo provides PostgreSQL implementations of the stock and financial ledgers.
package register_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/stock"
	"slice/internal/infrastructure/storage/postgres"
)

const stockTable = "branch_inventory"

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// stockSelect joins the item so records carry name, category and unit.
func stockSelect() squirrel.SelectBuilder {
	return builder.Select(
		"s.id", "s.branch_id", "s.item_id",
		"i.name AS item_name", "i.category", "i.base_unit",
		"s.current_quantity", "s.low_stock_threshold", "s.expiration_date", "s.updated_at",
	).From(stockTable + " s").Join("items i ON i.id = s.item_id")
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	txm *postgres.TxManager
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a stock repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{txm: txm}
}

// deductSQL subtracts only while enough is on hand; the row lock taken by the
// UPDATE serializes concurrent deductions of the same record.
const deductSQL = `
	UPDATE branch_inventory
	SET current_quantity = current_quantity - $3, updated_at = $4
	WHERE branch_id = $1 AND item_id = $2 AND current_quantity >= $3
	RETURNING id, current_quantity, low_stock_threshold`

func (r *StockRepo) Deduct(ctx context.Context, branchID, itemID id.ID, amount types.Quantity) (stock.Level, bool, error) {
	var lvl stock.Level
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, deductSQL, branchID, itemID, amount, time.Now().UTC()).
		Scan(&lvl.StockID, &lvl.Quantity, &lvl.Threshold)
	if errors.Is(err, pgx.ErrNoRows) {
		return stock.Level{}, false, nil
	}
	if err != nil {
		return stock.Level{}, false, fmt.Errorf("deduct: %w", err)
	}
	return lvl, true, nil
}

const creditSQL = `
	INSERT INTO branch_inventory (id, branch_id, item_id, current_quantity, low_stock_threshold, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (branch_id, item_id) DO UPDATE
	SET current_quantity = branch_inventory.current_quantity + EXCLUDED.current_quantity,
	    updated_at = EXCLUDED.updated_at
	RETURNING id, current_quantity, low_stock_threshold`

func (r *StockRepo) Credit(ctx context.Context, branchID, itemID id.ID, amount, threshold types.Quantity) (stock.Level, error) {
	var lvl stock.Level
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, creditSQL, id.New(), branchID, itemID, amount, threshold, time.Now().UTC()).
		Scan(&lvl.StockID, &lvl.Quantity, &lvl.Threshold)
	if err != nil {
		return stock.Level{}, fmt.Errorf("credit: %w", err)
	}
	return lvl, nil
}

const ensureSQL = `
	INSERT INTO branch_inventory (id, branch_id, item_id, current_quantity, low_stock_threshold, updated_at)
	VALUES ($1, $2, $3, 0, $4, $5)
	ON CONFLICT (branch_id, item_id) DO NOTHING`

func (r *StockRepo) Ensure(ctx context.Context, branchID, itemID id.ID, threshold types.Quantity) (*stock.Record, error) {
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, ensureSQL, id.New(), branchID, itemID, threshold, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("ensure: %w", err)
	}
	return r.Get(ctx, branchID, itemID)
}

func (r *StockRepo) Overwrite(ctx context.Context, stockID id.ID, qty types.Quantity) error {
	return r.update(ctx, stockID, "current_quantity", qty)
}

func (r *StockRepo) SetThreshold(ctx context.Context, stockID id.ID, threshold types.Quantity) error {
	return r.update(ctx, stockID, "low_stock_threshold", threshold)
}

func (r *StockRepo) update(ctx context.Context, stockID id.ID, column string, value types.Quantity) error {
	sql, args, err := builder.Update(stockTable).
		Set(column, value).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": stockID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("stock", stockID.String())
	}
	return nil
}

func (r *StockRepo) Get(ctx context.Context, branchID, itemID id.ID) (*stock.Record, error) {
	q := stockSelect().Where(squirrel.Eq{"s.branch_id": branchID, "s.item_id": itemID})
	return r.getOne(ctx, q, branchID.String()+"/"+itemID.String())
}

func (r *StockRepo) GetByID(ctx context.Context, stockID id.ID) (*stock.Record, error) {
	return r.getOne(ctx, stockSelect().Where(squirrel.Eq{"s.id": stockID}), stockID.String())
}

func (r *StockRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*stock.Record, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rec stock.Record
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock", key)
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &rec, nil
}

func (r *StockRepo) ListByBranch(ctx context.Context, branchID id.ID, filter stock.Filter) ([]stock.Record, error) {
	sql, args, err := stockListQuery(branchID, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out []stock.Record
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	return out, nil
}

func stockListQuery(branchID id.ID, filter stock.Filter) squirrel.SelectBuilder {
	q := stockSelect().Where(squirrel.Eq{"s.branch_id": branchID})
	if filter.LowOnly {
		q = q.Where("s.current_quantity <= s.low_stock_threshold")
	}
	if len(filter.ItemIDs) > 0 {
		q = q.Where(squirrel.Eq{"s.item_id": filter.ItemIDs})
	}
	return q.OrderBy("i.name")
}
