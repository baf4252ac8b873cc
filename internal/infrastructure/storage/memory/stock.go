package memory

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/stock"
)

// StockRepo implements stock.Repository.
type StockRepo struct{ s *Store }

var _ stock.Repository = (*StockRepo)(nil)

func (st *state) stockRecord(stockID id.ID) stock.Record {
	rec := st.stock[stockID]
	if item, ok := st.items[rec.ItemID]; ok {
		rec.ItemName = item.Name
		rec.Category = item.Category
		rec.BaseUnit = item.BaseUnit
	}
	return rec
}

func (r *StockRepo) Deduct(ctx context.Context, branchID, itemID id.ID, amount types.Quantity) (stock.Level, bool, error) {
	var (
		level stock.Level
		ok    bool
	)
	err := r.s.write(ctx, func(st *state) error {
		stockID, exists := st.stockIndex[stockKey{branchID, itemID}]
		if !exists {
			return nil
		}
		rec := st.stock[stockID]
		if rec.CurrentQuantity < amount {
			return nil
		}
		rec.CurrentQuantity -= amount
		rec.UpdatedAt = time.Now().UTC()
		st.stock[stockID] = rec
		level = stock.Level{StockID: stockID, Quantity: rec.CurrentQuantity, Threshold: rec.LowStockThreshold}
		ok = true
		return nil
	})
	return level, ok, err
}

func (r *StockRepo) Credit(ctx context.Context, branchID, itemID id.ID, amount, threshold types.Quantity) (stock.Level, error) {
	var level stock.Level
	err := r.s.write(ctx, func(st *state) error {
		rec := st.ensure(branchID, itemID, threshold)
		if amount > 0 && rec.CurrentQuantity > math.MaxInt64-amount {
			return fmt.Errorf("credit stock %s: %w", rec.ID, types.ErrQuantityOutOfRange)
		}
		rec.CurrentQuantity += amount
		rec.UpdatedAt = time.Now().UTC()
		st.stock[rec.ID] = rec
		level = stock.Level{StockID: rec.ID, Quantity: rec.CurrentQuantity, Threshold: rec.LowStockThreshold}
		return nil
	})
	return level, err
}

func (r *StockRepo) Ensure(ctx context.Context, branchID, itemID id.ID, threshold types.Quantity) (*stock.Record, error) {
	var out stock.Record
	err := r.s.write(ctx, func(st *state) error {
		rec := st.ensure(branchID, itemID, threshold)
		out = st.stockRecord(rec.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (st *state) ensure(branchID, itemID id.ID, threshold types.Quantity) stock.Record {
	key := stockKey{branchID, itemID}
	if stockID, ok := st.stockIndex[key]; ok {
		return st.stock[stockID]
	}
	rec := stock.Record{
		ID:                id.New(),
		BranchID:          branchID,
		ItemID:            itemID,
		LowStockThreshold: threshold,
		UpdatedAt:         time.Now().UTC(),
	}
	st.stock[rec.ID] = rec
	st.stockIndex[key] = rec.ID
	return rec
}

func (r *StockRepo) Overwrite(ctx context.Context, stockID id.ID, qty types.Quantity) error {
	return r.s.write(ctx, func(st *state) error {
		rec, ok := st.stock[stockID]
		if !ok {
			return apperror.NewNotFound("stock", stockID.String())
		}
		rec.CurrentQuantity = qty
		rec.UpdatedAt = time.Now().UTC()
		st.stock[stockID] = rec
		return nil
	})
}

func (r *StockRepo) Get(ctx context.Context, branchID, itemID id.ID) (*stock.Record, error) {
	var out stock.Record
	err := r.s.read(func(st *state) error {
		stockID, ok := st.stockIndex[stockKey{branchID, itemID}]
		if !ok {
			return apperror.NewNotFound("stock", branchID.String()+"/"+itemID.String())
		}
		out = st.stockRecord(stockID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *StockRepo) GetByID(ctx context.Context, stockID id.ID) (*stock.Record, error) {
	var out stock.Record
	err := r.s.read(func(st *state) error {
		if _, ok := st.stock[stockID]; !ok {
			return apperror.NewNotFound("stock", stockID.String())
		}
		out = st.stockRecord(stockID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *StockRepo) ListByBranch(ctx context.Context, branchID id.ID, filter stock.Filter) ([]stock.Record, error) {
	var out []stock.Record
	r.s.view(func(st *state) {
		for stockID, rec := range st.stock {
			if rec.BranchID != branchID {
				continue
			}
			if filter.LowOnly && !rec.IsLow() {
				continue
			}
			if len(filter.ItemIDs) > 0 && !slices.Contains(filter.ItemIDs, rec.ItemID) {
				continue
			}
			out = append(out, st.stockRecord(stockID))
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ItemName < out[j].ItemName })
	return out, nil
}

func (r *StockRepo) SetThreshold(ctx context.Context, stockID id.ID, threshold types.Quantity) error {
	return r.s.write(ctx, func(st *state) error {
		rec, ok := st.stock[stockID]
		if !ok {
			return apperror.NewNotFound("stock", stockID.String())
		}
		rec.LowStockThreshold = threshold
		st.stock[stockID] = rec
		return nil
	})
}
