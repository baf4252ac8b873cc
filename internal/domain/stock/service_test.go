package stock_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slice/internal/app/apptest"
	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/events"
	"slice/internal/domain/stock"
)

func deduct(f *apptest.Fixture, branchID, itemID id.ID, qty string) error {
	return f.Store.RunInTransaction(f.Ctx, func(ctx context.Context) error {
		return f.Svc.Stock.Deduct(ctx, branchID, itemID, types.MustQuantity(qty))
	})
}

func TestDeduct_PublishesLowStock(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	flour := f.Item(t, "Flour", "g", "")
	f.Stock(t, branch.ID, flour.ID, "30")

	require.NoError(t, deduct(f, branch.ID, flour.ID, "15"))
	assert.Empty(t, f.Store.Outbox().Events(events.TypeStockLow))

	require.NoError(t, deduct(f, branch.ID, flour.ID, "5"))
	low := f.Store.Outbox().Events(events.TypeStockLow)
	require.Len(t, low, 1)
	payload, ok := low[0].Payload.(stock.LowStockPayload)
	require.True(t, ok)
	assert.Equal(t, types.MustQuantity("10"), payload.Quantity)
	assert.Equal(t, stock.DefaultLowStockThreshold, payload.Threshold)

	lows, err := f.Svc.Stock.ListLowStock(f.Ctx, branch.ID)
	require.NoError(t, err)
	require.Len(t, lows, 1)
	assert.True(t, lows[0].IsLow())
}

func TestDeduct_InsufficientDetails(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	flour := f.Item(t, "Flour", "g", "")
	f.Stock(t, branch.ID, flour.ID, "3")

	err := deduct(f, branch.ID, flour.ID, "4")
	require.True(t, apperror.IsInsufficientStock(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, flour.ID.String(), appErr.Details["item_id"])
	assert.Equal(t, "4.0000", appErr.Details["requested"])
	assert.Equal(t, "3.0000", appErr.Details["available"])
	assert.Equal(t, "Flour", appErr.Details["item_name"])
	assert.Equal(t, types.MustQuantity("3"), f.Qty(t, branch.ID, flour.ID))
}

func TestDeduct_MissingRecordReportsZeroAvailable(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	flour := f.Item(t, "Flour", "g", "")

	err := deduct(f, branch.ID, flour.ID, "1")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, "0.0000", appErr.Details["available"])
}

func TestDeduct_RejectsNonPositive(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	flour := f.Item(t, "Flour", "g", "")

	assert.True(t, apperror.IsValidation(deduct(f, branch.ID, flour.ID, "0")))
	assert.True(t, apperror.IsValidation(deduct(f, branch.ID, flour.ID, "-2")))
}

func TestDeduct_ConcurrentNeverNegative(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	flour := f.Item(t, "Flour", "g", "")
	f.Stock(t, branch.ID, flour.ID, "50")

	var (
		wg                sync.WaitGroup
		mu                sync.Mutex
		succeeded, failed int
	)
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := deduct(f, branch.ID, flour.ID, "1")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if apperror.IsInsufficientStock(err) {
				failed++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, succeeded)
	assert.Equal(t, 30, failed)
	assert.Equal(t, types.Quantity(0), f.Qty(t, branch.ID, flour.ID))
}

func TestSetThreshold(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	flour := f.Item(t, "Flour", "g", "")
	f.Stock(t, branch.ID, flour.ID, "30")

	rec, err := f.Svc.Stock.Get(f.Ctx, branch.ID, flour.ID)
	require.NoError(t, err)

	require.NoError(t, f.Svc.Stock.SetThreshold(f.Ctx, rec.ID, types.MustQuantity("40")))
	lows, err := f.Svc.Stock.ListLowStock(f.Ctx, branch.ID)
	require.NoError(t, err)
	assert.Len(t, lows, 1)

	assert.True(t, apperror.IsValidation(f.Svc.Stock.SetThreshold(f.Ctx, rec.ID, types.MustQuantity("-1"))))
	assert.True(t, apperror.IsNotFound(f.Svc.Stock.SetThreshold(f.Ctx, id.New(), types.MustQuantity("1"))))
}

func TestQuantitiesFor_OmitsMissing(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	flour := f.Item(t, "Flour", "g", "")
	salt := f.Item(t, "Salt", "g", "")
	f.Stock(t, branch.ID, flour.ID, "7")

	got, err := f.Svc.Stock.QuantitiesFor(f.Ctx, branch.ID, []id.ID{flour.ID, salt.ID})
	require.NoError(t, err)
	assert.Equal(t, map[id.ID]types.Quantity{flour.ID: types.MustQuantity("7")}, got)
}
