package waste_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slice/internal/app/apptest"
	"slice/internal/core/apperror"
	"slice/internal/core/types"
	"slice/internal/domain/ledger"
	"slice/internal/domain/procurement"
	"slice/internal/domain/waste"
)

func TestRecordWaste_BooksExpenseAtLatestCost(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	milk := f.Item(t, "Milk", "ml", "1000")

	_, err := f.Svc.Procurement.ProcessPurchase(f.Ctx, procurement.Input{
		BranchID: branch.ID,
		Supplier: "Dairy",
		Lines:    []procurement.LineInput{{ItemID: milk.ID, Quantity: types.MustQuantity("2"), UnitPrice: types.MustMoney("3")}},
	})
	require.NoError(t, err)

	rec, err := f.Svc.Waste.RecordWaste(f.Ctx, waste.Input{
		BranchID: branch.ID,
		ItemID:   milk.ID,
		Quantity: types.MustQuantity("500"),
		Reason:   "Spoiled",
		UserID:   "cook",
	})
	require.NoError(t, err)

	assert.Equal(t, types.MustQuantity("1500"), f.Qty(t, branch.ID, milk.ID))
	assert.True(t, types.MustMoney("0.003").Equal(rec.UnitCost))
	assert.True(t, types.MustMoney("1.5").Equal(rec.TotalCost))

	entries, err := f.Svc.Ledger.ForReference(f.Ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.TypeExpense, entries[0].Type)
	assert.Equal(t, ledger.CategoryWaste, entries[0].Category)
	assert.True(t, types.MustMoney("1.5").Equal(entries[0].Amount))

	recent, err := f.Svc.Waste.ListRecent(f.Ctx, branch.ID, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Milk", recent[0].ItemName)
}

func TestRecordWaste_NoCostNoExpense(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	basil := f.Item(t, "Basil", "g", "")
	f.Stock(t, branch.ID, basil.ID, "50")

	rec, err := f.Svc.Waste.RecordWaste(f.Ctx, waste.Input{
		BranchID: branch.ID,
		ItemID:   basil.ID,
		Quantity: types.MustQuantity("20"),
		Reason:   "Wilted",
	})
	require.NoError(t, err)
	assert.True(t, rec.TotalCost.IsZero())
	assert.Equal(t, types.MustQuantity("30"), f.Qty(t, branch.ID, basil.ID))

	entries, err := f.Svc.Ledger.List(f.Ctx, ledger.Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecordWaste_OverReportingFails(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	basil := f.Item(t, "Basil", "g", "")
	f.Stock(t, branch.ID, basil.ID, "10")

	_, err := f.Svc.Waste.RecordWaste(f.Ctx, waste.Input{
		BranchID: branch.ID,
		ItemID:   basil.ID,
		Quantity: types.MustQuantity("11"),
		Reason:   "Dropped",
	})
	require.True(t, apperror.IsInsufficientStock(err))
	assert.Equal(t, types.MustQuantity("10"), f.Qty(t, branch.ID, basil.ID))

	recent, err := f.Svc.Waste.ListRecent(f.Ctx, branch.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestRecordWaste_Validation(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	basil := f.Item(t, "Basil", "g", "")

	_, err := f.Svc.Waste.RecordWaste(f.Ctx, waste.Input{BranchID: branch.ID, ItemID: basil.ID, Quantity: 0, Reason: "x"})
	assert.True(t, apperror.IsValidation(err))

	_, err = f.Svc.Waste.RecordWaste(f.Ctx, waste.Input{BranchID: branch.ID, ItemID: basil.ID, Quantity: types.MustQuantity("1"), Reason: "  "})
	assert.True(t, apperror.IsValidation(err))
}
