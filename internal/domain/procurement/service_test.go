package procurement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slice/internal/app/apptest"
	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/ledger"
	"slice/internal/domain/procurement"
)

func TestProcessPurchase_ConvertsBulkToBase(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	flour := f.Item(t, "Flour", "g", "25000")

	p, err := f.Svc.Procurement.ProcessPurchase(f.Ctx, procurement.Input{
		BranchID: branch.ID,
		Supplier: "Mill Co",
		UserID:   "buyer",
		Lines: []procurement.LineInput{
			{ItemID: flour.ID, Quantity: types.MustQuantity("1"), UnitPrice: types.MustMoney("1000")},
		},
	})
	require.NoError(t, err)

	assert.Regexp(t, `^PO-\d{4}-00001$`, p.Number)
	assert.True(t, types.MustMoney("1000").Equal(p.TotalAmount))
	require.Len(t, p.Details, 1)
	d := p.Details[0]
	assert.Equal(t, types.MustQuantity("25000"), d.Quantity)
	assert.True(t, types.MustMoney("0.04").Equal(d.UnitPrice), "got %s", d.UnitPrice)

	assert.Equal(t, types.MustQuantity("25000"), f.Qty(t, branch.ID, flour.ID))

	entries, err := f.Svc.Ledger.ForReference(f.Ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.TypeExpense, entries[0].Type)
	assert.Equal(t, ledger.CategoryIngredients, entries[0].Category)
	assert.Equal(t, "Purchase from Mill Co", entries[0].Description)
	assert.True(t, types.MustMoney("1000").Equal(entries[0].Amount))

	cost, err := f.Svc.Procurement.LatestUnitCost(f.Ctx, flour.ID)
	require.NoError(t, err)
	assert.True(t, types.MustMoney("0.04").Equal(cost))
}

func TestProcessPurchase_CreatesRecordWithDefaultThreshold(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	salt := f.Item(t, "Salt", "g", "")

	_, err := f.Svc.Procurement.ProcessPurchase(f.Ctx, procurement.Input{
		BranchID: branch.ID,
		Supplier: "Salt Works",
		Lines: []procurement.LineInput{
			{ItemID: salt.ID, Quantity: types.MustQuantity("3"), UnitPrice: types.MustMoney("2")},
		},
	})
	require.NoError(t, err)

	rec, err := f.Svc.Stock.Get(f.Ctx, branch.ID, salt.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MustQuantity("3"), rec.CurrentQuantity, "ratio 1 when unset")
	assert.Equal(t, types.MustQuantity("10"), rec.LowStockThreshold)
}

func TestProcessPurchase_MultipleLinesOneExpense(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	flour := f.Item(t, "Flour", "g", "1000")
	oil := f.Item(t, "Oil", "ml", "500")

	p, err := f.Svc.Procurement.ProcessPurchase(f.Ctx, procurement.Input{
		BranchID: branch.ID,
		Supplier: "Wholesale",
		Lines: []procurement.LineInput{
			{ItemID: flour.ID, Quantity: types.MustQuantity("2"), UnitPrice: types.MustMoney("3.50")},
			{ItemID: oil.ID, Quantity: types.MustQuantity("4"), UnitPrice: types.MustMoney("5")},
		},
	})
	require.NoError(t, err)
	assert.True(t, types.MustMoney("27").Equal(p.TotalAmount))
	assert.Equal(t, types.MustQuantity("2000"), f.Qty(t, branch.ID, flour.ID))
	assert.Equal(t, types.MustQuantity("2000"), f.Qty(t, branch.ID, oil.ID))

	entries, err := f.Svc.Ledger.List(f.Ctx, ledger.Filter{Category: ledger.CategoryIngredients})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	got, err := f.Svc.Procurement.Get(f.Ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Details, 2)

	list, err := f.Svc.Procurement.List(f.Ctx, branch.ID, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProcessPurchase_Validation(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	flour := f.Item(t, "Flour", "g", "")

	tests := []struct {
		name string
		in   procurement.Input
	}{
		{"no supplier", procurement.Input{BranchID: branch.ID, Lines: []procurement.LineInput{{ItemID: flour.ID, Quantity: types.MustQuantity("1")}}}},
		{"no lines", procurement.Input{BranchID: branch.ID, Supplier: "x"}},
		{"zero quantity", procurement.Input{BranchID: branch.ID, Supplier: "x", Lines: []procurement.LineInput{{ItemID: flour.ID}}}},
		{"unknown item", procurement.Input{BranchID: branch.ID, Supplier: "x", Lines: []procurement.LineInput{{ItemID: id.New(), Quantity: types.MustQuantity("1")}}}},
		{"unknown branch", procurement.Input{BranchID: id.New(), Supplier: "x", Lines: []procurement.LineInput{{ItemID: flour.ID, Quantity: types.MustQuantity("1")}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Svc.Procurement.ProcessPurchase(f.Ctx, tt.in)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
	assert.Equal(t, types.Quantity(0), f.Qty(t, branch.ID, flour.ID))
}

func TestLatestUnitCost_NeverPurchased(t *testing.T) {
	f := apptest.New(t)
	flour := f.Item(t, "Flour", "g", "")

	cost, err := f.Svc.Procurement.LatestUnitCost(f.Ctx, flour.ID)
	require.NoError(t, err)
	assert.True(t, cost.IsZero())
}

func TestLatestUnitCost_UsesNewestPurchaseAcrossBranches(t *testing.T) {
	f := apptest.New(t)
	a := f.Branch(t, "A")
	b := f.Branch(t, "B")
	flour := f.Item(t, "Flour", "g", "100")

	for _, in := range []procurement.Input{
		{BranchID: a.ID, Supplier: "One", Lines: []procurement.LineInput{{ItemID: flour.ID, Quantity: types.MustQuantity("1"), UnitPrice: types.MustMoney("10")}}},
		{BranchID: b.ID, Supplier: "Two", Lines: []procurement.LineInput{{ItemID: flour.ID, Quantity: types.MustQuantity("1"), UnitPrice: types.MustMoney("20")}}},
	} {
		_, err := f.Svc.Procurement.ProcessPurchase(f.Ctx, in)
		require.NoError(t, err)
	}

	cost, err := f.Svc.Procurement.LatestUnitCost(f.Ctx, flour.ID)
	require.NoError(t, err)
	assert.True(t, types.MustMoney("0.2").Equal(cost))
}

func TestProcessPurchase_ZeroCostPostsExpenseEntry(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	basil := f.Item(t, "Basil", "g", "50")

	p, err := f.Svc.Procurement.ProcessPurchase(f.Ctx, procurement.Input{
		BranchID: branch.ID,
		Supplier: "Garden",
		Lines: []procurement.LineInput{
			{ItemID: basil.ID, Quantity: types.MustQuantity("2"), UnitPrice: types.Zero()},
		},
	})
	require.NoError(t, err)
	assert.True(t, p.TotalAmount.IsZero())
	assert.Equal(t, types.MustQuantity("100"), f.Qty(t, branch.ID, basil.ID))

	entries, err := f.Svc.Ledger.ForReference(f.Ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.TypeExpense, entries[0].Type)
	assert.True(t, entries[0].Amount.IsZero())
}

func TestProcessPurchase_ConversionOutOfRange(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	flour := f.Item(t, "Flour", "g", "1000000")

	_, err := f.Svc.Procurement.ProcessPurchase(f.Ctx, procurement.Input{
		BranchID: branch.ID,
		Supplier: "Mill Co",
		Lines: []procurement.LineInput{
			{ItemID: flour.ID, Quantity: types.MustQuantity("1000000000000"), UnitPrice: types.MustMoney("1")},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	assert.Equal(t, types.Quantity(0), f.Qty(t, branch.ID, flour.ID))
	entries, err := f.Svc.Ledger.List(f.Ctx, ledger.Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	list, err := f.Svc.Procurement.List(f.Ctx, branch.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
