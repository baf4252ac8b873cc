package reports_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slice/internal/app/apptest"
	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/ledger"
	"slice/internal/domain/reports"
)

type fakeCache struct {
	data map[string][]byte
	gets int
	hits int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.gets++
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func post(t *testing.T, f *apptest.Fixture, branchID id.ID, typ ledger.EntryType, category, amount string) {
	t.Helper()
	ref := id.New()
	require.NoError(t, f.Svc.Ledger.Append(f.Ctx, &ledger.Entry{
		BranchID:    &branchID,
		Type:        typ,
		Category:    category,
		Amount:      types.MustMoney(amount),
		Description: category,
		ReferenceID: &ref,
		CreatedBy:   apptest.UserID,
	}))
}

func TestPnL(t *testing.T) {
	f := apptest.New(t)
	a := f.Branch(t, "Downtown")
	b := f.Branch(t, "Uptown")

	post(t, f, a.ID, ledger.TypeIncome, ledger.CategorySales, "200")
	post(t, f, a.ID, ledger.TypeExpense, ledger.CategoryIngredients, "50")
	post(t, f, b.ID, ledger.TypeIncome, ledger.CategorySales, "100")
	post(t, f, b.ID, ledger.TypeExpense, ledger.CategoryWaste, "120")

	pnl, err := f.Svc.Reports.PnL(f.Ctx, reports.Filter{})
	require.NoError(t, err)
	assert.True(t, types.MustMoney("300").Equal(pnl.Revenue))
	assert.True(t, types.MustMoney("170").Equal(pnl.Expenses))
	assert.True(t, types.MustMoney("130").Equal(pnl.Net))
	assert.True(t, types.MustMoney("43.33").Equal(pnl.Margin), pnl.Margin.String())

	branch := b.ID
	pnl, err = f.Svc.Reports.PnL(f.Ctx, reports.Filter{BranchID: &branch})
	require.NoError(t, err)
	assert.True(t, types.MustMoney("-20").Equal(pnl.Net))
	assert.True(t, types.MustMoney("-20").Equal(pnl.Margin))
}

func TestPnL_NoRevenueHasZeroMargin(t *testing.T) {
	f := apptest.New(t)
	a := f.Branch(t, "Downtown")
	post(t, f, a.ID, ledger.TypeExpense, ledger.CategoryWaste, "10")

	pnl, err := f.Svc.Reports.PnL(f.Ctx, reports.Filter{})
	require.NoError(t, err)
	assert.True(t, pnl.Margin.IsZero())
	assert.True(t, types.MustMoney("-10").Equal(pnl.Net))
}

func TestPnL_PeriodExcludesOutsideEntries(t *testing.T) {
	f := apptest.New(t)
	a := f.Branch(t, "Downtown")
	post(t, f, a.ID, ledger.TypeIncome, ledger.CategorySales, "10")

	past := time.Now().Add(-48 * time.Hour)
	pnl, err := f.Svc.Reports.PnL(f.Ctx, reports.Filter{From: past.Add(-time.Hour), To: past})
	require.NoError(t, err)
	assert.True(t, pnl.Revenue.IsZero())

	_, err = f.Svc.Reports.PnL(f.Ctx, reports.Filter{From: past, To: past.Add(-time.Hour)})
	assert.True(t, apperror.IsValidation(err))
}

func TestBranchPerformance_OrderedByNet(t *testing.T) {
	f := apptest.New(t)
	a := f.Branch(t, "Airport")
	b := f.Branch(t, "Beach")
	c := f.Branch(t, "Center")

	post(t, f, a.ID, ledger.TypeIncome, ledger.CategorySales, "50")
	post(t, f, b.ID, ledger.TypeIncome, ledger.CategorySales, "500")
	post(t, f, b.ID, ledger.TypeExpense, ledger.CategoryIngredients, "100")
	post(t, f, c.ID, ledger.TypeExpense, ledger.CategoryLeakage, "5")

	perf, err := f.Svc.Reports.BranchPerformance(f.Ctx, reports.Filter{})
	require.NoError(t, err)
	require.Len(t, perf, 3)
	assert.Equal(t, []string{"Beach", "Airport", "Center"},
		[]string{perf[0].BranchName, perf[1].BranchName, perf[2].BranchName})
	assert.True(t, types.MustMoney("400").Equal(perf[0].Net))
	assert.True(t, types.MustMoney("-5").Equal(perf[2].Net))
}

func TestExpenseBreakdown(t *testing.T) {
	f := apptest.New(t)
	a := f.Branch(t, "Downtown")
	post(t, f, a.ID, ledger.TypeExpense, ledger.CategoryWaste, "3")
	post(t, f, a.ID, ledger.TypeExpense, ledger.CategoryWaste, "4")
	post(t, f, a.ID, ledger.TypeExpense, ledger.CategoryIngredients, "20")
	post(t, f, a.ID, ledger.TypeIncome, ledger.CategorySales, "40")

	rows, err := f.Svc.Reports.ExpenseBreakdown(f.Ctx, reports.Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byCategory := map[string]types.Money{}
	for _, r := range rows {
		byCategory[r.Type+"/"+r.Category] = r.Amount
	}
	assert.True(t, types.MustMoney("7").Equal(byCategory[string(ledger.TypeExpense)+"/"+ledger.CategoryWaste]))
	assert.True(t, types.MustMoney("20").Equal(byCategory[string(ledger.TypeExpense)+"/"+ledger.CategoryIngredients]))
	assert.True(t, types.MustMoney("40").Equal(byCategory[string(ledger.TypeIncome)+"/"+ledger.CategorySales]))
}

func TestPnL_ServedFromCache(t *testing.T) {
	f := apptest.New(t)
	a := f.Branch(t, "Downtown")
	post(t, f, a.ID, ledger.TypeIncome, ledger.CategorySales, "10")

	cache := newFakeCache()
	svc := reports.NewService(f.Store.Reports(), cache, time.Minute)
	filter := reports.Filter{From: time.Now().Add(-time.Hour), To: time.Now().Add(time.Hour)}

	first, err := svc.PnL(f.Ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 0, cache.hits)

	post(t, f, a.ID, ledger.TypeIncome, ledger.CategorySales, "90")

	second, err := svc.PnL(f.Ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.True(t, first.Revenue.Equal(second.Revenue), "cached figure until ttl expires")
}
