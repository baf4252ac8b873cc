// Package apptest builds fully wired services over the in-memory store for tests.
package apptest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"slice/internal/app"
	appctx "slice/internal/core/context"
	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/catalog"
	"slice/internal/domain/recipe"
	"slice/internal/infrastructure/storage/memory"
)

// UserID is the caller every fixture context carries.
const UserID = "user-1"

// Fixture is a wired service graph with helpers to seed reference data.
type Fixture struct {
	Store *memory.Store
	Svc   *app.Services
	Ctx   context.Context
}

// New returns an empty fixture.
func New(t testing.TB) *Fixture {
	t.Helper()
	st := memory.New()
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:   UserID,
		Username: "tester",
		Role:     appctx.RoleAdmin,
	})
	return &Fixture{
		Store: st,
		Svc:   app.NewServices(app.InMemory(st)),
		Ctx:   ctx,
	}
}

// Branch creates a branch.
func (f *Fixture) Branch(t testing.TB, name string) catalog.Branch {
	t.Helper()
	b := &catalog.Branch{Name: name, Location: name + " street"}
	require.NoError(t, f.Svc.Catalog.CreateBranch(f.Ctx, b))
	return *b
}

// Item creates an item; ratio is the bulk to base conversion, "" for none.
func (f *Fixture) Item(t testing.TB, name, baseUnit, ratio string) catalog.Item {
	t.Helper()
	item := &catalog.Item{Name: name, Category: "Ingredients", BulkUnit: "pack", BaseUnit: baseUnit}
	if ratio != "" {
		item.ConversionRatio = decimal.RequireFromString(ratio)
	}
	require.NoError(t, f.Svc.Catalog.AddItem(f.Ctx, item))
	return *item
}

// Product creates an available product.
func (f *Fixture) Product(t testing.TB, name, price string) catalog.Product {
	t.Helper()
	p := &catalog.Product{Name: name, Category: "Mains", BasePrice: types.MustMoney(price), IsAvailable: true}
	require.NoError(t, f.Svc.Catalog.AddProduct(f.Ctx, p))
	return *p
}

// Recipe sets the product's bill of materials.
func (f *Fixture) Recipe(t testing.TB, productID id.ID, lines ...recipe.LineInput) {
	t.Helper()
	_, err := f.Svc.Recipes.SetRecipe(f.Ctx, productID, lines)
	require.NoError(t, err)
}

// Stock credits qty base units directly, bypassing purchases.
func (f *Fixture) Stock(t testing.TB, branchID, itemID id.ID, qty string) {
	t.Helper()
	err := f.Store.RunInTransaction(f.Ctx, func(ctx context.Context) error {
		return f.Svc.Stock.Credit(ctx, branchID, itemID, types.MustQuantity(qty))
	})
	require.NoError(t, err)
}

// Qty returns the current quantity, zero when there is no record.
func (f *Fixture) Qty(t testing.TB, branchID, itemID id.ID) types.Quantity {
	t.Helper()
	rec, err := f.Store.Stock().Get(f.Ctx, branchID, itemID)
	if err != nil {
		return 0
	}
	return rec.CurrentQuantity
}

// Line is shorthand for a recipe line.
func Line(itemID id.ID, qty string) recipe.LineInput {
	return recipe.LineInput{ItemID: itemID, RequiredQty: types.MustQuantity(qty)}
}
