package recipe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slice/internal/app/apptest"
	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/recipe"
)

func TestService_MaxCookableAndMenu(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")
	dough := f.Item(t, "Dough", "g", "")
	sauce := f.Item(t, "Sauce", "ml", "")
	pizza := f.Product(t, "Margherita", "12.50")
	water := f.Product(t, "Water", "1.00")

	f.Recipe(t, pizza.ID, apptest.Line(dough.ID, "250"), apptest.Line(sauce.ID, "80"))
	f.Stock(t, branch.ID, dough.ID, "1000")
	f.Stock(t, branch.ID, sauce.ID, "200")

	n, err := f.Svc.Recipes.ComputeMaxCookable(f.Ctx, branch.ID, pizza.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = f.Svc.Recipes.ComputeMaxCookable(f.Ctx, branch.ID, water.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.Unbounded, n)

	menu, err := f.Svc.Recipes.Menu(f.Ctx, branch.ID)
	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, "Margherita", menu[0].Name)
	assert.Equal(t, int64(2), menu[0].MaxCookable)
	assert.Equal(t, recipe.Unbounded, menu[1].MaxCookable)
}

func TestService_MaxCookableUnknownProduct(t *testing.T) {
	f := apptest.New(t)
	branch := f.Branch(t, "Downtown")

	_, err := f.Svc.Recipes.ComputeMaxCookable(f.Ctx, branch.ID, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_SetRecipe(t *testing.T) {
	f := apptest.New(t)
	dough := f.Item(t, "Dough", "g", "")
	pizza := f.Product(t, "Margherita", "12.50")

	t.Run("replaces lines", func(t *testing.T) {
		f.Recipe(t, pizza.ID, apptest.Line(dough.ID, "100"))
		f.Recipe(t, pizza.ID, apptest.Line(dough.ID, "300"))

		lines, err := f.Svc.Recipes.GetRecipe(f.Ctx, pizza.ID)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, types.MustQuantity("300"), lines[0].RequiredQty)
		assert.Equal(t, "Dough", lines[0].ItemName)
	})

	t.Run("rejects unknown item", func(t *testing.T) {
		_, err := f.Svc.Recipes.SetRecipe(f.Ctx, pizza.ID, []recipe.LineInput{apptest.Line(id.New(), "1")})
		assert.True(t, apperror.IsValidation(err))

		lines, err := f.Svc.Recipes.GetRecipe(f.Ctx, pizza.ID)
		require.NoError(t, err)
		assert.Len(t, lines, 1, "previous recipe kept")
	})

	t.Run("rejects negative and duplicate lines", func(t *testing.T) {
		_, err := f.Svc.Recipes.SetRecipe(f.Ctx, pizza.ID, []recipe.LineInput{apptest.Line(dough.ID, "-1")})
		assert.True(t, apperror.IsValidation(err))

		_, err = f.Svc.Recipes.SetRecipe(f.Ctx, pizza.ID, []recipe.LineInput{
			apptest.Line(dough.ID, "1"),
			apptest.Line(dough.ID, "2"),
		})
		assert.True(t, apperror.IsValidation(err))
	})
}

func TestService_ComputeDeduction(t *testing.T) {
	f := apptest.New(t)
	dough := f.Item(t, "Dough", "g", "")
	pizza := f.Product(t, "Margherita", "12.50")
	f.Recipe(t, pizza.ID, apptest.Line(dough.ID, "250"))

	reqs, err := f.Svc.Recipes.ComputeDeduction(f.Ctx, pizza.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, []recipe.Requirement{{ItemID: dough.ID, Amount: types.MustQuantity("750")}}, reqs)

	_, err = f.Svc.Recipes.ComputeDeduction(f.Ctx, pizza.ID, 0)
	assert.True(t, apperror.IsValidation(err))
}
