package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"slice/internal/core/id"
	"slice/internal/domain/recipe"
	"slice/internal/infrastructure/storage/postgres"
)

const recipeLinesTable = "recipe_lines"

// RecipeRepo implements recipe.Repository.
type RecipeRepo struct {
	repo
	batch *postgres.BatchInserter
}

var _ recipe.Repository = (*RecipeRepo)(nil)

// NewRecipeRepo creates a recipe repository.
func NewRecipeRepo(txm *postgres.TxManager) *RecipeRepo {
	return &RecipeRepo{repo: repo{txm: txm}, batch: postgres.NewBatchInserter(txm)}
}

func recipeLinesQuery(productID id.ID) squirrel.SelectBuilder {
	return builder.
		Select("r.product_id", "r.item_id", "i.name AS item_name", "i.base_unit", "r.required_qty").
		From(recipeLinesTable + " r").
		Join(itemsTable + " i ON i.id = r.item_id").
		Where(squirrel.Eq{"r.product_id": productID}).
		OrderBy("i.name")
}

func (r *RecipeRepo) LinesForProduct(ctx context.Context, productID id.ID) ([]recipe.Line, error) {
	var out []recipe.Line
	if err := r.selectAll(ctx, &out, recipeLinesQuery(productID), "recipe lines"); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceLines must run inside a transaction.
func (r *RecipeRepo) ReplaceLines(ctx context.Context, productID id.ID, lines []recipe.Line) error {
	del := builder.Delete(recipeLinesTable).Where(squirrel.Eq{"product_id": productID})
	if _, err := r.exec(ctx, del, "delete recipe lines"); err != nil {
		return err
	}
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{productID, l.ItemID, l.RequiredQty})
	}
	return r.batch.CopyRows(ctx, recipeLinesTable, []string{"product_id", "item_id", "required_qty"}, rows)
}
