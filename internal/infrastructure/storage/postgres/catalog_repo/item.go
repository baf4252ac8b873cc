package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"slice/internal/core/id"
	"slice/internal/domain/catalog"
	"slice/internal/infrastructure/storage/postgres"
)

const itemsTable = "items"

var itemCols = []string{"id", "name", "category", "bulk_unit", "base_unit", "conversion_ratio", "created_at"}

// ItemRepo implements catalog.ItemRepository.
type ItemRepo struct{ repo }

var _ catalog.ItemRepository = (*ItemRepo)(nil)

// NewItemRepo creates an item repository.
func NewItemRepo(txm *postgres.TxManager) *ItemRepo {
	return &ItemRepo{repo{txm: txm}}
}

func (r *ItemRepo) Create(ctx context.Context, item *catalog.Item) error {
	q := builder.Insert(itemsTable).
		Columns(itemCols...).
		Values(item.ID, item.Name, item.Category, item.BulkUnit, item.BaseUnit, item.ConversionRatio, item.CreatedAt)
	_, err := r.exec(ctx, q, "insert item")
	return err
}

func (r *ItemRepo) Update(ctx context.Context, item *catalog.Item) error {
	q := builder.Update(itemsTable).
		SetMap(map[string]any{
			"name":             item.Name,
			"category":         item.Category,
			"bulk_unit":        item.BulkUnit,
			"base_unit":        item.BaseUnit,
			"conversion_ratio": item.ConversionRatio,
		}).
		Where(squirrel.Eq{"id": item.ID})
	n, err := r.exec(ctx, q, "update item")
	if err != nil {
		return err
	}
	return mustAffect(n, "item", item.ID)
}

func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*catalog.Item, error) {
	var item catalog.Item
	q := builder.Select(itemCols...).From(itemsTable).Where(squirrel.Eq{"id": itemID})
	if err := r.get(ctx, &item, q, "item", itemID); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepo) GetByIDs(ctx context.Context, itemIDs []id.ID) (map[id.ID]catalog.Item, error) {
	out := make(map[id.ID]catalog.Item, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	var items []catalog.Item
	q := builder.Select(itemCols...).From(itemsTable).Where(squirrel.Eq{"id": itemIDs})
	if err := r.selectAll(ctx, &items, q, "items"); err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

func (r *ItemRepo) List(ctx context.Context, category string) ([]catalog.Item, error) {
	var out []catalog.Item
	if err := r.selectAll(ctx, &out, itemListQuery(category), "items"); err != nil {
		return nil, err
	}
	return out, nil
}

func itemListQuery(category string) squirrel.SelectBuilder {
	q := builder.Select(itemCols...).From(itemsTable)
	if category != "" {
		q = q.Where(squirrel.Eq{"category": category})
	}
	return q.OrderBy("category", "name")
}
