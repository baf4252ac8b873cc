package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/catalog"
	"slice/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

var productCols = []string{"id", "name", "category", "base_price", "is_available", "created_at"}

// ProductRepo implements catalog.ProductRepository.
type ProductRepo struct{ repo }

var _ catalog.ProductRepository = (*ProductRepo)(nil)

// NewProductRepo creates a product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{repo{txm: txm}}
}

func (r *ProductRepo) Create(ctx context.Context, p *catalog.Product) error {
	q := builder.Insert(productsTable).
		Columns(productCols...).
		Values(p.ID, p.Name, p.Category, p.BasePrice, p.IsAvailable, p.CreatedAt)
	_, err := r.exec(ctx, q, "insert product")
	return err
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	var p catalog.Product
	q := builder.Select(productCols...).From(productsTable).Where(squirrel.Eq{"id": productID})
	if err := r.get(ctx, &p, q, "product", productID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, onlyAvailable bool) ([]catalog.Product, error) {
	q := builder.Select(productCols...).From(productsTable)
	if onlyAvailable {
		q = q.Where(squirrel.Eq{"is_available": true})
	}
	var out []catalog.Product
	if err := r.selectAll(ctx, &out, q.OrderBy("category", "name"), "products"); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductRepo) UpdatePrice(ctx context.Context, productID id.ID, price types.Money) error {
	q := builder.Update(productsTable).Set("base_price", price).Where(squirrel.Eq{"id": productID})
	n, err := r.exec(ctx, q, "update price")
	if err != nil {
		return err
	}
	return mustAffect(n, "product", productID)
}

func (r *ProductRepo) SetAvailability(ctx context.Context, productID id.ID, available bool) error {
	q := builder.Update(productsTable).Set("is_available", available).Where(squirrel.Eq{"id": productID})
	n, err := r.exec(ctx, q, "update availability")
	if err != nil {
		return err
	}
	return mustAffect(n, "product", productID)
}
