package document_repo

import (
	"context"

	"slice/internal/core/id"
	"slice/internal/domain/sales"
	"slice/internal/infrastructure/storage/postgres"
)

const salesTable = "sales"

var saleCols = []string{
	"id", "branch_id", "product_id", "product_name", "quantity_sold",
	"unit_price", "total_amount", "sold_by", "transaction_date",
}

// SaleRepo implements sales.Repository.
type SaleRepo struct{ repo }

var _ sales.Repository = (*SaleRepo)(nil)

// NewSaleRepo creates a sale repository.
func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{newRepo(txm)}
}

func (r *SaleRepo) Create(ctx context.Context, s *sales.Sale) error {
	q := builder.Insert(salesTable).Columns(saleCols...).
		Values(s.ID, s.BranchID, s.ProductID, s.ProductName, s.QuantitySold,
			s.UnitPrice, s.TotalAmount, s.SoldBy, s.TransactionDate)
	return r.insert(ctx, q, "sale")
}

func (r *SaleRepo) ListRecent(ctx context.Context, branchID id.ID, limit int) ([]sales.Sale, error) {
	var out []sales.Sale
	if err := r.selectAll(ctx, &out, recent(salesTable, saleCols, "transaction_date", branchID, limit), "sales"); err != nil {
		return nil, err
	}
	return out, nil
}
