package document_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/procurement"
	"slice/internal/infrastructure/storage/postgres"
)

const (
	purchasesTable       = "purchases"
	purchaseDetailsTable = "purchase_details"
)

var (
	purchaseCols = []string{"id", "purchase_number", "branch_id", "supplier", "total_amount", "purchased_by", "purchase_date"}
	detailCols   = []string{
		"id", "purchase_id", "item_id", "item_name", "bulk_quantity", "bulk_unit_price",
		"conversion_ratio", "quantity", "unit_price", "line_total",
	}
)

// PurchaseRepo implements procurement.Repository.
type PurchaseRepo struct{ repo }

var _ procurement.Repository = (*PurchaseRepo)(nil)

// NewPurchaseRepo creates a purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{newRepo(txm)}
}

// Create must run inside a transaction.
func (r *PurchaseRepo) Create(ctx context.Context, p *procurement.Purchase) error {
	q := builder.Insert(purchasesTable).Columns(purchaseCols...).
		Values(p.ID, p.Number, p.BranchID, p.Supplier, p.TotalAmount, p.PurchasedBy, p.PurchaseDate)
	if err := r.insert(ctx, q, "purchase"); err != nil {
		return err
	}

	rows := make([][]any, 0, len(p.Details))
	for _, d := range p.Details {
		rows = append(rows, []any{
			d.ID, p.ID, d.ItemID, d.ItemName, d.BulkQuantity, d.BulkUnitPrice,
			d.ConversionRatio, d.Quantity, d.UnitPrice, d.LineTotal,
		})
	}
	return r.batch.CopyRows(ctx, purchaseDetailsTable, detailCols, rows)
}

func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*procurement.Purchase, error) {
	var p procurement.Purchase
	q := builder.Select(purchaseCols...).From(purchasesTable).Where(squirrel.Eq{"id": purchaseID})
	if err := r.get(ctx, &p, q, "purchase", purchaseID.String()); err != nil {
		return nil, err
	}
	details := builder.Select(detailCols...).From(purchaseDetailsTable).
		Where(squirrel.Eq{"purchase_id": purchaseID}).
		OrderBy("item_name")
	if err := r.selectAll(ctx, &p.Details, details, "purchase details"); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepo) List(ctx context.Context, branchID id.ID, limit int) ([]procurement.Purchase, error) {
	var out []procurement.Purchase
	if err := r.selectAll(ctx, &out, recent(purchasesTable, purchaseCols, "purchase_date", branchID, limit), "purchases"); err != nil {
		return nil, err
	}
	return out, nil
}

// latestCostSQL picks the newest purchase of the item across all branches.
const latestCostSQL = `
	SELECT d.unit_price
	FROM purchase_details d
	JOIN purchases p ON p.id = d.purchase_id
	WHERE d.item_id = $1
	ORDER BY p.purchase_date DESC, p.id DESC
	LIMIT 1`

func (r *PurchaseRepo) LatestUnitCost(ctx context.Context, itemID id.ID) (types.Money, bool, error) {
	var cost types.Money
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, latestCostSQL, itemID).Scan(&cost)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Zero(), false, nil
	}
	if err != nil {
		return types.Zero(), false, fmt.Errorf("latest unit cost: %w", err)
	}
	return cost, true, nil
}
