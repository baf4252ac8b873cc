// Package procurement receives supplier purchases into branch stock.
package procurement

import (
	"time"

	"github.com/shopspring/decimal"

	"slice/internal/core/id"
	"slice/internal/core/types"
)

// Purchase is a supplier delivery to one branch.
type Purchase struct {
	ID           id.ID       `db:"id" json:"id"`
	Number       string      `db:"purchase_number" json:"number"`
	BranchID     id.ID       `db:"branch_id" json:"branchId"`
	Supplier     string      `db:"supplier" json:"supplier"`
	TotalAmount  types.Money `db:"total_amount" json:"totalAmount"`
	PurchasedBy  string      `db:"purchased_by" json:"purchasedBy"`
	PurchaseDate time.Time   `db:"purchase_date" json:"purchaseDate"`
	Details      []Detail    `db:"-" json:"details,omitempty"`
}

// Detail is one purchased item. Quantity and UnitPrice are in base units;
// the bulk figures are kept as entered.
type Detail struct {
	ID              id.ID           `db:"id" json:"id"`
	PurchaseID      id.ID           `db:"purchase_id" json:"purchaseId"`
	ItemID          id.ID           `db:"item_id" json:"itemId"`
	ItemName        string          `db:"item_name" json:"itemName"`
	BulkQuantity    types.Quantity  `db:"bulk_quantity" json:"bulkQuantity"`
	BulkUnitPrice   types.Money     `db:"bulk_unit_price" json:"bulkUnitPrice"`
	ConversionRatio decimal.Decimal `db:"conversion_ratio" json:"conversionRatio"`
	Quantity        types.Quantity  `db:"quantity" json:"quantity"`
	UnitPrice       types.Money     `db:"unit_price" json:"unitPrice"`
	LineTotal       types.Money     `db:"line_total" json:"lineTotal"`
}

// LineInput is a purchased line in bulk units.
type LineInput struct {
	ItemID    id.ID          `json:"itemId"`
	Quantity  types.Quantity `json:"quantity"`
	UnitPrice types.Money    `json:"unitPrice"`
}

// Input is a purchase to receive.
type Input struct {
	BranchID id.ID
	Supplier string
	UserID   string
	Lines    []LineInput
}

// Payload is the body of the purchase.received event.
type Payload struct {
	PurchaseID  id.ID       `json:"purchaseId"`
	Number      string      `json:"number"`
	BranchID    id.ID       `json:"branchId"`
	Supplier    string      `json:"supplier"`
	TotalAmount types.Money `json:"totalAmount"`
}
