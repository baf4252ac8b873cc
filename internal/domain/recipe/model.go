// Package recipe is the bill-of-materials engine: it turns product sales into
// ingredient deductions and caps how many units a branch can still cook.
package recipe

import (
	"slice/internal/core/id"
	"slice/internal/core/types"
)

// Line is one ingredient of a product, in base units per product unit.
type Line struct {
	ProductID   id.ID          `db:"product_id" json:"productId"`
	ItemID      id.ID          `db:"item_id" json:"itemId"`
	ItemName    string         `db:"item_name" json:"itemName"`
	BaseUnit    string         `db:"base_unit" json:"baseUnit"`
	RequiredQty types.Quantity `db:"required_qty" json:"requiredQty"`
}

// Requirement is the amount of one ingredient consumed by a sale.
type Requirement struct {
	ItemID id.ID
	Amount types.Quantity
}

// LineInput is a recipe line as submitted by the caller.
type LineInput struct {
	ItemID      id.ID          `json:"itemId"`
	RequiredQty types.Quantity `json:"requiredQty"`
}

// MenuEntry is a product as shown on the point of sale.
type MenuEntry struct {
	ProductID   id.ID       `json:"productId"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Price       types.Money `json:"price"`
	MaxCookable int64       `json:"maxCookable"`
}
