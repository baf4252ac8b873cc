// Package catalog holds the reference data shared by every branch:
// branches, master inventory items and menu products.
package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
)

// Branch is a restaurant location. One branch is usually the HQ commissary.
type Branch struct {
	ID        id.ID     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Location  string    `db:"location" json:"location"`
	IsHQ      bool      `db:"is_hq" json:"isHq"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Validate checks required fields.
func (b *Branch) Validate() error {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return apperror.NewValidation("branch name is required").WithDetail("field", "name")
	}
	return nil
}

// Item is a master inventory item tracked in base units.
type Item struct {
	ID       id.ID  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Category string `db:"category" json:"category"`
	// BulkUnit is the unit purchases are made in (e.g. "sack").
	BulkUnit string `db:"bulk_unit" json:"bulkUnit"`
	// BaseUnit is the unit stock and recipes are kept in (e.g. "g").
	BaseUnit string `db:"base_unit" json:"baseUnit"`
	// ConversionRatio is the number of base units in one bulk unit.
	ConversionRatio decimal.Decimal `db:"conversion_ratio" json:"conversionRatio"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
}

// Ratio returns the bulk to base ratio, falling back to 1 when unset or non-positive.
func (i Item) Ratio() decimal.Decimal {
	if !i.ConversionRatio.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return i.ConversionRatio
}

// Validate checks required fields.
func (i *Item) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	if i.Name == "" {
		return apperror.NewValidation("item name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(i.BaseUnit) == "" {
		return apperror.NewValidation("base unit is required").WithDetail("field", "baseUnit")
	}
	if i.ConversionRatio.IsNegative() {
		return apperror.NewValidation("conversion ratio must not be negative").
			WithDetail("field", "conversionRatio")
	}
	if i.BulkUnit == "" {
		i.BulkUnit = i.BaseUnit
	}
	return nil
}

// Product is a sellable menu item.
type Product struct {
	ID          id.ID       `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Category    string      `db:"category" json:"category"`
	BasePrice   types.Money `db:"base_price" json:"basePrice"`
	IsAvailable bool        `db:"is_available" json:"isAvailable"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}

// Validate checks required fields.
func (p *Product) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return apperror.NewValidation("product name is required").WithDetail("field", "name")
	}
	if p.BasePrice.IsNegative() {
		return apperror.NewValidation("price must not be negative").WithDetail("field", "basePrice")
	}
	return nil
}
