package dto

import (
	"github.com/shopspring/decimal"

	"slice/internal/core/types"
	"slice/internal/domain/catalog"
	"slice/internal/domain/recipe"
)

type CreateBranchRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
	IsHQ     bool   `json:"isHq"`
}

func (r CreateBranchRequest) ToEntity() *catalog.Branch {
	return &catalog.Branch{Name: r.Name, Location: r.Location, IsHQ: r.IsHQ}
}

// ItemRequest creates or replaces a master item.
type ItemRequest struct {
	Name            string          `json:"name" binding:"required"`
	Category        string          `json:"category"`
	BulkUnit        string          `json:"bulkUnit"`
	BaseUnit        string          `json:"baseUnit" binding:"required"`
	ConversionRatio decimal.Decimal `json:"conversionRatio"`
}

func (r ItemRequest) ToEntity() *catalog.Item {
	return &catalog.Item{
		Name:            r.Name,
		Category:        r.Category,
		BulkUnit:        r.BulkUnit,
		BaseUnit:        r.BaseUnit,
		ConversionRatio: r.ConversionRatio,
	}
}

type CreateProductRequest struct {
	Name        string      `json:"name" binding:"required"`
	Category    string      `json:"category"`
	BasePrice   types.Money `json:"basePrice"`
	IsAvailable *bool       `json:"isAvailable"`
}

// ToEntity builds the product; availability defaults to true.
func (r CreateProductRequest) ToEntity() *catalog.Product {
	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}
	return &catalog.Product{
		Name:        r.Name,
		Category:    r.Category,
		BasePrice:   r.BasePrice,
		IsAvailable: available,
	}
}

type PriceRequest struct {
	Price types.Money `json:"price"`
}

type AvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// RecipeRequest replaces the whole bill of materials.
type RecipeRequest struct {
	Lines []recipe.LineInput `json:"lines"`
}

type MaxCookableResponse struct {
	BranchID    string `json:"branchId"`
	ProductID   string `json:"productId"`
	MaxCookable int64  `json:"maxCookable"`
}
