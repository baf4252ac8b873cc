package recipe

import (
	"context"

	"slice/internal/core/id"
)

// Repository stores bill-of-materials lines.
type Repository interface {
	// LinesForProduct returns the product's lines with item names; empty when none.
	LinesForProduct(ctx context.Context, productID id.ID) ([]Line, error)
	// ReplaceLines deletes the product's lines and inserts the given ones.
	ReplaceLines(ctx context.Context, productID id.ID, lines []Line) error
}
