package recipe

import (
	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
)

// Unbounded is reported when a product has no constraining ingredient.
const Unbounded int64 = 999

// ComputeMaxCookable returns the minimum over constraining lines of
// floor(stock / requiredQty). Lines with a zero requirement do not constrain;
// items missing from stock count as zero.
func ComputeMaxCookable(lines []Line, stock map[id.ID]types.Quantity) int64 {
	limit := int64(-1)
	for _, l := range lines {
		if !l.RequiredQty.IsPositive() {
			continue
		}
		n := stock[l.ItemID].WholeUnitsIn(l.RequiredQty)
		if limit < 0 || n < limit {
			limit = n
		}
	}
	if limit < 0 {
		return Unbounded
	}
	return limit
}

// ComputeDeduction returns requiredQty × quantity for every constraining line.
// A product that does not fit a Quantity is a ValidationError.
func ComputeDeduction(lines []Line, quantity int64) ([]Requirement, error) {
	out := make([]Requirement, 0, len(lines))
	for _, l := range lines {
		if !l.RequiredQty.IsPositive() {
			continue
		}
		amount, err := l.RequiredQty.MulInt(quantity)
		if err != nil {
			return nil, apperror.NewValidation("quantity too large").
				WithDetail("item_id", l.ItemID.String()).
				WithDetail("quantity", quantity)
		}
		out = append(out, Requirement{ItemID: l.ItemID, Amount: amount})
	}
	return out, nil
}

// itemIDs returns the distinct ingredient ids of lines.
func itemIDs(lines []Line) []id.ID {
	seen := make(map[id.ID]struct{}, len(lines))
	out := make([]id.ID, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ItemID]; ok {
			continue
		}
		seen[l.ItemID] = struct{}{}
		out = append(out, l.ItemID)
	}
	return out
}
