// Package dto holds request and response bodies of the v1 API.
package dto

import (
	"time"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
)

// IDResponse is returned by create endpoints that have nothing else to say.
type IDResponse struct {
	ID string `json:"id"`
}

// ListResponse wraps a list.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewList wraps items; a nil slice is rendered as [].
func NewList[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

// PeriodQuery is the reporting window shared by ledger and report endpoints.
// Times are RFC 3339; the window is [from, to).
type PeriodQuery struct {
	From     *time.Time `form:"from"`
	To       *time.Time `form:"to"`
	BranchID string     `form:"branchId"`
}

// Branch parses the optional branch filter.
func (q PeriodQuery) Branch() (*id.ID, error) {
	if q.BranchID == "" {
		return nil, nil
	}
	branchID, err := id.Parse(q.BranchID)
	if err != nil {
		return nil, apperror.NewValidation("invalid branchId").WithDetail("branchId", q.BranchID)
	}
	return &branchID, nil
}
