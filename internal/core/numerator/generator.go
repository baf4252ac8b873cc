// Package numerator provides the contract for human-readable document numbers
// (waybills, purchase orders). Implementations live in pkg/numerator and the
// in-memory store.
package numerator

import (
	"context"
	"time"
)

// Generator generates sequential document numbers.
type Generator interface {
	// GetNextNumber generates the next document number.
	// Pattern: PREFIX-YEAR-XXXXX (e.g., WB-2026-00001)
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber sets the current sequence value (for data imports).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}

// Document prefixes.
const (
	PrefixWaybill  = "WB"
	PrefixPurchase = "PO"
)
