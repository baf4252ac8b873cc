package reports

import (
	"context"
	"time"
)

// Repository aggregates ledger entries.
type Repository interface {
	Totals(ctx context.Context, f Filter) (Totals, error)
	// ByBranch returns income and expense for every branch, including idle ones.
	ByBranch(ctx context.Context, f Filter) ([]BranchPerformance, error)
	ByCategory(ctx context.Context, f Filter) ([]CategoryTotal, error)
}

// Cache stores computed reports for a short time.
type Cache interface {
	// Get decodes a cached value into dest. found is false on a miss.
	Get(ctx context.Context, key string, dest any) (found bool, err error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}
