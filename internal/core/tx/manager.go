// Package tx defines the unit-of-work contract used by domain services.
// Services receive a Manager at construction time; the Postgres and in-memory
// stores each provide an implementation.
package tx

import (
	"context"
)

// Manager runs a function as one atomic unit of work.
//
// If fn returns an error the unit is rolled back and the error is returned
// unchanged; otherwise it commits. Nested calls reuse the unit already
// carried by ctx, so an orchestrator can compose services that open their own.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
