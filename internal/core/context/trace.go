package context

import (
	"context"

	"github.com/google/uuid"
)

// Trace identifies the request or background run a log line belongs to.
type Trace struct {
	TraceID   string
	RequestID string
	// Origin is "http" for API calls and the job name for worker runs.
	Origin string
}

// Trace origins.
const (
	OriginHTTP        = "http"
	OriginOutboxRelay = "outbox-relay"
	OriginCleanup     = "cleanup"
)

type traceKey struct{}

// NewTrace starts a trace for origin. Empty ids are generated, so callers can
// pass through whatever the client sent.
func NewTrace(origin, traceID, requestID string) *Trace {
	if traceID == "" {
		traceID = uuid.NewString()
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return &Trace{TraceID: traceID, RequestID: requestID, Origin: origin}
}

// WithTrace stores t in ctx.
func WithTrace(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

// GetTrace returns the trace carried by ctx, or nil.
func GetTrace(ctx context.Context) *Trace {
	if v, ok := ctx.Value(traceKey{}).(*Trace); ok {
		return v
	}
	return nil
}
