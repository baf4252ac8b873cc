package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "slice/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// gin context keys.
const (
	ctxRequestID = "request_id"
	ctxTraceID   = "trace_id"
)

// Trace reads or generates request and trace ids and echoes them back.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		tr := appctx.NewTrace(appctx.OriginHTTP, c.GetHeader(HeaderTraceID), c.GetHeader(HeaderRequestID))
		c.Request = c.Request.WithContext(appctx.WithTrace(c.Request.Context(), tr))

		c.Set(ctxTraceID, tr.TraceID)
		c.Set(ctxRequestID, tr.RequestID)
		c.Header(HeaderRequestID, tr.RequestID)
		c.Header(HeaderTraceID, tr.TraceID)

		c.Next()
	}
}
