// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"slice/internal/core/apperror"
	"slice/pkg/logger"
)

// Recovery turns a panic into a 500 response and logs the stack.
// It must be the outermost middleware.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", rec,
					"stack", string(debug.Stack()),
				)

				// The error handler runs inside this frame and was unwound by the panic.
				_ = c.Error(apperror.NewInternal(fmt.Errorf("panic: %v", rec)))
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
						Code:    apperror.CodeInternal,
						Message: "Internal server error",
						Details: map[string]any{"request_id": c.GetString(ctxRequestID)},
					})
					return
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
