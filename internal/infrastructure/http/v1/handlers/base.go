// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"slice/internal/core/apperror"
	appctx "slice/internal/core/context"
	"slice/internal/core/id"
	"slice/internal/infrastructure/http/v1/dto"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds the request body; on failure the error is attached and false returned.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error attaches err and aborts. middleware.ErrorHandler writes the response.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// PathID parses a UUID path parameter.
func (h *BaseHandler) PathID(c *gin.Context, param string) (id.ID, bool) {
	raw := c.Param(param)
	parsed, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+param).WithDetail(param, raw))
		return id.Nil(), false
	}
	return parsed, true
}

// Limit reads ?limit= clamped to (0, maxRecentLimit].
func (h *BaseHandler) Limit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return defaultRecentLimit
	}
	return min(limit, maxRecentLimit)
}

// UserID returns the authenticated caller.
func (h *BaseHandler) UserID(c *gin.Context) string {
	return appctx.GetUserID(c.Request.Context())
}

// AuthorizeBranch rejects callers bound to a different branch.
// Admins and users without a home branch may act on any branch.
func (h *BaseHandler) AuthorizeBranch(c *gin.Context, branchID id.ID) bool {
	user := appctx.GetUser(c.Request.Context())
	if user == nil || user.Role == appctx.RoleAdmin || user.BranchID == "" {
		return true
	}
	if user.BranchID == branchID.String() {
		return true
	}
	h.Error(c, apperror.NewForbidden("branch is outside the caller's scope").
		WithDetail("branch_id", branchID.String()))
	return false
}

// OK sends 200 with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends 201 with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends 204.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// List sends 200 with a list envelope.
func List[T any](c *gin.Context, items []T) {
	c.JSON(http.StatusOK, dto.NewList(items))
}
