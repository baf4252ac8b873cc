package handlers

import (
	"github.com/gin-gonic/gin"

	"slice/internal/domain/reconciliation"
	"slice/internal/infrastructure/http/v1/dto"
)

// ReconciliationHandler serves physical counts.
type ReconciliationHandler struct {
	*BaseHandler
	recon *reconciliation.Service
}

// NewReconciliationHandler creates a reconciliation handler.
func NewReconciliationHandler(base *BaseHandler, svc *reconciliation.Service) *ReconciliationHandler {
	return &ReconciliationHandler{BaseHandler: base, recon: svc}
}

// Sheet handles GET /branches/:branchId/reconciliation.
func (h *ReconciliationHandler) Sheet(c *gin.Context) {
	branchID, ok := h.PathID(c, "branchId")
	if !ok {
		return
	}
	rows, err := h.recon.Sheet(c.Request.Context(), branchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, rows)
}

// SaveAdjustment handles POST /reconciliation/adjustments.
func (h *ReconciliationHandler) SaveAdjustment(c *gin.Context) {
	var req dto.AdjustmentRequest
	if !h.BindJSON(c, &req) || !h.AuthorizeBranch(c, req.BranchID) {
		return
	}
	adj, err := h.recon.SaveAdjustment(c.Request.Context(), req.ToInput(h.UserID(c)))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, adj)
}

// SubmitCount handles POST /branches/:branchId/reconciliation.
func (h *ReconciliationHandler) SubmitCount(c *gin.Context) {
	branchID, ok := h.PathID(c, "branchId")
	if !ok || !h.AuthorizeBranch(c, branchID) {
		return
	}
	var req dto.CountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	adjustments, err := h.recon.SubmitCount(c.Request.Context(), branchID, h.UserID(c), req.Counts)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.NewList(adjustments))
}

// History handles GET /branches/:branchId/reconciliation/history.
func (h *ReconciliationHandler) History(c *gin.Context) {
	branchID, ok := h.PathID(c, "branchId")
	if !ok {
		return
	}
	list, err := h.recon.History(c.Request.Context(), branchID, h.Limit(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, list)
}
