package handlers

import (
	"github.com/gin-gonic/gin"

	"slice/internal/domain/sales"
	"slice/internal/domain/waste"
	"slice/internal/infrastructure/http/v1/dto"
)

// POSHandler serves the point-of-sale operations: sales and waste.
type POSHandler struct {
	*BaseHandler
	sales *sales.Service
	waste *waste.Service
}

// NewPOSHandler creates a POS handler.
func NewPOSHandler(base *BaseHandler, salesSvc *sales.Service, wasteSvc *waste.Service) *POSHandler {
	return &POSHandler{BaseHandler: base, sales: salesSvc, waste: wasteSvc}
}

// ProcessSale handles POST /sales.
func (h *POSHandler) ProcessSale(c *gin.Context) {
	var req dto.SaleRequest
	if !h.BindJSON(c, &req) || !h.AuthorizeBranch(c, req.BranchID) {
		return
	}
	sale, err := h.sales.ProcessSale(c.Request.Context(), req.ToInput(h.UserID(c)))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, sale)
}

// ListSales handles GET /branches/:branchId/sales.
func (h *POSHandler) ListSales(c *gin.Context) {
	branchID, ok := h.PathID(c, "branchId")
	if !ok {
		return
	}
	list, err := h.sales.ListRecent(c.Request.Context(), branchID, h.Limit(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, list)
}

// RecordWaste handles POST /waste.
func (h *POSHandler) RecordWaste(c *gin.Context) {
	var req dto.WasteRequest
	if !h.BindJSON(c, &req) || !h.AuthorizeBranch(c, req.BranchID) {
		return
	}
	rec, err := h.waste.RecordWaste(c.Request.Context(), req.ToInput(h.UserID(c)))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rec)
}

// ListWaste handles GET /branches/:branchId/waste.
func (h *POSHandler) ListWaste(c *gin.Context) {
	branchID, ok := h.PathID(c, "branchId")
	if !ok {
		return
	}
	list, err := h.waste.ListRecent(c.Request.Context(), branchID, h.Limit(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, list)
}
