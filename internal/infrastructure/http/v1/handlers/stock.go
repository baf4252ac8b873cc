package handlers

import (
	"github.com/gin-gonic/gin"

	"slice/internal/domain/stock"
	"slice/internal/infrastructure/http/v1/dto"
)

// StockHandler serves branch stock views.
type StockHandler struct {
	*BaseHandler
	stock *stock.Service
}

// NewStockHandler creates a stock handler.
func NewStockHandler(base *BaseHandler, svc *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, stock: svc}
}

// StockView is a stock record with its low-stock flag.
type StockView struct {
	stock.Record
	IsLow bool `json:"isLow"`
}

func views(records []stock.Record) []StockView {
	out := make([]StockView, len(records))
	for i, r := range records {
		out[i] = StockView{Record: r, IsLow: r.IsLow()}
	}
	return out
}

// ListBranch handles GET /branches/:branchId/stock.
func (h *StockHandler) ListBranch(c *gin.Context) {
	branchID, ok := h.PathID(c, "branchId")
	if !ok {
		return
	}
	records, err := h.stock.ListBranch(c.Request.Context(), branchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, views(records))
}

// ListLow handles GET /branches/:branchId/stock/low.
func (h *StockHandler) ListLow(c *gin.Context) {
	branchID, ok := h.PathID(c, "branchId")
	if !ok {
		return
	}
	records, err := h.stock.ListLowStock(c.Request.Context(), branchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, views(records))
}

// SetThreshold handles PUT /stock/:stockId/threshold.
func (h *StockHandler) SetThreshold(c *gin.Context) {
	stockID, ok := h.PathID(c, "stockId")
	if !ok {
		return
	}
	var req dto.ThresholdRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.stock.SetThreshold(c.Request.Context(), stockID, req.Threshold); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
