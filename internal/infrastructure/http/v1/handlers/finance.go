package handlers

import (
	"github.com/gin-gonic/gin"

	"slice/internal/domain/ledger"
	"slice/internal/domain/reports"
	"slice/internal/infrastructure/http/v1/dto"
)

// FinanceHandler serves the ledger and finance reports.
type FinanceHandler struct {
	*BaseHandler
	ledger  *ledger.Service
	reports *reports.Service
}

// NewFinanceHandler creates a finance handler.
func NewFinanceHandler(base *BaseHandler, led *ledger.Service, rep *reports.Service) *FinanceHandler {
	return &FinanceHandler{BaseHandler: base, ledger: led, reports: rep}
}

// Ledger handles GET /ledger.
func (h *FinanceHandler) Ledger(c *gin.Context) {
	var q dto.LedgerQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	entries, err := h.ledger.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, entries)
}

func (h *FinanceHandler) reportFilter(c *gin.Context) (reports.Filter, bool) {
	var q dto.PeriodQuery
	if !h.BindQuery(c, &q) {
		return reports.Filter{}, false
	}
	branchID, err := q.Branch()
	if err != nil {
		h.Error(c, err)
		return reports.Filter{}, false
	}
	f := reports.Filter{BranchID: branchID}
	if q.From != nil {
		f.From = *q.From
	}
	if q.To != nil {
		f.To = *q.To
	}
	return f, true
}

// PnL handles GET /reports/pnl.
func (h *FinanceHandler) PnL(c *gin.Context) {
	f, ok := h.reportFilter(c)
	if !ok {
		return
	}
	pnl, err := h.reports.PnL(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, pnl)
}

// BranchPerformance handles GET /reports/branches.
func (h *FinanceHandler) BranchPerformance(c *gin.Context) {
	f, ok := h.reportFilter(c)
	if !ok {
		return
	}
	rows, err := h.reports.BranchPerformance(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, rows)
}

// ExpenseBreakdown handles GET /reports/expenses.
func (h *FinanceHandler) ExpenseBreakdown(c *gin.Context) {
	f, ok := h.reportFilter(c)
	if !ok {
		return
	}
	rows, err := h.reports.ExpenseBreakdown(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, rows)
}
