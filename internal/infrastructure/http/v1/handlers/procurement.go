package handlers

import (
	"github.com/gin-gonic/gin"

	"slice/internal/domain/procurement"
	"slice/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler serves supplier purchases.
type PurchaseHandler struct {
	*BaseHandler
	purchases *procurement.Service
}

// NewPurchaseHandler creates a purchase handler.
func NewPurchaseHandler(base *BaseHandler, svc *procurement.Service) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, purchases: svc}
}

// Create handles POST /purchases.
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.PurchaseRequest
	if !h.BindJSON(c, &req) || !h.AuthorizeBranch(c, req.BranchID) {
		return
	}
	p, err := h.purchases.ProcessPurchase(c.Request.Context(), req.ToInput(h.UserID(c)))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// Get handles GET /purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	purchaseID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	p, err := h.purchases.Get(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// ListBranch handles GET /branches/:branchId/purchases.
func (h *PurchaseHandler) ListBranch(c *gin.Context) {
	branchID, ok := h.PathID(c, "branchId")
	if !ok {
		return
	}
	list, err := h.purchases.List(c.Request.Context(), branchID, h.Limit(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, list)
}
