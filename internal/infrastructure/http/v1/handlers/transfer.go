package handlers

import (
	"github.com/gin-gonic/gin"

	"slice/internal/domain/transfer"
	"slice/internal/infrastructure/http/v1/dto"
)

// TransferHandler serves inter-branch transfers.
type TransferHandler struct {
	*BaseHandler
	transfers *transfer.Service
}

// NewTransferHandler creates a transfer handler.
func NewTransferHandler(base *BaseHandler, svc *transfer.Service) *TransferHandler {
	return &TransferHandler{BaseHandler: base, transfers: svc}
}

// Request handles POST /transfers.
func (h *TransferHandler) Request(c *gin.Context) {
	var req dto.TransferRequest
	if !h.BindJSON(c, &req) || !h.AuthorizeBranch(c, req.ToBranchID) {
		return
	}
	t, err := h.transfers.RequestStock(c.Request.Context(), req.ToRequestInput(h.UserID(c)))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, t)
}

// Dispatch handles POST /transfers/dispatch.
func (h *TransferHandler) Dispatch(c *gin.Context) {
	var req dto.TransferRequest
	if !h.BindJSON(c, &req) || !h.AuthorizeBranch(c, req.FromBranchID) {
		return
	}
	t, err := h.transfers.Dispatch(c.Request.Context(), req.ToDispatchInput(h.UserID(c)))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, t)
}

// Approve handles POST /transfers/:id/approve.
func (h *TransferHandler) Approve(c *gin.Context) {
	transferID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	t, err := h.transfers.ApproveAndShip(c.Request.Context(), transferID, h.UserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// Receive handles POST /transfers/:id/receive.
func (h *TransferHandler) Receive(c *gin.Context) {
	transferID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	t, err := h.transfers.ReceiveShipment(c.Request.Context(), transferID, h.UserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// Get handles GET /transfers/:id.
func (h *TransferHandler) Get(c *gin.Context) {
	transferID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	t, err := h.transfers.Get(c.Request.Context(), transferID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// History handles GET /transfers/:id/history.
func (h *TransferHandler) History(c *gin.Context) {
	transferID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	entries, err := h.transfers.History(c.Request.Context(), transferID)
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, entries)
}

// Outgoing handles GET /branches/:branchId/transfers/outgoing.
func (h *TransferHandler) Outgoing(c *gin.Context) {
	branchID, ok := h.PathID(c, "branchId")
	if !ok {
		return
	}
	list, err := h.transfers.ListOutgoing(c.Request.Context(), branchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, list)
}

// Incoming handles GET /branches/:branchId/transfers/incoming.
func (h *TransferHandler) Incoming(c *gin.Context) {
	branchID, ok := h.PathID(c, "branchId")
	if !ok {
		return
	}
	list, err := h.transfers.ListIncoming(c.Request.Context(), branchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, list)
}
