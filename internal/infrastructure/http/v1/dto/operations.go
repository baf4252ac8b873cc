package dto

import (
	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/procurement"
	"slice/internal/domain/reconciliation"
	"slice/internal/domain/sales"
	"slice/internal/domain/transfer"
	"slice/internal/domain/waste"
)

type SaleRequest struct {
	BranchID  id.ID `json:"branchId"`
	ProductID id.ID `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

func (r SaleRequest) ToInput(userID string) sales.Input {
	return sales.Input{BranchID: r.BranchID, ProductID: r.ProductID, Quantity: r.Quantity, UserID: userID}
}

type WasteRequest struct {
	BranchID id.ID          `json:"branchId"`
	ItemID   id.ID          `json:"itemId"`
	Quantity types.Quantity `json:"quantity"`
	Reason   string         `json:"reason"`
}

func (r WasteRequest) ToInput(userID string) waste.Input {
	return waste.Input{BranchID: r.BranchID, ItemID: r.ItemID, Quantity: r.Quantity, Reason: r.Reason, UserID: userID}
}

type PurchaseRequest struct {
	BranchID id.ID                   `json:"branchId"`
	Supplier string                  `json:"supplier"`
	Lines    []procurement.LineInput `json:"lines"`
}

func (r PurchaseRequest) ToInput(userID string) procurement.Input {
	return procurement.Input{BranchID: r.BranchID, Supplier: r.Supplier, UserID: userID, Lines: r.Lines}
}

type AdjustmentRequest struct {
	StockID     id.ID          `json:"stockId"`
	BranchID    id.ID          `json:"branchId"`
	ItemID      id.ID          `json:"itemId"`
	SystemQty   types.Quantity `json:"systemQty"`
	PhysicalQty types.Quantity `json:"physicalQty"`
}

func (r AdjustmentRequest) ToInput(userID string) reconciliation.Input {
	return reconciliation.Input{
		StockID:     r.StockID,
		BranchID:    r.BranchID,
		ItemID:      r.ItemID,
		SystemQty:   r.SystemQty,
		PhysicalQty: r.PhysicalQty,
		UserID:      userID,
	}
}

type CountRequest struct {
	Counts []reconciliation.Count `json:"counts"`
}

// TransferRequest is used by both the request and the dispatch endpoints.
type TransferRequest struct {
	FromBranchID id.ID                `json:"fromBranchId"`
	ToBranchID   id.ID                `json:"toBranchId"`
	Lines        []transfer.LineInput `json:"lines"`
}

func (r TransferRequest) ToRequestInput(userID string) transfer.RequestInput {
	return transfer.RequestInput{FromBranchID: r.FromBranchID, ToBranchID: r.ToBranchID, RequestedBy: userID, Lines: r.Lines}
}

func (r TransferRequest) ToDispatchInput(userID string) transfer.DispatchInput {
	return transfer.DispatchInput{FromBranchID: r.FromBranchID, ToBranchID: r.ToBranchID, SenderID: userID, Lines: r.Lines}
}

type ThresholdRequest struct {
	Threshold types.Quantity `json:"threshold"`
}
