// Package transfer implements inter-branch stock shipments (waybills).
//
// A transfer moves forward only: Pending -> In-Transit -> Completed.
// The source is debited in full when the transfer ships and the
// destination is credited in full when it is received.
package transfer

import (
	"time"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
)

// Status is the lifecycle state of a transfer.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusInTransit Status = "In-Transit"
	StatusCompleted Status = "Completed"
)

const entityName = "transfer"

// Transfer is a waybill header with its lines.
type Transfer struct {
	ID             id.ID      `db:"id" json:"id"`
	Number         string     `db:"waybill_number" json:"number"`
	FromBranchID   id.ID      `db:"from_branch_id" json:"fromBranchId"`
	FromBranchName string     `db:"from_branch_name" json:"fromBranchName"`
	ToBranchID     id.ID      `db:"to_branch_id" json:"toBranchId"`
	ToBranchName   string     `db:"to_branch_name" json:"toBranchName"`
	Status         Status     `db:"status" json:"status"`
	RequestedBy    string     `db:"requested_by" json:"requestedBy"`
	SenderID       *string    `db:"sender_id" json:"senderId,omitempty"`
	ReceiverID     *string    `db:"receiver_id" json:"receiverId,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	SentDate       *time.Time `db:"sent_date" json:"sentDate,omitempty"`
	ReceivedDate   *time.Time `db:"received_date" json:"receivedDate,omitempty"`
	Lines          []Line     `db:"-" json:"lines,omitempty"`
}

// Line is the quantity of one item on a waybill, in base units.
type Line struct {
	ID         id.ID          `db:"id" json:"id"`
	TransferID id.ID          `db:"transfer_id" json:"transferId"`
	ItemID     id.ID          `db:"item_id" json:"itemId"`
	ItemName   string         `db:"item_name" json:"itemName"`
	BaseUnit   string         `db:"base_unit" json:"baseUnit"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
}

// LineInput is a requested line.
type LineInput struct {
	ItemID   id.ID          `json:"itemId"`
	Quantity types.Quantity `json:"quantity"`
}

// Ship moves a pending transfer to In-Transit.
func (t *Transfer) Ship(senderID string, at time.Time) error {
	if t.Status != StatusPending {
		return t.transitionError(StatusPending, "already processed")
	}
	t.Status = StatusInTransit
	t.SenderID = &senderID
	t.SentDate = &at
	return nil
}

// Receive completes an in-transit transfer.
func (t *Transfer) Receive(receiverID string, at time.Time) error {
	if t.Status != StatusInTransit {
		return t.transitionError(StatusInTransit, "not in transit")
	}
	t.Status = StatusCompleted
	t.ReceiverID = &receiverID
	t.ReceivedDate = &at
	return nil
}

func (t *Transfer) transitionError(expected Status, reason string) error {
	return apperror.NewInvalidStateTransition(entityName, t.ID.String(), string(t.Status), string(expected)).
		WithDetail("transfer_id", t.ID.String()).
		WithDetail("reason", reason)
}

// Payload is the body of transfer.* events.
type Payload struct {
	TransferID   id.ID         `json:"transferId"`
	Number       string        `json:"number"`
	FromBranchID id.ID         `json:"fromBranchId"`
	ToBranchID   id.ID         `json:"toBranchId"`
	Status       Status        `json:"status"`
	Lines        []PayloadLine `json:"lines"`
}

// PayloadLine is one line of an event payload.
type PayloadLine struct {
	ItemID   id.ID          `json:"itemId"`
	Quantity types.Quantity `json:"quantity"`
}

func (t *Transfer) payload() Payload {
	p := Payload{
		TransferID:   t.ID,
		Number:       t.Number,
		FromBranchID: t.FromBranchID,
		ToBranchID:   t.ToBranchID,
		Status:       t.Status,
		Lines:        make([]PayloadLine, 0, len(t.Lines)),
	}
	for _, l := range t.Lines {
		p.Lines = append(p.Lines, PayloadLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return p
}
