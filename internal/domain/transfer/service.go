package transfer

import (
	"context"
	"fmt"
	"time"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/numerator"
	"slice/internal/core/tx"
	"slice/internal/core/types"
	"slice/internal/domain/audit"
	"slice/internal/domain/catalog"
	"slice/internal/domain/events"
	"slice/pkg/logger"
)

// Catalog resolves the branches and items referenced by a waybill.
type Catalog interface {
	ValidateBranch(ctx context.Context, branchID id.ID) (*catalog.Branch, error)
	ResolveItems(ctx context.Context, itemIDs []id.ID) (map[id.ID]catalog.Item, error)
}

// Stock is the part of the stock ledger a shipment mutates.
type Stock interface {
	Deduct(ctx context.Context, branchID, itemID id.ID, amount types.Quantity) error
	Credit(ctx context.Context, branchID, itemID id.ID, amount types.Quantity) error
}

// Service runs the transfer state machine. Every operation is one transaction.
type Service struct {
	txm       tx.Manager
	repo      Repository
	catalog   Catalog
	stock     Stock
	numerator numerator.Generator
	events    events.Publisher
	audit     audit.Recorder
	now       func() time.Time
}

// NewService creates a transfer service.
func NewService(
	txm tx.Manager,
	repo Repository,
	cat Catalog,
	stock Stock,
	num numerator.Generator,
	publisher events.Publisher,
	recorder audit.Recorder,
) *Service {
	return &Service{
		txm:       txm,
		repo:      repo,
		catalog:   cat,
		stock:     stock,
		numerator: num,
		events:    publisher,
		audit:     recorder,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RequestInput describes a stock request from one branch to another.
type RequestInput struct {
	FromBranchID id.ID
	ToBranchID   id.ID
	RequestedBy  string
	Lines        []LineInput
}

// RequestStock records a Pending transfer. No stock moves.
func (s *Service) RequestStock(ctx context.Context, in RequestInput) (*Transfer, error) {
	if err := validateRequest(in.FromBranchID, in.ToBranchID, in.Lines); err != nil {
		return nil, err
	}

	var t *Transfer
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.create(ctx, in)
		return err
	})
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	logger.Info(ctx, "transfer requested",
		"transfer_id", t.ID,
		"number", t.Number,
		"from", t.FromBranchID,
		"to", t.ToBranchID,
		"lines", len(t.Lines),
	)
	return t, nil
}

// ApproveAndShip debits every line from the source branch and marks the
// transfer In-Transit. The first short line aborts the whole shipment.
func (s *Service) ApproveAndShip(ctx context.Context, transferID id.ID, approverID string) (*Transfer, error) {
	var t *Transfer
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.repo.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		return s.ship(ctx, t, approverID)
	})
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	logger.Info(ctx, "transfer shipped", "transfer_id", t.ID, "number", t.Number, "sender_id", approverID)
	return t, nil
}

// ReceiveShipment credits every line to the destination branch and completes the transfer.
func (s *Service) ReceiveShipment(ctx context.Context, transferID id.ID, receiverID string) (*Transfer, error) {
	var t *Transfer
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.repo.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if err := t.Receive(receiverID, s.now()); err != nil {
			return err
		}

		for _, l := range t.Lines {
			if err := s.stock.Credit(ctx, t.ToBranchID, l.ItemID, l.Quantity); err != nil {
				return err
			}
		}

		if err := s.commitStatus(ctx, t, StatusInTransit); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audit.EntityTransfer, t.ID, audit.ActionReceived, map[string]any{
			"status":      t.Status,
			"receiver_id": receiverID,
		}); err != nil {
			return fmt.Errorf("audit receive: %w", err)
		}
		return s.publish(ctx, t, events.TypeTransferReceived)
	})
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	logger.Info(ctx, "transfer received", "transfer_id", t.ID, "number", t.Number, "receiver_id", receiverID)
	return t, nil
}

// DispatchInput describes a push shipment decided by the sender.
type DispatchInput struct {
	FromBranchID id.ID
	ToBranchID   id.ID
	SenderID     string
	Lines        []LineInput
}

// Dispatch creates a transfer and ships it in one transaction.
// Zero-quantity lines are dropped.
func (s *Service) Dispatch(ctx context.Context, in DispatchInput) (*Transfer, error) {
	lines := make([]LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.Quantity.IsZero() {
			continue
		}
		lines = append(lines, l)
	}
	if err := validateRequest(in.FromBranchID, in.ToBranchID, lines); err != nil {
		return nil, err
	}

	var t *Transfer
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.create(ctx, RequestInput{
			FromBranchID: in.FromBranchID,
			ToBranchID:   in.ToBranchID,
			RequestedBy:  in.SenderID,
			Lines:        lines,
		})
		if err != nil {
			return err
		}
		return s.ship(ctx, t, in.SenderID)
	})
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	logger.Info(ctx, "transfer dispatched",
		"transfer_id", t.ID,
		"number", t.Number,
		"from", t.FromBranchID,
		"to", t.ToBranchID,
	)
	return t, nil
}

// Get returns a transfer with its lines.
func (s *Service) Get(ctx context.Context, transferID id.ID) (*Transfer, error) {
	t, err := s.repo.GetByID(ctx, transferID)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return t, nil
}

// History returns the chain-of-custody entries of a transfer, oldest first.
func (s *Service) History(ctx context.Context, transferID id.ID) ([]audit.Entry, error) {
	if _, err := s.repo.GetByID(ctx, transferID); err != nil {
		return nil, apperror.Wrap(err)
	}
	entries, err := s.audit.History(ctx, audit.EntityTransfer, transferID)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return entries, nil
}

// ListOutgoing returns open transfers leaving a branch.
func (s *Service) ListOutgoing(ctx context.Context, branchID id.ID) ([]Transfer, error) {
	list, err := s.repo.ListOutgoing(ctx, branchID)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return list, nil
}

// ListIncoming returns shipments on their way to a branch.
func (s *Service) ListIncoming(ctx context.Context, branchID id.ID) ([]Transfer, error) {
	list, err := s.repo.ListIncoming(ctx, branchID)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return list, nil
}

func validateRequest(from, to id.ID, lines []LineInput) error {
	if id.IsNil(from) || id.IsNil(to) {
		return apperror.NewValidation("source and destination branches are required")
	}
	if from == to {
		return apperror.NewValidation("source and destination branches must differ").
			WithDetail("branch_id", from.String())
	}
	if len(lines) == 0 {
		return apperror.NewValidation("transfer must have at least one line")
	}
	seen := make(map[id.ID]struct{}, len(lines))
	for i, l := range lines {
		if !l.Quantity.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("line %d: quantity must be positive", i)).
				WithDetail("item_id", l.ItemID.String())
		}
		if _, dup := seen[l.ItemID]; dup {
			return apperror.NewValidation(fmt.Sprintf("line %d: duplicate item", i)).
				WithDetail("item_id", l.ItemID.String())
		}
		seen[l.ItemID] = struct{}{}
	}
	return nil
}

// create inserts a Pending transfer. Must run inside a transaction.
func (s *Service) create(ctx context.Context, in RequestInput) (*Transfer, error) {
	from, err := s.catalog.ValidateBranch(ctx, in.FromBranchID)
	if err != nil {
		return nil, err
	}
	to, err := s.catalog.ValidateBranch(ctx, in.ToBranchID)
	if err != nil {
		return nil, err
	}

	ids := make([]id.ID, 0, len(in.Lines))
	for _, l := range in.Lines {
		ids = append(ids, l.ItemID)
	}
	items, err := s.catalog.ResolveItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(numerator.PrefixWaybill), nil, now)
	if err != nil {
		return nil, fmt.Errorf("generate waybill number: %w", err)
	}

	t := &Transfer{
		ID:             id.New(),
		Number:         number,
		FromBranchID:   from.ID,
		FromBranchName: from.Name,
		ToBranchID:     to.ID,
		ToBranchName:   to.Name,
		Status:         StatusPending,
		RequestedBy:    in.RequestedBy,
		CreatedAt:      now,
		Lines:          make([]Line, 0, len(in.Lines)),
	}
	for _, l := range in.Lines {
		item := items[l.ItemID]
		t.Lines = append(t.Lines, Line{
			ID:         id.New(),
			TransferID: t.ID,
			ItemID:     l.ItemID,
			ItemName:   item.Name,
			BaseUnit:   item.BaseUnit,
			Quantity:   l.Quantity,
		})
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create transfer: %w", err)
	}
	if err := s.audit.Record(ctx, audit.EntityTransfer, t.ID, audit.ActionRequested, map[string]any{
		"status":       t.Status,
		"requested_by": t.RequestedBy,
		"lines":        t.payload().Lines,
	}); err != nil {
		return nil, fmt.Errorf("audit request: %w", err)
	}
	if err := s.publish(ctx, t, events.TypeTransferRequested); err != nil {
		return nil, err
	}
	return t, nil
}

// ship debits the source and persists In-Transit. Must run inside a transaction.
func (s *Service) ship(ctx context.Context, t *Transfer, senderID string) error {
	if err := t.Ship(senderID, s.now()); err != nil {
		return err
	}

	for _, l := range t.Lines {
		if err := s.stock.Deduct(ctx, t.FromBranchID, l.ItemID, l.Quantity); err != nil {
			return err
		}
	}

	if err := s.commitStatus(ctx, t, StatusPending); err != nil {
		return err
	}
	if err := s.audit.Record(ctx, audit.EntityTransfer, t.ID, audit.ActionShipped, map[string]any{
		"status":    t.Status,
		"sender_id": senderID,
	}); err != nil {
		return fmt.Errorf("audit ship: %w", err)
	}
	return s.publish(ctx, t, events.TypeTransferShipped)
}

func (s *Service) commitStatus(ctx context.Context, t *Transfer, expected Status) error {
	ok, err := s.repo.UpdateStatus(ctx, t, expected)
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	if !ok {
		// Another transaction moved the transfer first.
		return apperror.NewInvalidStateTransition(entityName, t.ID.String(), "changed concurrently", string(expected)).
			WithDetail("transfer_id", t.ID.String())
	}
	return nil
}

func (s *Service) publish(ctx context.Context, t *Transfer, eventType string) error {
	err := s.events.Publish(ctx, events.Event{
		AggregateType: events.AggregateTransfer,
		AggregateID:   t.ID,
		Type:          eventType,
		Payload:       t.payload(),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}
