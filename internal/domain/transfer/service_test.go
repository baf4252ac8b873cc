package transfer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slice/internal/app/apptest"
	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/audit"
	"slice/internal/domain/catalog"
	"slice/internal/domain/events"
	"slice/internal/domain/transfer"
)

type env struct {
	*apptest.Fixture
	hq, outlet   catalog.Branch
	flour, sugar catalog.Item
}

func setup(t *testing.T) *env {
	t.Helper()
	f := apptest.New(t)
	e := &env{
		Fixture: f,
		hq:      f.Branch(t, "HQ"),
		outlet:  f.Branch(t, "Outlet"),
		flour:   f.Item(t, "Flour", "g", "1000"),
		sugar:   f.Item(t, "Sugar", "g", "1000"),
	}
	f.Stock(t, e.hq.ID, e.flour.ID, "5000")
	f.Stock(t, e.hq.ID, e.sugar.ID, "300")
	return e
}

func (e *env) request(t *testing.T, lines ...transfer.LineInput) *transfer.Transfer {
	t.Helper()
	tr, err := e.Svc.Transfers.RequestStock(e.Ctx, transfer.RequestInput{
		FromBranchID: e.hq.ID,
		ToBranchID:   e.outlet.ID,
		RequestedBy:  "requester",
		Lines:        lines,
	})
	require.NoError(t, err)
	return tr
}

func line(itemID id.ID, qty string) transfer.LineInput {
	return transfer.LineInput{ItemID: itemID, Quantity: types.MustQuantity(qty)}
}

func TestRequestStock(t *testing.T) {
	e := setup(t)

	tr := e.request(t, line(e.flour.ID, "1200"))

	assert.Equal(t, transfer.StatusPending, tr.Status)
	assert.Regexp(t, `^WB-\d{4}-00001$`, tr.Number)
	assert.Nil(t, tr.SenderID)
	assert.Nil(t, tr.SentDate)
	assert.Equal(t, types.MustQuantity("5000"), e.Qty(t, e.hq.ID, e.flour.ID), "request moves no stock")
	assert.Len(t, e.Store.Outbox().Events(events.TypeTransferRequested), 1)

	got, err := e.Svc.Transfers.Get(e.Ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "HQ", got.FromBranchName)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Flour", got.Lines[0].ItemName)
}

func TestRequestStock_Validation(t *testing.T) {
	e := setup(t)

	tests := []struct {
		name string
		in   transfer.RequestInput
	}{
		{"empty lines", transfer.RequestInput{FromBranchID: e.hq.ID, ToBranchID: e.outlet.ID}},
		{"same branch", transfer.RequestInput{FromBranchID: e.hq.ID, ToBranchID: e.hq.ID, Lines: []transfer.LineInput{line(e.flour.ID, "1")}}},
		{"zero quantity", transfer.RequestInput{FromBranchID: e.hq.ID, ToBranchID: e.outlet.ID, Lines: []transfer.LineInput{line(e.flour.ID, "0")}}},
		{"negative quantity", transfer.RequestInput{FromBranchID: e.hq.ID, ToBranchID: e.outlet.ID, Lines: []transfer.LineInput{line(e.flour.ID, "-5")}}},
		{"unknown item", transfer.RequestInput{FromBranchID: e.hq.ID, ToBranchID: e.outlet.ID, Lines: []transfer.LineInput{line(id.New(), "1")}}},
		{"unknown branch", transfer.RequestInput{FromBranchID: id.New(), ToBranchID: e.outlet.ID, Lines: []transfer.LineInput{line(e.flour.ID, "1")}}},
		{"duplicate item", transfer.RequestInput{FromBranchID: e.hq.ID, ToBranchID: e.outlet.ID, Lines: []transfer.LineInput{line(e.flour.ID, "1"), line(e.flour.ID, "2")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Svc.Transfers.RequestStock(e.Ctx, tt.in)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}

	assert.Empty(t, e.Store.Outbox().Events(events.TypeTransferRequested))
}

func TestApproveAndReceive(t *testing.T) {
	e := setup(t)
	tr := e.request(t, line(e.flour.ID, "1200"), line(e.sugar.ID, "300"))

	shipped, err := e.Svc.Transfers.ApproveAndShip(e.Ctx, tr.ID, "approver")
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusInTransit, shipped.Status)
	require.NotNil(t, shipped.SenderID)
	assert.Equal(t, "approver", *shipped.SenderID)
	assert.NotNil(t, shipped.SentDate)

	assert.Equal(t, types.MustQuantity("3800"), e.Qty(t, e.hq.ID, e.flour.ID))
	assert.Equal(t, types.Quantity(0), e.Qty(t, e.hq.ID, e.sugar.ID))
	assert.Equal(t, types.Quantity(0), e.Qty(t, e.outlet.ID, e.flour.ID), "nothing credited while in transit")

	received, err := e.Svc.Transfers.ReceiveShipment(e.Ctx, tr.ID, "receiver")
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusCompleted, received.Status)
	require.NotNil(t, received.ReceiverID)
	assert.Equal(t, "receiver", *received.ReceiverID)
	assert.NotNil(t, received.ReceivedDate)

	assert.Equal(t, types.MustQuantity("1200"), e.Qty(t, e.outlet.ID, e.flour.ID))
	assert.Equal(t, types.MustQuantity("300"), e.Qty(t, e.outlet.ID, e.sugar.ID))

	// conservation across both branches
	total := e.Qty(t, e.hq.ID, e.flour.ID) + e.Qty(t, e.outlet.ID, e.flour.ID)
	assert.Equal(t, types.MustQuantity("5000"), total)

	history, err := e.Svc.Transfers.History(e.Ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, audit.ActionRequested, history[0].Action)
	assert.Equal(t, audit.ActionShipped, history[1].Action)
	assert.Equal(t, audit.ActionReceived, history[2].Action)
	assert.Equal(t, apptest.UserID, history[2].UserID)
}

func TestApprove_InsufficientStockRollsBack(t *testing.T) {
	e := setup(t)
	tr := e.request(t, line(e.flour.ID, "1000"), line(e.sugar.ID, "301"))

	_, err := e.Svc.Transfers.ApproveAndShip(e.Ctx, tr.ID, "approver")
	require.Error(t, err)
	require.True(t, apperror.IsInsufficientStock(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, e.sugar.ID.String(), appErr.Details["item_id"])
	assert.Equal(t, "301.0000", appErr.Details["requested"])
	assert.Equal(t, "300.0000", appErr.Details["available"])

	assert.Equal(t, types.MustQuantity("5000"), e.Qty(t, e.hq.ID, e.flour.ID), "earlier line rolled back")

	got, err := e.Svc.Transfers.Get(e.Ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusPending, got.Status)
	assert.Empty(t, e.Store.Outbox().Events(events.TypeTransferShipped))
}

func TestStateMachineIsForwardOnly(t *testing.T) {
	e := setup(t)
	tr := e.request(t, line(e.flour.ID, "100"))

	_, err := e.Svc.Transfers.ReceiveShipment(e.Ctx, tr.ID, "receiver")
	assert.True(t, apperror.IsInvalidStateTransition(err), "cannot receive a pending transfer")
	assert.Equal(t, types.Quantity(0), e.Qty(t, e.outlet.ID, e.flour.ID), "nothing credited")
	assert.Equal(t, types.MustQuantity("5000"), e.Qty(t, e.hq.ID, e.flour.ID))

	_, err = e.Svc.Transfers.ApproveAndShip(e.Ctx, tr.ID, "approver")
	require.NoError(t, err)

	_, err = e.Svc.Transfers.ApproveAndShip(e.Ctx, tr.ID, "approver")
	require.True(t, apperror.IsInvalidStateTransition(err), "second approval must fail")
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "already processed", appErr.Details["reason"])
	assert.Equal(t, types.MustQuantity("4900"), e.Qty(t, e.hq.ID, e.flour.ID), "deducted once")

	_, err = e.Svc.Transfers.ReceiveShipment(e.Ctx, tr.ID, "receiver")
	require.NoError(t, err)

	_, err = e.Svc.Transfers.ReceiveShipment(e.Ctx, tr.ID, "receiver")
	require.True(t, apperror.IsInvalidStateTransition(err))
	appErr, _ = apperror.AsAppError(err)
	assert.Equal(t, "not in transit", appErr.Details["reason"])
	assert.Equal(t, types.MustQuantity("100"), e.Qty(t, e.outlet.ID, e.flour.ID), "credited once")

	_, err = e.Svc.Transfers.ApproveAndShip(e.Ctx, tr.ID, "approver")
	require.True(t, apperror.IsInvalidStateTransition(err), "a completed transfer cannot be approved")
	appErr, _ = apperror.AsAppError(err)
	assert.Equal(t, string(transfer.StatusCompleted), appErr.Details["status"])
	assert.Equal(t, types.MustQuantity("4900"), e.Qty(t, e.hq.ID, e.flour.ID), "source untouched")
	assert.Equal(t, types.MustQuantity("100"), e.Qty(t, e.outlet.ID, e.flour.ID), "destination untouched")

	got, err := e.Svc.Transfers.Get(e.Ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusCompleted, got.Status)
	assert.Len(t, e.Store.Outbox().Events(events.TypeTransferShipped), 1)
	assert.Len(t, e.Store.Outbox().Events(events.TypeTransferReceived), 1)
}

func TestUnknownTransfer(t *testing.T) {
	e := setup(t)

	_, err := e.Svc.Transfers.ApproveAndShip(e.Ctx, id.New(), "approver")
	assert.True(t, apperror.IsNotFound(err))

	_, err = e.Svc.Transfers.ReceiveShipment(e.Ctx, id.New(), "receiver")
	assert.True(t, apperror.IsNotFound(err))

	_, err = e.Svc.Transfers.History(e.Ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestListOutgoingAndIncoming(t *testing.T) {
	e := setup(t)
	first := e.request(t, line(e.flour.ID, "10"))
	second := e.request(t, line(e.flour.ID, "20"))
	third := e.request(t, line(e.flour.ID, "30"))
	done := e.request(t, line(e.flour.ID, "40"))

	_, err := e.Svc.Transfers.ApproveAndShip(e.Ctx, first.ID, "approver")
	require.NoError(t, err)
	_, err = e.Svc.Transfers.ApproveAndShip(e.Ctx, third.ID, "approver")
	require.NoError(t, err)
	_, err = e.Svc.Transfers.ApproveAndShip(e.Ctx, done.ID, "approver")
	require.NoError(t, err)
	_, err = e.Svc.Transfers.ReceiveShipment(e.Ctx, done.ID, "receiver")
	require.NoError(t, err)

	out, err := e.Svc.Transfers.ListOutgoing(e.Ctx, e.hq.ID)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, second.ID, out[0].ID, "pending first")
	assert.Equal(t, first.ID, out[1].ID)
	assert.Equal(t, third.ID, out[2].ID)

	in, err := e.Svc.Transfers.ListIncoming(e.Ctx, e.outlet.ID)
	require.NoError(t, err)
	require.Len(t, in, 2)
	assert.Equal(t, third.ID, in[0].ID, "most recently sent first")
	assert.Equal(t, first.ID, in[1].ID)

	none, err := e.Svc.Transfers.ListIncoming(e.Ctx, e.hq.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDispatch(t *testing.T) {
	e := setup(t)

	tr, err := e.Svc.Transfers.Dispatch(e.Ctx, transfer.DispatchInput{
		FromBranchID: e.hq.ID,
		ToBranchID:   e.outlet.ID,
		SenderID:     "dispatcher",
		Lines:        []transfer.LineInput{line(e.flour.ID, "500"), line(e.sugar.ID, "0")},
	})
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusInTransit, tr.Status)
	require.Len(t, tr.Lines, 1, "zero lines dropped")
	assert.Equal(t, types.MustQuantity("4500"), e.Qty(t, e.hq.ID, e.flour.ID))

	_, err = e.Svc.Transfers.Dispatch(e.Ctx, transfer.DispatchInput{
		FromBranchID: e.hq.ID,
		ToBranchID:   e.outlet.ID,
		SenderID:     "dispatcher",
		Lines:        []transfer.LineInput{line(e.flour.ID, "0")},
	})
	assert.True(t, apperror.IsValidation(err))

	_, err = e.Svc.Transfers.Dispatch(e.Ctx, transfer.DispatchInput{
		FromBranchID: e.hq.ID,
		ToBranchID:   e.outlet.ID,
		SenderID:     "dispatcher",
		Lines:        []transfer.LineInput{line(e.sugar.ID, "999")},
	})
	assert.True(t, apperror.IsInsufficientStock(err))

	out, err := e.Svc.Transfers.ListOutgoing(e.Ctx, e.hq.ID)
	require.NoError(t, err)
	assert.Len(t, out, 1, "failed dispatch leaves no transfer behind")
}
