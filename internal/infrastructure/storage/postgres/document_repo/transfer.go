package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"slice/internal/core/id"
	"slice/internal/domain/transfer"
	"slice/internal/infrastructure/storage/postgres"
)

const (
	transfersTable     = "transfers"
	transferLinesTable = "transfer_lines"
)

// TransferRepo implements transfer.Repository.
type TransferRepo struct{ repo }

var _ transfer.Repository = (*TransferRepo)(nil)

// NewTransferRepo creates a transfer repository.
func NewTransferRepo(txm *postgres.TxManager) *TransferRepo {
	return &TransferRepo{newRepo(txm)}
}

func transferSelect() squirrel.SelectBuilder {
	return builder.Select(
		"t.id", "t.waybill_number",
		"t.from_branch_id", "fb.name AS from_branch_name",
		"t.to_branch_id", "tb.name AS to_branch_name",
		"t.status", "t.requested_by", "t.sender_id", "t.receiver_id",
		"t.created_at", "t.sent_date", "t.received_date",
	).From(transfersTable + " t").
		Join("branches fb ON fb.id = t.from_branch_id").
		Join("branches tb ON tb.id = t.to_branch_id")
}

// Create must run inside a transaction.
func (r *TransferRepo) Create(ctx context.Context, t *transfer.Transfer) error {
	q := builder.Insert(transfersTable).
		Columns("id", "waybill_number", "from_branch_id", "to_branch_id", "status", "requested_by",
			"sender_id", "receiver_id", "created_at", "sent_date", "received_date").
		Values(t.ID, t.Number, t.FromBranchID, t.ToBranchID, string(t.Status), t.RequestedBy,
			t.SenderID, t.ReceiverID, t.CreatedAt, t.SentDate, t.ReceivedDate)
	if err := r.insert(ctx, q, "transfer"); err != nil {
		return err
	}

	rows := make([][]any, 0, len(t.Lines))
	for _, l := range t.Lines {
		rows = append(rows, []any{l.ID, t.ID, l.ItemID, l.Quantity})
	}
	return r.batch.CopyRows(ctx, transferLinesTable, []string{"id", "transfer_id", "item_id", "quantity"}, rows)
}

func (r *TransferRepo) GetByID(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	return r.load(ctx, transferSelect().Where(squirrel.Eq{"t.id": transferID}), transferID)
}

// GetForUpdate locks the header row only.
func (r *TransferRepo) GetForUpdate(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	q := transferSelect().Where(squirrel.Eq{"t.id": transferID}).Suffix("FOR UPDATE OF t")
	return r.load(ctx, q, transferID)
}

func (r *TransferRepo) load(ctx context.Context, q squirrel.SelectBuilder, transferID id.ID) (*transfer.Transfer, error) {
	var t transfer.Transfer
	if err := r.get(ctx, &t, q, "transfer", transferID.String()); err != nil {
		return nil, err
	}
	lines := builder.Select("l.id", "l.transfer_id", "l.item_id", "i.name AS item_name", "i.base_unit", "l.quantity").
		From(transferLinesTable + " l").
		Join("items i ON i.id = l.item_id").
		Where(squirrel.Eq{"l.transfer_id": transferID}).
		OrderBy("i.name")
	if err := r.selectAll(ctx, &t.Lines, lines, "transfer lines"); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransferRepo) UpdateStatus(ctx context.Context, t *transfer.Transfer, expected transfer.Status) (bool, error) {
	sql, args, err := builder.Update(transfersTable).
		SetMap(map[string]any{
			"status":        string(t.Status),
			"sender_id":     t.SenderID,
			"receiver_id":   t.ReceiverID,
			"sent_date":     t.SentDate,
			"received_date": t.ReceivedDate,
		}).
		Where(squirrel.Eq{"id": t.ID, "status": string(expected)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("update transfer status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func outgoingQuery(branchID id.ID) squirrel.SelectBuilder {
	return transferSelect().
		Where(squirrel.Eq{
			"t.from_branch_id": branchID,
			"t.status":         []string{string(transfer.StatusPending), string(transfer.StatusInTransit)},
		}).
		OrderBy("(t.status = 'Pending') DESC", "COALESCE(t.sent_date, t.created_at)", "t.waybill_number")
}

func incomingQuery(branchID id.ID) squirrel.SelectBuilder {
	return transferSelect().
		Where(squirrel.Eq{"t.to_branch_id": branchID, "t.status": string(transfer.StatusInTransit)}).
		OrderBy("COALESCE(t.sent_date, t.created_at) DESC", "t.waybill_number DESC")
}

func (r *TransferRepo) ListOutgoing(ctx context.Context, branchID id.ID) ([]transfer.Transfer, error) {
	var out []transfer.Transfer
	if err := r.selectAll(ctx, &out, outgoingQuery(branchID), "outgoing transfers"); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TransferRepo) ListIncoming(ctx context.Context, branchID id.ID) ([]transfer.Transfer, error) {
	var out []transfer.Transfer
	if err := r.selectAll(ctx, &out, incomingQuery(branchID), "incoming transfers"); err != nil {
		return nil, err
	}
	return out, nil
}
