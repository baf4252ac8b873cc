package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/internal/domain/procurement"
	"slice/internal/domain/reconciliation"
	"slice/internal/domain/sales"
	"slice/internal/domain/transfer"
	"slice/internal/domain/waste"
)

// TransferRepo implements transfer.Repository.
type TransferRepo struct{ s *Store }

var _ transfer.Repository = (*TransferRepo)(nil)

func (st *state) transferView(t transfer.Transfer, withLines bool) transfer.Transfer {
	t.FromBranchName = st.branches[t.FromBranchID].Name
	t.ToBranchName = st.branches[t.ToBranchID].Name
	if !withLines {
		t.Lines = nil
		return t
	}
	lines := slices.Clone(t.Lines)
	for i := range lines {
		if item, ok := st.items[lines[i].ItemID]; ok {
			lines[i].ItemName = item.Name
			lines[i].BaseUnit = item.BaseUnit
		}
	}
	t.Lines = lines
	return t
}

func (r *TransferRepo) Create(ctx context.Context, t *transfer.Transfer) error {
	return r.s.write(ctx, func(st *state) error {
		cp := *t
		cp.Lines = slices.Clone(t.Lines)
		st.transfers[t.ID] = cp
		return nil
	})
}

func (r *TransferRepo) GetByID(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	var out transfer.Transfer
	err := r.s.read(func(st *state) error {
		t, ok := st.transfers[transferID]
		if !ok {
			return apperror.NewNotFound("transfer", transferID.String())
		}
		out = st.transferView(t, true)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate relies on transactions being serialized by the store.
func (r *TransferRepo) GetForUpdate(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	return r.GetByID(ctx, transferID)
}

func (r *TransferRepo) UpdateStatus(ctx context.Context, t *transfer.Transfer, expected transfer.Status) (bool, error) {
	var ok bool
	err := r.s.write(ctx, func(st *state) error {
		cur, exists := st.transfers[t.ID]
		if !exists || cur.Status != expected {
			return nil
		}
		cur.Status = t.Status
		cur.SenderID = t.SenderID
		cur.ReceiverID = t.ReceiverID
		cur.SentDate = t.SentDate
		cur.ReceivedDate = t.ReceivedDate
		st.transfers[t.ID] = cur
		ok = true
		return nil
	})
	return ok, err
}

func sortDate(t transfer.Transfer) time.Time {
	if t.SentDate != nil {
		return *t.SentDate
	}
	return t.CreatedAt
}

func (r *TransferRepo) ListOutgoing(ctx context.Context, branchID id.ID) ([]transfer.Transfer, error) {
	var out []transfer.Transfer
	r.s.view(func(st *state) {
		for _, t := range st.transfers {
			if t.FromBranchID != branchID {
				continue
			}
			if t.Status != transfer.StatusPending && t.Status != transfer.StatusInTransit {
				continue
			}
			out = append(out, st.transferView(t, false))
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Status == transfer.StatusPending, out[j].Status == transfer.StatusPending
		if pi != pj {
			return pi
		}
		di, dj := sortDate(out[i]), sortDate(out[j])
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

func (r *TransferRepo) ListIncoming(ctx context.Context, branchID id.ID) ([]transfer.Transfer, error) {
	var out []transfer.Transfer
	r.s.view(func(st *state) {
		for _, t := range st.transfers {
			if t.ToBranchID == branchID && t.Status == transfer.StatusInTransit {
				out = append(out, st.transferView(t, false))
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := sortDate(out[i]), sortDate(out[j])
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return out[i].Number > out[j].Number
	})
	return out, nil
}

// SaleRepo implements sales.Repository.
type SaleRepo struct{ s *Store }

var _ sales.Repository = (*SaleRepo)(nil)

func (r *SaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	return r.s.write(ctx, func(st *state) error {
		st.sales = append(st.sales, *sale)
		return nil
	})
}

func (r *SaleRepo) ListRecent(ctx context.Context, branchID id.ID, limit int) ([]sales.Sale, error) {
	var out []sales.Sale
	r.s.view(func(st *state) {
		for i := len(st.sales) - 1; i >= 0 && len(out) < limit; i-- {
			if st.sales[i].BranchID == branchID {
				out = append(out, st.sales[i])
			}
		}
	})
	return out, nil
}

// WasteRepo implements waste.Repository.
type WasteRepo struct{ s *Store }

var _ waste.Repository = (*WasteRepo)(nil)

func (r *WasteRepo) Create(ctx context.Context, rec *waste.Record) error {
	return r.s.write(ctx, func(st *state) error {
		st.waste = append(st.waste, *rec)
		return nil
	})
}

func (r *WasteRepo) ListRecent(ctx context.Context, branchID id.ID, limit int) ([]waste.Record, error) {
	var out []waste.Record
	r.s.view(func(st *state) {
		for i := len(st.waste) - 1; i >= 0 && len(out) < limit; i-- {
			if st.waste[i].BranchID == branchID {
				out = append(out, st.waste[i])
			}
		}
	})
	return out, nil
}

// PurchaseRepo implements procurement.Repository.
type PurchaseRepo struct{ s *Store }

var _ procurement.Repository = (*PurchaseRepo)(nil)

func (r *PurchaseRepo) Create(ctx context.Context, p *procurement.Purchase) error {
	return r.s.write(ctx, func(st *state) error {
		cp := *p
		cp.Details = slices.Clone(p.Details)
		st.purchases = append(st.purchases, cp)
		return nil
	})
}

func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*procurement.Purchase, error) {
	var out procurement.Purchase
	err := r.s.read(func(st *state) error {
		for _, p := range st.purchases {
			if p.ID == purchaseID {
				out = p
				out.Details = slices.Clone(p.Details)
				return nil
			}
		}
		return apperror.NewNotFound("purchase", purchaseID.String())
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PurchaseRepo) List(ctx context.Context, branchID id.ID, limit int) ([]procurement.Purchase, error) {
	var out []procurement.Purchase
	r.s.view(func(st *state) {
		for i := len(st.purchases) - 1; i >= 0 && len(out) < limit; i-- {
			if st.purchases[i].BranchID == branchID {
				p := st.purchases[i]
				p.Details = nil
				out = append(out, p)
			}
		}
	})
	return out, nil
}

func (r *PurchaseRepo) LatestUnitCost(ctx context.Context, itemID id.ID) (types.Money, bool, error) {
	var (
		cost  types.Money
		found bool
	)
	r.s.view(func(st *state) {
		for i := len(st.purchases) - 1; i >= 0; i-- {
			details := st.purchases[i].Details
			for j := len(details) - 1; j >= 0; j-- {
				if details[j].ItemID == itemID {
					cost, found = details[j].UnitPrice, true
					return
				}
			}
		}
	})
	return cost, found, nil
}

// AdjustmentRepo implements reconciliation.Repository.
type AdjustmentRepo struct{ s *Store }

var _ reconciliation.Repository = (*AdjustmentRepo)(nil)

func (r *AdjustmentRepo) Create(ctx context.Context, a *reconciliation.Adjustment) error {
	return r.s.write(ctx, func(st *state) error {
		st.adjustments = append(st.adjustments, *a)
		return nil
	})
}

func (r *AdjustmentRepo) ListByBranch(ctx context.Context, branchID id.ID, limit int) ([]reconciliation.Adjustment, error) {
	var out []reconciliation.Adjustment
	r.s.view(func(st *state) {
		for i := len(st.adjustments) - 1; i >= 0 && len(out) < limit; i-- {
			if st.adjustments[i].BranchID == branchID {
				out = append(out, st.adjustments[i])
			}
		}
	})
	return out, nil
}
