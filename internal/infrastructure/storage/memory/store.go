// Package memory provides an in-process implementation of every repository
// plus a snapshot based transaction manager. It backs the domain and HTTP
// tests and the server's demo mode.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"slice/internal/core/id"
	"slice/internal/domain/audit"
	"slice/internal/domain/catalog"
	"slice/internal/domain/events"
	"slice/internal/domain/ledger"
	"slice/internal/domain/procurement"
	"slice/internal/domain/recipe"
	"slice/internal/domain/reconciliation"
	"slice/internal/domain/sales"
	"slice/internal/domain/stock"
	"slice/internal/domain/transfer"
	"slice/internal/domain/waste"
)

type stockKey struct {
	branchID id.ID
	itemID   id.ID
}

type state struct {
	branches    map[id.ID]catalog.Branch
	items       map[id.ID]catalog.Item
	products    map[id.ID]catalog.Product
	recipes     map[id.ID][]recipe.Line
	stock       map[id.ID]stock.Record
	stockIndex  map[stockKey]id.ID
	transfers   map[id.ID]transfer.Transfer
	sales       []sales.Sale
	waste       []waste.Record
	purchases   []procurement.Purchase
	adjustments []reconciliation.Adjustment
	ledger      []ledger.Entry
	outbox      []events.Event
	audit       []audit.Entry
	sequences   map[string]int64
}

func newState() *state {
	return &state{
		branches:   map[id.ID]catalog.Branch{},
		items:      map[id.ID]catalog.Item{},
		products:   map[id.ID]catalog.Product{},
		recipes:    map[id.ID][]recipe.Line{},
		stock:      map[id.ID]stock.Record{},
		stockIndex: map[stockKey]id.ID{},
		transfers:  map[id.ID]transfer.Transfer{},
		sequences:  map[string]int64{},
	}
}

// clone copies everything a rollback has to restore.
func (s *state) clone() *state {
	c := &state{
		branches:    maps.Clone(s.branches),
		items:       maps.Clone(s.items),
		products:    maps.Clone(s.products),
		recipes:     make(map[id.ID][]recipe.Line, len(s.recipes)),
		stock:       maps.Clone(s.stock),
		stockIndex:  maps.Clone(s.stockIndex),
		transfers:   make(map[id.ID]transfer.Transfer, len(s.transfers)),
		sales:       slices.Clone(s.sales),
		waste:       slices.Clone(s.waste),
		purchases:   make([]procurement.Purchase, 0, len(s.purchases)),
		adjustments: slices.Clone(s.adjustments),
		ledger:      slices.Clone(s.ledger),
		outbox:      slices.Clone(s.outbox),
		audit:       slices.Clone(s.audit),
		sequences:   maps.Clone(s.sequences),
	}
	for k, v := range s.recipes {
		c.recipes[k] = slices.Clone(v)
	}
	for k, v := range s.transfers {
		v.Lines = slices.Clone(v.Lines)
		c.transfers[k] = v
	}
	for _, p := range s.purchases {
		p.Details = slices.Clone(p.Details)
		c.purchases = append(c.purchases, p)
	}
	return c
}

// Store holds all data in memory.
//
// Transactions are serialized: one unit of work runs at a time and a failed
// one restores the snapshot taken when it started.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state
}

// New creates an empty store.
func New() *Store {
	return &Store{st: newState()}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// RunInTransaction implements tx.Manager. Nested calls join the outer unit
// and roll back only their own changes on error.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return s.savepoint(ctx, fn)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return s.savepoint(context.WithValue(ctx, txKey{}, true), fn)
}

func (s *Store) savepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// ReadOnly implements tx.ReadOnlyManager.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// read runs fn under the read lock.
func (s *Store) read(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

// view is read for lookups that cannot fail.
func (s *Store) view(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.st)
}

// write runs fn under the write lock. Outside a transaction the write is
// serialized with running transactions so a rollback cannot discard it.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Repository accessors.

func (s *Store) Branches() *BranchRepo        { return &BranchRepo{s} }
func (s *Store) Items() *ItemRepo             { return &ItemRepo{s} }
func (s *Store) Products() *ProductRepo       { return &ProductRepo{s} }
func (s *Store) Recipes() *RecipeRepo         { return &RecipeRepo{s} }
func (s *Store) Stock() *StockRepo            { return &StockRepo{s} }
func (s *Store) Transfers() *TransferRepo     { return &TransferRepo{s} }
func (s *Store) Sales() *SaleRepo             { return &SaleRepo{s} }
func (s *Store) Waste() *WasteRepo            { return &WasteRepo{s} }
func (s *Store) Purchases() *PurchaseRepo     { return &PurchaseRepo{s} }
func (s *Store) Adjustments() *AdjustmentRepo { return &AdjustmentRepo{s} }
func (s *Store) Ledger() *LedgerRepo          { return &LedgerRepo{s} }
func (s *Store) Reports() *ReportRepo         { return &ReportRepo{s} }
func (s *Store) Outbox() *Outbox              { return &Outbox{s} }
func (s *Store) Audit() *AuditLog             { return &AuditLog{s} }
func (s *Store) Numerator() *Numerator        { return &Numerator{s} }
