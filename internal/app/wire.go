// Package app wires repositories into domain services. The server, the seed
// tool and the HTTP tests share this wiring.
package app

import (
	"time"

	"slice/internal/core/numerator"
	"slice/internal/core/tx"
	"slice/internal/core/types"
	"slice/internal/domain/audit"
	"slice/internal/domain/catalog"
	"slice/internal/domain/events"
	"slice/internal/domain/ledger"
	"slice/internal/domain/procurement"
	"slice/internal/domain/recipe"
	"slice/internal/domain/reconciliation"
	"slice/internal/domain/reports"
	"slice/internal/domain/sales"
	"slice/internal/domain/stock"
	"slice/internal/domain/transfer"
	"slice/internal/domain/waste"
	"slice/internal/infrastructure/storage/memory"
)

// Repositories is the persistence surface of the domain.
type Repositories struct {
	Branches    catalog.BranchRepository
	Items       catalog.ItemRepository
	Products    catalog.ProductRepository
	Recipes     recipe.Repository
	Stock       stock.Repository
	Transfers   transfer.Repository
	Sales       sales.Repository
	Waste       waste.Repository
	Purchases   procurement.Repository
	Adjustments reconciliation.Repository
	Ledger      ledger.Repository
	Reports     reports.Repository
}

// Deps are the infrastructure handles services are built from.
type Deps struct {
	TxManager tx.Manager
	Repos     Repositories
	Numerator numerator.Generator
	Events    events.Publisher
	Audit     audit.Recorder

	// ReportCache may be nil.
	ReportCache reports.Cache
	ReportTTL   time.Duration

	// LowStockThreshold applies to newly created stock records.
	LowStockThreshold types.Quantity
}

// Services are the domain entry points.
type Services struct {
	Catalog        *catalog.Service
	Stock          *stock.Service
	Ledger         *ledger.Service
	Recipes        *recipe.Service
	Transfers      *transfer.Service
	Sales          *sales.Service
	Waste          *waste.Service
	Procurement    *procurement.Service
	Reconciliation *reconciliation.Service
	Reports        *reports.Service
}

// NewServices builds every service over d.
func NewServices(d Deps) *Services {
	publisher := d.Events
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	cat := catalog.NewService(d.Repos.Branches, d.Repos.Items, d.Repos.Products)
	stk := stock.NewService(d.Repos.Stock, publisher, d.LowStockThreshold)
	led := ledger.NewService(d.Repos.Ledger)
	rec := recipe.NewService(d.TxManager, d.Repos.Recipes, cat, stk)
	proc := procurement.NewService(d.TxManager, d.Repos.Purchases, cat, stk, led, d.Numerator, publisher)

	return &Services{
		Catalog:        cat,
		Stock:          stk,
		Ledger:         led,
		Recipes:        rec,
		Transfers:      transfer.NewService(d.TxManager, d.Repos.Transfers, cat, stk, d.Numerator, publisher, d.Audit),
		Sales:          sales.NewService(d.TxManager, d.Repos.Sales, cat, rec, stk, led, publisher),
		Waste:          waste.NewService(d.TxManager, d.Repos.Waste, cat, stk, proc, led, publisher),
		Procurement:    proc,
		Reconciliation: reconciliation.NewService(d.TxManager, d.Repos.Adjustments, stk, proc, led, publisher, d.Audit),
		Reports:        reports.NewService(d.Repos.Reports, d.ReportCache, d.ReportTTL),
	}
}

// InMemory returns dependencies backed entirely by st.
func InMemory(st *memory.Store) Deps {
	return Deps{
		TxManager: st,
		Repos: Repositories{
			Branches:    st.Branches(),
			Items:       st.Items(),
			Products:    st.Products(),
			Recipes:     st.Recipes(),
			Stock:       st.Stock(),
			Transfers:   st.Transfers(),
			Sales:       st.Sales(),
			Waste:       st.Waste(),
			Purchases:   st.Purchases(),
			Adjustments: st.Adjustments(),
			Ledger:      st.Ledger(),
			Reports:     st.Reports(),
		},
		Numerator: st.Numerator(),
		Events:    st.Outbox(),
		Audit:     st.Audit(),
	}
}
