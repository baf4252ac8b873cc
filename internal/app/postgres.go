package app

import (
	"fmt"

	"slice/internal/infrastructure/storage/postgres"
	"slice/internal/infrastructure/storage/postgres/catalog_repo"
	"slice/internal/infrastructure/storage/postgres/document_repo"
	"slice/internal/infrastructure/storage/postgres/register_repo"
	"slice/internal/infrastructure/storage/postgres/report_repo"
	pkgnum "slice/pkg/numerator"
)

// Postgres returns dependencies backed by PostgreSQL through txm.
// Repositories join the transaction txm carries in the context.
func Postgres(txm *postgres.TxManager) (Deps, error) {
	auditLog, err := postgres.NewAuditLog(txm)
	if err != nil {
		return Deps{}, fmt.Errorf("audit log: %w", err)
	}
	return Deps{
		TxManager: txm,
		Repos: Repositories{
			Branches:    catalog_repo.NewBranchRepo(txm),
			Items:       catalog_repo.NewItemRepo(txm),
			Products:    catalog_repo.NewProductRepo(txm),
			Recipes:     catalog_repo.NewRecipeRepo(txm),
			Stock:       register_repo.NewStockRepo(txm),
			Ledger:      register_repo.NewLedgerRepo(txm),
			Transfers:   document_repo.NewTransferRepo(txm),
			Sales:       document_repo.NewSaleRepo(txm),
			Waste:       document_repo.NewWasteRepo(txm),
			Purchases:   document_repo.NewPurchaseRepo(txm),
			Adjustments: document_repo.NewAdjustmentRepo(txm),
			Reports:     report_repo.NewLedgerReportRepo(txm),
		},
		Numerator: pkgnum.New(txm),
		Events:    postgres.NewOutbox(txm),
		Audit:     auditLog,
	}, nil
}
