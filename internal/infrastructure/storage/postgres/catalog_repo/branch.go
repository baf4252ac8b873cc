package catalog_repo

import (
	"context"

	"slice/internal/core/id"
	"slice/internal/domain/catalog"
	"slice/internal/infrastructure/storage/postgres"
)

const branchesTable = "branches"

var branchCols = []string{"id", "name", "location", "is_hq", "created_at"}

// BranchRepo implements catalog.BranchRepository.
type BranchRepo struct{ repo }

var _ catalog.BranchRepository = (*BranchRepo)(nil)

// NewBranchRepo creates a branch repository.
func NewBranchRepo(txm *postgres.TxManager) *BranchRepo {
	return &BranchRepo{repo{txm: txm}}
}

func (r *BranchRepo) Create(ctx context.Context, b *catalog.Branch) error {
	q := builder.Insert(branchesTable).
		Columns(branchCols...).
		Values(b.ID, b.Name, b.Location, b.IsHQ, b.CreatedAt)
	_, err := r.exec(ctx, q, "insert branch")
	return err
}

func (r *BranchRepo) GetByID(ctx context.Context, branchID id.ID) (*catalog.Branch, error) {
	var b catalog.Branch
	q := builder.Select(branchCols...).From(branchesTable).Where("id = ?", branchID)
	if err := r.get(ctx, &b, q, "branch", branchID); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BranchRepo) List(ctx context.Context) ([]catalog.Branch, error) {
	var out []catalog.Branch
	q := builder.Select(branchCols...).From(branchesTable).OrderBy("is_hq DESC", "name")
	if err := r.selectAll(ctx, &out, q, "branches"); err != nil {
		return nil, err
	}
	return out, nil
}
