package ledger

import (
	"context"
	"fmt"
	"time"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
	"slice/pkg/logger"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Service appends to and reads the financial ledger.
type Service struct {
	repo Repository
}

// NewService creates a ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Append validates and stores an entry. ID and TransactionDate are filled when empty.
func (s *Service) Append(ctx context.Context, e *Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if id.IsNil(e.ID) {
		e.ID = id.New()
	}
	if e.TransactionDate.IsZero() {
		e.TransactionDate = time.Now().UTC()
	}
	if err := s.repo.Append(ctx, e); err != nil {
		return apperror.Wrap(fmt.Errorf("append ledger entry: %w", err))
	}
	logger.Debug(ctx, "ledger entry appended",
		"type", e.Type,
		"category", e.Category,
		"amount", e.Amount,
	)
	return nil
}

// Income appends an Income entry for a branch and source document.
func (s *Service) Income(ctx context.Context, branchID id.ID, category string, amount types.Money, description string, referenceID id.ID, userID string) (*Entry, error) {
	return s.post(ctx, TypeIncome, branchID, category, amount, description, referenceID, userID)
}

// Expense appends an Expense entry for a branch and source document.
func (s *Service) Expense(ctx context.Context, branchID id.ID, category string, amount types.Money, description string, referenceID id.ID, userID string) (*Entry, error) {
	return s.post(ctx, TypeExpense, branchID, category, amount, description, referenceID, userID)
}

func (s *Service) post(ctx context.Context, typ EntryType, branchID id.ID, category string, amount types.Money, description string, referenceID id.ID, userID string) (*Entry, error) {
	e := &Entry{
		BranchID:    &branchID,
		Type:        typ,
		Category:    category,
		Amount:      amount,
		Description: description,
		ReferenceID: &referenceID,
		CreatedBy:   userID,
	}
	if err := s.Append(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// List returns entries newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Entry, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, apperror.NewValidation("'to' must not be before 'from'")
	}
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return list, nil
}

// ForReference returns the entries posted by one source document.
func (s *Service) ForReference(ctx context.Context, referenceID id.ID) ([]Entry, error) {
	list, err := s.repo.ListByReference(ctx, referenceID)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return list, nil
}
