package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"slice/internal/core/apperror"
	"slice/internal/core/types"
	"slice/pkg/logger"
)

const defaultPeriod = 30 * 24 * time.Hour

// Service computes finance reports, optionally through a cache.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
}

// NewService creates a reports service. cache may be nil.
func NewService(repo Repository, cache Cache, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl}
}

// PnL returns revenue, expenses, net and margin for the period.
func (s *Service) PnL(ctx context.Context, f Filter) (*PnL, error) {
	f, err := normalize(f)
	if err != nil {
		return nil, err
	}

	var out PnL
	if s.cached(ctx, cacheKey("pnl", f), &out) {
		return &out, nil
	}

	totals, err := s.repo.Totals(ctx, f)
	if err != nil {
		return nil, apperror.Wrap(fmt.Errorf("ledger totals: %w", err))
	}

	out = PnL{
		From:     f.From,
		To:       f.To,
		BranchID: f.BranchID,
		Revenue:  totals.Income,
		Expenses: totals.Expense,
		Net:      totals.Income.Sub(totals.Expense),
		Margin:   margin(totals.Income, totals.Expense),
	}
	s.store(ctx, cacheKey("pnl", f), out)
	return &out, nil
}

// BranchPerformance returns every branch's P&L ordered by net descending.
func (s *Service) BranchPerformance(ctx context.Context, f Filter) ([]BranchPerformance, error) {
	f.BranchID = nil
	f, err := normalize(f)
	if err != nil {
		return nil, err
	}

	var out []BranchPerformance
	if s.cached(ctx, cacheKey("branches", f), &out) {
		return out, nil
	}

	out, err = s.repo.ByBranch(ctx, f)
	if err != nil {
		return nil, apperror.Wrap(fmt.Errorf("branch totals: %w", err))
	}
	for i := range out {
		out[i].Net = out[i].Revenue.Sub(out[i].Expenses)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Net.GreaterThan(out[j].Net)
	})

	s.store(ctx, cacheKey("branches", f), out)
	return out, nil
}

// ExpenseBreakdown returns totals per ledger category for the period.
func (s *Service) ExpenseBreakdown(ctx context.Context, f Filter) ([]CategoryTotal, error) {
	f, err := normalize(f)
	if err != nil {
		return nil, err
	}

	var out []CategoryTotal
	if s.cached(ctx, cacheKey("categories", f), &out) {
		return out, nil
	}

	out, err = s.repo.ByCategory(ctx, f)
	if err != nil {
		return nil, apperror.Wrap(fmt.Errorf("category totals: %w", err))
	}
	s.store(ctx, cacheKey("categories", f), out)
	return out, nil
}

func normalize(f Filter) (Filter, error) {
	if f.To.IsZero() {
		f.To = time.Now().UTC().Truncate(time.Minute).Add(time.Minute)
	}
	if f.From.IsZero() {
		f.From = f.To.Add(-defaultPeriod)
	}
	if f.To.Before(f.From) {
		return f, apperror.NewValidation("'to' must not be before 'from'")
	}
	return f, nil
}

func margin(income, expense types.Money) types.Money {
	if !income.IsPositive() {
		return types.Zero()
	}
	return income.Sub(expense).Div(income).Mul(decimal.NewFromInt(100)).Round(2)
}

func cacheKey(report string, f Filter) string {
	branch := "all"
	if f.BranchID != nil {
		branch = f.BranchID.String()
	}
	return fmt.Sprintf("reports:%s:%d:%d:%s", report, f.From.Unix(), f.To.Unix(), branch)
}

// cached reads through the cache. Cache failures fall back to the database.
func (s *Service) cached(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logger.Warn(ctx, "report cache read failed", "key", key, "error", err)
		return false
	}
	return found
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		logger.Warn(ctx, "report cache write failed", "key", key, "error", err)
	}
}
