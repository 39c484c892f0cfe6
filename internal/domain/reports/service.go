package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"almacen/internal/core/apperror"
	"almacen/internal/core/types"
	"almacen/pkg/logger"
)

// Cache stores computed reports for their short useful lifetime. A nil-safe
// no-op implementation is acceptable; the service treats cache failures as
// misses.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Service computes reports, serving repeat requests from the cache.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
}

func NewService(repo Repository, cache Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{repo: repo, cache: cache, ttl: ttl}
}

func (s *Service) PeriodSummary(ctx context.Context, from, to time.Time) (*PeriodSummary, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("reports:summary:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	var cached PeriodSummary
	if hit := s.cacheGet(ctx, key, &cached); hit {
		return &cached, nil
	}

	summary, err := s.repo.PeriodSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.GrossMargin = summary.SalesTotal.Sub(summary.PurchasesTotal)

	top, err := s.repo.TopProduct(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.TopProduct = top

	s.cacheSet(ctx, key, summary)
	return summary, nil
}

func (s *Service) BranchComparison(ctx context.Context, from, to time.Time) ([]BranchPerformance, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("reports:branches:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	var cached []BranchPerformance
	if hit := s.cacheGet(ctx, key, &cached); hit {
		return cached, nil
	}

	rows, err := s.repo.BranchComparison(ctx, from, to)
	if err != nil {
		return nil, err
	}

	grandTotal := types.ZeroMoney()
	for i := range rows {
		grandTotal = grandTotal.Add(rows[i].SalesTotal)
	}
	for i := range rows {
		rows[i].AverageTicket = types.ZeroMoney()
		rows[i].Share = types.ZeroMoney()
		if rows[i].SalesCount > 0 {
			rows[i].AverageTicket = rows[i].SalesTotal.
				Div(decimal.NewFromInt(int64(rows[i].SalesCount))).Round(2)
		}
		if grandTotal.IsPositive() {
			rows[i].Share = rows[i].SalesTotal.
				Div(grandTotal).Mul(decimal.NewFromInt(100)).Round(2)
		}
	}

	s.cacheSet(ctx, key, rows)
	return rows, nil
}

// LowStock is never cached: it feeds restocking decisions and must reflect
// the ledger as it is now.
func (s *Service) LowStock(ctx context.Context) ([]LowStockItem, error) {
	return s.repo.LowStock(ctx)
}

func (s *Service) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logger.Warn(ctx, "report cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		logger.Warn(ctx, "report cache write failed", "key", key, "error", err)
	}
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return apperror.NewValidation("report range requires both from and to dates")
	}
	if to.Before(from) {
		return apperror.NewValidation("report range end precedes start")
	}
	return nil
}
