package reports

import (
	"context"
	"time"
)

// Repository runs the report aggregations against the store.
type Repository interface {
	PeriodSummary(ctx context.Context, from, to time.Time) (*PeriodSummary, error)
	// TopProduct returns the best selling variant of the range, nil when
	// nothing was sold.
	TopProduct(ctx context.Context, from, to time.Time) (*TopProduct, error)
	BranchComparison(ctx context.Context, from, to time.Time) ([]BranchPerformance, error)
	LowStock(ctx context.Context) ([]LowStockItem, error)
}
