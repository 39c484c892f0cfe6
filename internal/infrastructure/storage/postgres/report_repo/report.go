// Package report_repo provides the PostgreSQL implementation of the report
// aggregations.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/types"
	"almacen/internal/domain/reports"
	"almacen/internal/infrastructure/storage/postgres"
)

// Repo implements reports.Repository.
type Repo struct {
	txm *postgres.TxManager
}

func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{txm: txm}
}

type periodRow struct {
	SalesCount     int         `db:"sales_count"`
	SalesTotal     types.Money `db:"sales_total"`
	PurchasesCount int         `db:"purchases_count"`
	PurchasesTotal types.Money `db:"purchases_total"`
}

func (r *Repo) PeriodSummary(ctx context.Context, from, to time.Time) (*reports.PeriodSummary, error) {
	sql := `
		SELECT
			(SELECT COUNT(*)
			   FROM doc_sales s
			  WHERE s.status = 'confirmed' AND s.date >= $1 AND s.date <= $2) AS sales_count,
			(SELECT COALESCE(SUM(l.quantity * l.unit_price), 0)
			   FROM doc_sales s
			   JOIN doc_sale_lines l ON l.sale_id = s.id
			  WHERE s.status = 'confirmed' AND s.date >= $1 AND s.date <= $2) AS sales_total,
			(SELECT COUNT(*)
			   FROM doc_purchases p
			  WHERE p.date >= $1 AND p.date <= $2) AS purchases_count,
			(SELECT COALESCE(SUM(l.quantity * l.unit_cost), 0)
			   FROM doc_purchases p
			   JOIN doc_purchase_lines l ON l.purchase_id = p.id
			  WHERE p.date >= $1 AND p.date <= $2) AS purchases_total
	`

	var row periodRow
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, from, to); err != nil {
		return nil, fmt.Errorf("period summary: %w", err)
	}

	return &reports.PeriodSummary{
		From:           from,
		To:             to,
		SalesCount:     row.SalesCount,
		SalesTotal:     row.SalesTotal,
		PurchasesCount: row.PurchasesCount,
		PurchasesTotal: row.PurchasesTotal,
	}, nil
}

func (r *Repo) TopProduct(ctx context.Context, from, to time.Time) (*reports.TopProduct, error) {
	sql := `
		SELECT
			v.id AS variant_id,
			v.product_name,
			v.flavor,
			v.size,
			SUM(l.quantity) AS units_sold,
			SUM(l.quantity * l.unit_price) AS revenue
		FROM doc_sale_lines l
		JOIN doc_sales s ON s.id = l.sale_id
		JOIN variants v ON v.id = l.variant_id
		WHERE s.status = 'confirmed' AND s.date >= $1 AND s.date <= $2
		GROUP BY v.id, v.product_name, v.flavor, v.size
		ORDER BY units_sold DESC, revenue DESC
		LIMIT 1
	`

	var top reports.TopProduct
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &top, sql, from, to); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("top product: %w", err)
	}
	return &top, nil
}

func (r *Repo) BranchComparison(ctx context.Context, from, to time.Time) ([]reports.BranchPerformance, error) {
	sql := `
		SELECT
			b.id AS branch_id,
			b.name AS branch_name,
			COUNT(DISTINCT s.id) AS sales_count,
			COALESCE(SUM(l.quantity * l.unit_price), 0) AS sales_total,
			COALESCE(SUM(l.quantity), 0) AS units_sold
		FROM branches b
		LEFT JOIN doc_sales s
		       ON s.branch_id = b.id
		      AND s.status = 'confirmed'
		      AND s.date >= $1 AND s.date <= $2
		LEFT JOIN doc_sale_lines l ON l.sale_id = s.id
		WHERE b.active
		GROUP BY b.id, b.name
		ORDER BY sales_total DESC, b.name
	`

	var rows []*reports.BranchPerformance
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, from, to); err != nil {
		return nil, fmt.Errorf("branch comparison: %w", err)
	}

	result := make([]reports.BranchPerformance, 0, len(rows))
	for _, row := range rows {
		result = append(result, *row)
	}
	return result, nil
}

func (r *Repo) LowStock(ctx context.Context) ([]reports.LowStockItem, error) {
	sql := `
		SELECT
			v.id AS variant_id,
			v.product_name,
			v.flavor,
			v.size,
			COALESCE(SUM(sl.quantity), 0) AS total,
			COALESCE(SUM(sl.quantity) FILTER (WHERE sl.branch_id = $1), 0) AS central,
			v.minimum_threshold
		FROM variants v
		LEFT JOIN stock_levels sl ON sl.variant_id = v.id
		WHERE v.active AND v.minimum_threshold > 0
		GROUP BY v.id, v.product_name, v.flavor, v.size, v.minimum_threshold
		HAVING COALESCE(SUM(sl.quantity), 0) < v.minimum_threshold
		ORDER BY v.product_name, v.flavor, v.size
	`

	var rows []*reports.LowStockItem
	querier := r.txm.GetQuerier(ctx)
	// Central rows carry the zero-UUID branch sentinel.
	if err := pgxscan.Select(ctx, querier, &rows, sql, "00000000-0000-0000-0000-000000000000"); err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}

	result := make([]reports.LowStockItem, 0, len(rows))
	for _, row := range rows {
		result = append(result, *row)
	}
	return result, nil
}

// Ensure interface compliance.
var _ reports.Repository = (*Repo)(nil)
