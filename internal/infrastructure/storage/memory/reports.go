package memory

import (
	"context"
	"sort"
	"time"

	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/documents/sale"
	"almacen/internal/domain/ledger"
	"almacen/internal/domain/reports"
)

// Reports returns the report repository view of the store.
func (s *Store) Reports() reports.Repository { return (*reportStore)(s) }

type reportStore Store

var _ reports.Repository = (*reportStore)(nil)

func inRange(date, from, to time.Time) bool {
	return !date.Before(from) && !date.After(to)
}

func (s *reportStore) PeriodSummary(ctx context.Context, from, to time.Time) (*reports.PeriodSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := &reports.PeriodSummary{
		From:           from,
		To:             to,
		SalesTotal:     types.ZeroMoney(),
		PurchasesTotal: types.ZeroMoney(),
	}
	for _, doc := range s.sales {
		if doc.Status != sale.StatusConfirmed || !inRange(doc.Date, from, to) {
			continue
		}
		summary.SalesCount++
		summary.SalesTotal = summary.SalesTotal.Add(doc.Total())
	}
	for _, p := range s.purchases {
		if !inRange(p.Date, from, to) {
			continue
		}
		summary.PurchasesCount++
		summary.PurchasesTotal = summary.PurchasesTotal.Add(p.Total())
	}
	return summary, nil
}

func (s *reportStore) TopProduct(ctx context.Context, from, to time.Time) (*reports.TopProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type tally struct {
		units   types.Quantity
		revenue types.Money
	}
	sold := make(map[id.ID]*tally)
	for _, doc := range s.sales {
		if doc.Status != sale.StatusConfirmed || !inRange(doc.Date, from, to) {
			continue
		}
		for _, l := range doc.Lines {
			t := sold[l.VariantID]
			if t == nil {
				t = &tally{revenue: types.ZeroMoney()}
				sold[l.VariantID] = t
			}
			t.units += l.Quantity
			t.revenue = t.revenue.Add(l.Subtotal())
		}
	}
	if len(sold) == 0 {
		return nil, nil
	}

	var top *reports.TopProduct
	for variantID, t := range sold {
		if top != nil && (t.units < top.UnitsSold ||
			(t.units == top.UnitsSold && !t.revenue.GreaterThan(top.Revenue))) {
			continue
		}
		item := &reports.TopProduct{
			VariantID: variantID,
			UnitsSold: t.units,
			Revenue:   t.revenue,
		}
		if v, ok := s.variants[variantID]; ok {
			item.ProductName = v.ProductName
			item.Flavor = v.Flavor
			item.Size = v.Size
		}
		top = item
	}
	return top, nil
}

func (s *reportStore) BranchComparison(ctx context.Context, from, to time.Time) ([]reports.BranchPerformance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]reports.BranchPerformance, 0, len(s.branches))
	for _, b := range s.branches {
		if !b.Active {
			continue
		}
		row := reports.BranchPerformance{
			BranchID:   b.ID,
			BranchName: b.Name,
			SalesTotal: types.ZeroMoney(),
		}
		for _, doc := range s.sales {
			if doc.BranchID != b.ID || doc.Status != sale.StatusConfirmed || !inRange(doc.Date, from, to) {
				continue
			}
			row.SalesCount++
			row.SalesTotal = row.SalesTotal.Add(doc.Total())
			for _, l := range doc.Lines {
				row.UnitsSold += l.Quantity
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].SalesTotal.Equal(rows[j].SalesTotal) {
			return rows[i].SalesTotal.GreaterThan(rows[j].SalesTotal)
		}
		return rows[i].BranchName < rows[j].BranchName
	})
	return rows, nil
}

func (s *reportStore) LowStock(ctx context.Context) ([]reports.LowStockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []reports.LowStockItem
	for _, v := range s.variants {
		if !v.Active || !v.MinimumThreshold.IsPositive() {
			continue
		}
		item := reports.LowStockItem{
			VariantID:        v.ID,
			ProductName:      v.ProductName,
			Flavor:           v.Flavor,
			Size:             v.Size,
			MinimumThreshold: v.MinimumThreshold,
		}
		for key, rec := range s.levels {
			if key.variantID != v.ID {
				continue
			}
			item.Total += rec.Quantity
			if rec.Location() == ledger.Central() {
				item.Central = rec.Quantity
			}
		}
		if item.Total < v.MinimumThreshold {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].ProductName != items[j].ProductName {
			return items[i].ProductName < items[j].ProductName
		}
		return items[i].Flavor < items[j].Flavor
	})
	return items, nil
}
