// Package reports aggregates documents and stock into the summaries the
// chain's owners review: period totals, branch comparison and low stock.
package reports

import (
	"time"

	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// PeriodSummary totals confirmed sales and purchases over a date range.
type PeriodSummary struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	SalesCount     int         `json:"salesCount"`
	SalesTotal     types.Money `json:"salesTotal"`
	PurchasesCount int         `json:"purchasesCount"`
	PurchasesTotal types.Money `json:"purchasesTotal"`
	// GrossMargin is sales total minus purchases total for the period.
	GrossMargin types.Money `json:"grossMargin"`
	// TopProduct is the variant with the most units sold in the period,
	// nil when there were no confirmed sales.
	TopProduct *TopProduct `json:"topProduct,omitempty"`
}

// TopProduct is the best selling variant of a period.
type TopProduct struct {
	VariantID   id.ID          `json:"variantId"`
	ProductName string         `json:"productName"`
	Flavor      string         `json:"flavor,omitempty"`
	Size        string         `json:"size,omitempty"`
	UnitsSold   types.Quantity `json:"unitsSold"`
	Revenue     types.Money    `json:"revenue"`
}

// BranchPerformance is one branch's confirmed sales activity in a range.
type BranchPerformance struct {
	BranchID   id.ID          `json:"branchId"`
	BranchName string         `json:"branchName"`
	SalesCount int            `json:"salesCount"`
	SalesTotal types.Money    `json:"salesTotal"`
	UnitsSold  types.Quantity `json:"unitsSold"`
	// AverageTicket is sales total divided by sales count, zero when the
	// branch had no sales in the range.
	AverageTicket types.Money `json:"averageTicket"`
	// Share is the branch's percentage of the chain's sales total.
	Share types.Money `json:"share"`
}

// LowStockItem is a variant whose combined quantity across all locations has
// dropped below its minimum threshold.
type LowStockItem struct {
	VariantID        id.ID          `json:"variantId"`
	ProductName      string         `json:"productName"`
	Flavor           string         `json:"flavor,omitempty"`
	Size             string         `json:"size,omitempty"`
	Total            types.Quantity `json:"total"`
	Central          types.Quantity `json:"central"`
	MinimumThreshold types.Quantity `json:"minimumThreshold"`
}
