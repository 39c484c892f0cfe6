// Package purchase implements supplier purchase documents. Recording a
// purchase receives stock into central and distributes allocated portions to
// branches in the same transaction.
package purchase

import (
	"context"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/documents"
	"almacen/internal/domain/posting"
)

// Allocation routes part of a purchase line to one branch.
type Allocation struct {
	BranchID id.ID          `db:"branch_id" json:"branchId"`
	Quantity types.Quantity `db:"quantity" json:"quantity"`
}

// Line is one variant received on a purchase. Units not covered by
// allocations stay at central.
type Line struct {
	ID          id.ID          `db:"id" json:"id"`
	VariantID   id.ID          `db:"variant_id" json:"variantId"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	UnitCost    types.Money    `db:"unit_cost" json:"unitCost"`
	Allocations []Allocation   `json:"allocations"`
}

// Subtotal returns quantity times unit cost.
func (l Line) Subtotal() types.Money {
	return l.Quantity.Mul(l.UnitCost)
}

// Allocated returns the total quantity routed to branches.
func (l Line) Allocated() types.Quantity {
	var total types.Quantity
	for _, a := range l.Allocations {
		total += a.Quantity
	}
	return total
}

// Purchase is a supplier purchase document. Purchases post to stock on
// creation; there is no draft state.
type Purchase struct {
	ID            id.ID                   `db:"id" json:"id"`
	SupplierName  string                  `db:"supplier_name" json:"supplierName"`
	InvoiceNumber string                  `db:"invoice_number" json:"invoiceNumber,omitempty"`
	Date          time.Time               `db:"date" json:"date"`
	PaymentMethod documents.PaymentMethod `db:"payment_method" json:"paymentMethod"`
	Notes         string                  `db:"notes" json:"notes,omitempty"`
	Lines         []Line                  `json:"lines"`
	CreatedAt     time.Time               `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time               `db:"updated_at" json:"updatedAt"`
}

// Total returns the document total across all lines.
func (p *Purchase) Total() types.Money {
	total := types.ZeroMoney()
	for _, l := range p.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Validate checks structural document invariants. Allocation totals against
// received quantities are the posting engine's concern.
func (p *Purchase) Validate(ctx context.Context) error {
	if p.SupplierName == "" {
		return apperror.NewValidation("supplier name is required").
			WithDetail("field", "supplierName")
	}
	if !p.PaymentMethod.Valid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("paymentMethod", string(p.PaymentMethod))
	}
	if len(p.Lines) == 0 {
		return apperror.NewValidation("purchase requires at least one line")
	}
	for i, l := range p.Lines {
		if id.IsNil(l.VariantID) {
			return apperror.NewValidation("line variant is required").
				WithDetail("line", i)
		}
		if !l.Quantity.IsPositive() {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("line", i).WithDetail("quantity", l.Quantity.Int64())
		}
		if l.UnitCost.IsNegative() {
			return apperror.NewValidation("unit cost cannot be negative").
				WithDetail("line", i)
		}
		seen := make(map[id.ID]struct{}, len(l.Allocations))
		for _, a := range l.Allocations {
			if id.IsNil(a.BranchID) {
				return apperror.NewValidation("allocation branch is required").
					WithDetail("line", i)
			}
			if !a.Quantity.IsPositive() {
				return apperror.NewValidation("allocation quantity must be positive").
					WithDetail("line", i).WithDetail("branchId", a.BranchID)
			}
			if _, dup := seen[a.BranchID]; dup {
				return apperror.NewValidation("branch allocated twice on one line").
					WithDetail("line", i).WithDetail("branchId", a.BranchID)
			}
			seen[a.BranchID] = struct{}{}
		}
	}
	return nil
}

// DistributionLines converts the document lines into posting input.
func (p *Purchase) DistributionLines() []posting.PurchaseLine {
	lines := make([]posting.PurchaseLine, 0, len(p.Lines))
	for _, l := range p.Lines {
		pl := posting.PurchaseLine{
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost,
		}
		for _, a := range l.Allocations {
			pl.Allocations = append(pl.Allocations, posting.Allocation{
				BranchID: a.BranchID,
				Quantity: a.Quantity,
			})
		}
		lines = append(lines, pl)
	}
	return lines
}
