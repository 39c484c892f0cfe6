// Package sale implements branch sale documents. A sale starts open with no
// stock effect; confirming it deducts stock, branch first with central
// covering any shortfall. Confirmed sales are immutable except for deletion,
// which credits the quantities back.
package sale

import (
	"context"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/documents"
	"almacen/internal/domain/posting"
)

// Status is the sale lifecycle state.
type Status string

const (
	// StatusOpen means the sale is editable and has not touched stock.
	StatusOpen Status = "open"
	// StatusConfirmed means stock has been deducted and the document is
	// frozen.
	StatusConfirmed Status = "confirmed"
)

// Valid reports whether the status is one of the defined values.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusConfirmed
}

// Line is one sold variant.
type Line struct {
	ID        id.ID          `db:"id" json:"id"`
	VariantID id.ID          `db:"variant_id" json:"variantId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
}

// Subtotal returns quantity times unit price.
func (l Line) Subtotal() types.Money {
	return l.Quantity.Mul(l.UnitPrice)
}

// Sale is a branch sale document.
type Sale struct {
	ID            id.ID                   `db:"id" json:"id"`
	BranchID      id.ID                   `db:"branch_id" json:"branchId"`
	CustomerName  string                  `db:"customer_name" json:"customerName,omitempty"`
	Date          time.Time               `db:"date" json:"date"`
	PaymentMethod documents.PaymentMethod `db:"payment_method" json:"paymentMethod"`
	Status        Status                  `db:"status" json:"status"`
	Notes         string                  `db:"notes" json:"notes,omitempty"`
	Lines         []Line                  `json:"lines"`
	CreatedAt     time.Time               `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time               `db:"updated_at" json:"updatedAt"`
}

// Total returns the document total across all lines.
func (s *Sale) Total() types.Money {
	total := types.ZeroMoney()
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Validate checks structural document invariants.
func (s *Sale) Validate(ctx context.Context) error {
	if id.IsNil(s.BranchID) {
		return apperror.NewValidation("selling branch is required").
			WithDetail("field", "branchId")
	}
	if !s.PaymentMethod.Valid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("paymentMethod", string(s.PaymentMethod))
	}
	if !s.Status.Valid() {
		return apperror.NewValidation("unknown sale status").
			WithDetail("status", string(s.Status))
	}
	if len(s.Lines) == 0 {
		return apperror.NewValidation("sale requires at least one line")
	}
	for i, l := range s.Lines {
		if id.IsNil(l.VariantID) {
			return apperror.NewValidation("line variant is required").
				WithDetail("line", i)
		}
		if !l.Quantity.IsPositive() {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("line", i).WithDetail("quantity", l.Quantity.Int64())
		}
		if l.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("line", i)
		}
	}
	return nil
}

// FulfillmentLines converts the document lines into posting input.
func (s *Sale) FulfillmentLines() []posting.SaleLine {
	lines := make([]posting.SaleLine, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, posting.SaleLine{VariantID: l.VariantID, Quantity: l.Quantity})
	}
	return lines
}
