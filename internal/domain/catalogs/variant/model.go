// Package variant provides the product variant catalog.
// A variant is a specific sellable configuration of a product (flavor, size)
// and is the unit every stock quantity is tracked against.
package variant

import (
	"context"
	"fmt"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// Variant represents a sellable product configuration.
type Variant struct {
	ID id.ID `db:"id" json:"id"`

	// Product description. The chain is small enough that the product and its
	// variant live in one row instead of a two-level catalog.
	ProductName string `db:"product_name" json:"productName"`
	Brand       string `db:"brand" json:"brand,omitempty"`
	Category    string `db:"category" json:"category,omitempty"`
	Flavor      string `db:"flavor" json:"flavor,omitempty"`
	Size        string `db:"size" json:"size,omitempty"`
	SKU         string `db:"sku" json:"sku,omitempty"`

	// Cost is the last unit cost paid; updated by purchase distribution.
	Cost      types.Money `db:"cost" json:"cost"`
	SalePrice types.Money `db:"sale_price" json:"salePrice"`

	// MinimumThreshold triggers low-stock alerts when the total quantity
	// across all locations drops below it.
	MinimumThreshold types.Quantity `db:"minimum_threshold" json:"minimumThreshold"`

	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewVariant creates a new active variant.
func NewVariant(productName, flavor, size string) *Variant {
	now := time.Now().UTC()
	return &Variant{
		ID:          id.New(),
		ProductName: productName,
		Flavor:      flavor,
		Size:        size,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks variant invariants.
func (v *Variant) Validate(ctx context.Context) error {
	if v.ProductName == "" {
		return apperror.NewValidation("product name is required").
			WithDetail("field", "productName")
	}
	if v.MinimumThreshold.IsNegative() {
		return apperror.NewValidation("minimum threshold cannot be negative").
			WithDetail("field", "minimumThreshold")
	}
	if v.Cost.IsNegative() || v.SalePrice.IsNegative() {
		return apperror.NewValidation("prices cannot be negative")
	}
	return nil
}

// Label returns a human-readable identifier for error messages.
func (v *Variant) Label() string {
	switch {
	case v.Flavor != "" && v.Size != "":
		return fmt.Sprintf("%s %s %s", v.ProductName, v.Flavor, v.Size)
	case v.Flavor != "":
		return fmt.Sprintf("%s %s", v.ProductName, v.Flavor)
	case v.Size != "":
		return fmt.Sprintf("%s %s", v.ProductName, v.Size)
	default:
		return v.ProductName
	}
}
