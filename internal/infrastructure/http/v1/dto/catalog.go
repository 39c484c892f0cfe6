package dto

import (
	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/variant"
)

// --- Branch DTOs ---

// CreateBranchRequest for creating branches.
type CreateBranchRequest struct {
	Name string `json:"name" binding:"required"`
}

// RenameBranchRequest for renaming branches.
type RenameBranchRequest struct {
	Name string `json:"name" binding:"required"`
}

// --- Variant DTOs ---

// CreateVariantRequest for creating variants. Prices come as decimal strings.
type CreateVariantRequest struct {
	ProductName      string `json:"productName" binding:"required"`
	Brand            string `json:"brand"`
	Category         string `json:"category"`
	Flavor           string `json:"flavor"`
	Size             string `json:"size"`
	SKU              string `json:"sku"`
	Cost             string `json:"cost"`
	SalePrice        string `json:"salePrice"`
	MinimumThreshold int64  `json:"minimumThreshold" binding:"gte=0"`
}

// ToInput converts request to service input.
func (r *CreateVariantRequest) ToInput() (variant.CreateInput, error) {
	cost, err := parseMoney("cost", r.Cost)
	if err != nil {
		return variant.CreateInput{}, err
	}
	salePrice, err := parseMoney("salePrice", r.SalePrice)
	if err != nil {
		return variant.CreateInput{}, err
	}
	return variant.CreateInput{
		ProductName:      r.ProductName,
		Brand:            r.Brand,
		Category:         r.Category,
		Flavor:           r.Flavor,
		Size:             r.Size,
		SKU:              r.SKU,
		Cost:             cost,
		SalePrice:        salePrice,
		MinimumThreshold: types.Quantity(r.MinimumThreshold),
	}, nil
}

// UpdateVariantRequest for updating variants. Nil fields stay unchanged.
type UpdateVariantRequest struct {
	ProductName      *string `json:"productName"`
	Brand            *string `json:"brand"`
	Category         *string `json:"category"`
	Flavor           *string `json:"flavor"`
	Size             *string `json:"size"`
	SKU              *string `json:"sku"`
	Cost             *string `json:"cost"`
	SalePrice        *string `json:"salePrice"`
	MinimumThreshold *int64  `json:"minimumThreshold"`
	Active           *bool   `json:"active"`
}

// ToInput converts request to service input.
func (r *UpdateVariantRequest) ToInput() (variant.UpdateInput, error) {
	in := variant.UpdateInput{
		ProductName: r.ProductName,
		Brand:       r.Brand,
		Category:    r.Category,
		Flavor:      r.Flavor,
		Size:        r.Size,
		SKU:         r.SKU,
		Active:      r.Active,
	}
	if r.Cost != nil {
		cost, err := parseMoney("cost", *r.Cost)
		if err != nil {
			return variant.UpdateInput{}, err
		}
		in.Cost = &cost
	}
	if r.SalePrice != nil {
		price, err := parseMoney("salePrice", *r.SalePrice)
		if err != nil {
			return variant.UpdateInput{}, err
		}
		in.SalePrice = &price
	}
	if r.MinimumThreshold != nil {
		threshold := types.Quantity(*r.MinimumThreshold)
		in.MinimumThreshold = &threshold
	}
	return in, nil
}
