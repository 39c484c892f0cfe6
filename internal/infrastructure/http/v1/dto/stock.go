package dto

import (
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/ledger"
)

// locationFrom resolves an optional branch id into a location. Empty means
// the central warehouse.
func locationFrom(field, branchID string) (ledger.Location, error) {
	if branchID == "" {
		return ledger.Central(), nil
	}
	parsed, err := parseID(field, branchID)
	if err != nil {
		return ledger.Central(), err
	}
	return ledger.AtBranch(parsed), nil
}

// AdjustStockRequest sets an absolute quantity at one location.
type AdjustStockRequest struct {
	VariantID string `json:"variantId" binding:"required"`
	BranchID  string `json:"branchId"`
	Quantity  int64  `json:"quantity" binding:"gte=0"`
}

// Parse resolves the request into domain values.
func (r *AdjustStockRequest) Parse() (id.ID, ledger.Location, types.Quantity, error) {
	variantID, err := parseID("variantId", r.VariantID)
	if err != nil {
		return id.Nil(), ledger.Central(), 0, err
	}
	loc, err := locationFrom("branchId", r.BranchID)
	if err != nil {
		return id.Nil(), ledger.Central(), 0, err
	}
	return variantID, loc, types.Quantity(r.Quantity), nil
}

// TransferRequest moves stock between two locations. Empty branch ids mean
// the central warehouse.
type TransferRequest struct {
	VariantID           string `json:"variantId" binding:"required"`
	OriginBranchID      string `json:"originBranchId"`
	DestinationBranchID string `json:"destinationBranchId"`
	Quantity            int64  `json:"quantity" binding:"required,gt=0"`
	Note                string `json:"note"`
}

// Parse resolves the request into domain values.
func (r *TransferRequest) Parse() (id.ID, ledger.Location, ledger.Location, types.Quantity, error) {
	variantID, err := parseID("variantId", r.VariantID)
	if err != nil {
		return id.Nil(), ledger.Central(), ledger.Central(), 0, err
	}
	origin, err := locationFrom("originBranchId", r.OriginBranchID)
	if err != nil {
		return id.Nil(), ledger.Central(), ledger.Central(), 0, err
	}
	destination, err := locationFrom("destinationBranchId", r.DestinationBranchID)
	if err != nil {
		return id.Nil(), ledger.Central(), ledger.Central(), 0, err
	}
	return variantID, origin, destination, types.Quantity(r.Quantity), nil
}

// TransferHistoryRequest filters transfer listings.
type TransferHistoryRequest struct {
	VariantID string `form:"variantId"`
	BranchID  string `form:"branchId"`
	Kind      string `form:"kind"`
	Limit     int    `form:"limit"`
}

// ToFilter converts the query into a repository filter.
func (r *TransferHistoryRequest) ToFilter() (ledger.TransferFilter, error) {
	filter := ledger.TransferFilter{Limit: r.Limit}
	if r.VariantID != "" {
		variantID, err := parseID("variantId", r.VariantID)
		if err != nil {
			return filter, err
		}
		filter.VariantID = variantID
	}
	if r.BranchID != "" {
		branchID, err := parseID("branchId", r.BranchID)
		if err != nil {
			return filter, err
		}
		filter.BranchID = branchID
	}
	filter.Kind = ledger.TransferKind(r.Kind)
	return filter, nil
}
