package dto

import (
	"time"

	"almacen/internal/core/types"
	"almacen/internal/domain/documents"
	"almacen/internal/domain/documents/purchase"
	"almacen/internal/domain/documents/sale"
)

// --- Purchase DTOs ---

// PurchaseAllocationRequest routes part of a line to one branch.
type PurchaseAllocationRequest struct {
	BranchID string `json:"branchId" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

// PurchaseLineRequest is one received variant.
type PurchaseLineRequest struct {
	VariantID   string                      `json:"variantId" binding:"required"`
	Quantity    int64                       `json:"quantity" binding:"required,gt=0"`
	UnitCost    string                      `json:"unitCost" binding:"required"`
	Allocations []PurchaseAllocationRequest `json:"allocations" binding:"dive"`
}

func (r PurchaseLineRequest) toLine() (purchase.Line, error) {
	variantID, err := parseID("variantId", r.VariantID)
	if err != nil {
		return purchase.Line{}, err
	}
	unitCost, err := parseMoney("unitCost", r.UnitCost)
	if err != nil {
		return purchase.Line{}, err
	}
	line := purchase.Line{
		VariantID: variantID,
		Quantity:  types.Quantity(r.Quantity),
		UnitCost:  unitCost,
	}
	for _, a := range r.Allocations {
		branchID, err := parseID("allocations.branchId", a.BranchID)
		if err != nil {
			return purchase.Line{}, err
		}
		line.Allocations = append(line.Allocations, purchase.Allocation{
			BranchID: branchID,
			Quantity: types.Quantity(a.Quantity),
		})
	}
	return line, nil
}

func purchaseLines(reqs []PurchaseLineRequest) ([]purchase.Line, error) {
	lines := make([]purchase.Line, 0, len(reqs))
	for _, r := range reqs {
		line, err := r.toLine()
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// CreatePurchaseRequest records a new purchase.
type CreatePurchaseRequest struct {
	SupplierName  string                `json:"supplierName" binding:"required"`
	InvoiceNumber string                `json:"invoiceNumber"`
	Date          time.Time             `json:"date"`
	PaymentMethod string                `json:"paymentMethod" binding:"required"`
	Notes         string                `json:"notes"`
	Lines         []PurchaseLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToInput converts request to service input.
func (r *CreatePurchaseRequest) ToInput() (purchase.CreateInput, error) {
	lines, err := purchaseLines(r.Lines)
	if err != nil {
		return purchase.CreateInput{}, err
	}
	return purchase.CreateInput{
		SupplierName:  r.SupplierName,
		InvoiceNumber: r.InvoiceNumber,
		Date:          r.Date,
		PaymentMethod: documents.PaymentMethod(r.PaymentMethod),
		Notes:         r.Notes,
		Lines:         lines,
	}, nil
}

// UpdatePurchaseRequest replaces a purchase's content.
type UpdatePurchaseRequest struct {
	SupplierName  string                `json:"supplierName" binding:"required"`
	InvoiceNumber string                `json:"invoiceNumber"`
	Date          time.Time             `json:"date"`
	PaymentMethod string                `json:"paymentMethod" binding:"required"`
	Notes         string                `json:"notes"`
	Lines         []PurchaseLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToInput converts request to service input.
func (r *UpdatePurchaseRequest) ToInput() (purchase.UpdateInput, error) {
	lines, err := purchaseLines(r.Lines)
	if err != nil {
		return purchase.UpdateInput{}, err
	}
	return purchase.UpdateInput{
		SupplierName:  r.SupplierName,
		InvoiceNumber: r.InvoiceNumber,
		Date:          r.Date,
		PaymentMethod: documents.PaymentMethod(r.PaymentMethod),
		Notes:         r.Notes,
		Lines:         lines,
	}, nil
}

// --- Sale DTOs ---

// SaleLineRequest is one sold variant.
type SaleLineRequest struct {
	VariantID string `json:"variantId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	UnitPrice string `json:"unitPrice" binding:"required"`
}

func saleLines(reqs []SaleLineRequest) ([]sale.Line, error) {
	lines := make([]sale.Line, 0, len(reqs))
	for _, r := range reqs {
		variantID, err := parseID("variantId", r.VariantID)
		if err != nil {
			return nil, err
		}
		unitPrice, err := parseMoney("unitPrice", r.UnitPrice)
		if err != nil {
			return nil, err
		}
		lines = append(lines, sale.Line{
			VariantID: variantID,
			Quantity:  types.Quantity(r.Quantity),
			UnitPrice: unitPrice,
		})
	}
	return lines, nil
}

// CreateSaleRequest records a new sale. Confirmed true posts immediately.
type CreateSaleRequest struct {
	BranchID      string            `json:"branchId" binding:"required"`
	CustomerName  string            `json:"customerName"`
	Date          time.Time         `json:"date"`
	PaymentMethod string            `json:"paymentMethod" binding:"required"`
	Notes         string            `json:"notes"`
	Lines         []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
	Confirmed     bool              `json:"confirmed"`
}

// ToInput converts request to service input.
func (r *CreateSaleRequest) ToInput() (sale.CreateInput, error) {
	branchID, err := parseID("branchId", r.BranchID)
	if err != nil {
		return sale.CreateInput{}, err
	}
	lines, err := saleLines(r.Lines)
	if err != nil {
		return sale.CreateInput{}, err
	}
	return sale.CreateInput{
		BranchID:      branchID,
		CustomerName:  r.CustomerName,
		Date:          r.Date,
		PaymentMethod: documents.PaymentMethod(r.PaymentMethod),
		Notes:         r.Notes,
		Lines:         lines,
		Confirmed:     r.Confirmed,
	}, nil
}

// UpdateSaleRequest replaces an open sale's content.
type UpdateSaleRequest struct {
	CustomerName  string            `json:"customerName"`
	Date          time.Time         `json:"date"`
	PaymentMethod string            `json:"paymentMethod" binding:"required"`
	Notes         string            `json:"notes"`
	Lines         []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToInput converts request to service input.
func (r *UpdateSaleRequest) ToInput() (sale.UpdateInput, error) {
	lines, err := saleLines(r.Lines)
	if err != nil {
		return sale.UpdateInput{}, err
	}
	return sale.UpdateInput{
		CustomerName:  r.CustomerName,
		Date:          r.Date,
		PaymentMethod: documents.PaymentMethod(r.PaymentMethod),
		Notes:         r.Notes,
		Lines:         lines,
	}, nil
}

// ExtractInvoiceRequest carries raw invoice text for extraction.
type ExtractInvoiceRequest struct {
	Text string `json:"text" binding:"required"`
}
