package handlers

import (
	"github.com/gin-gonic/gin"

	"almacen/internal/domain/ledger"
	"almacen/internal/infrastructure/http/v1/dto"
)

// StockHandler serves stock levels, adjustments and transfers.
type StockHandler struct {
	*BaseHandler
	service *ledger.Service
}

func NewStockHandler(service *ledger.Service) *StockHandler {
	return &StockHandler{BaseHandler: NewBaseHandler(), service: service}
}

// Breakdown handles GET /stock/variants/:id.
func (h *StockHandler) Breakdown(c *gin.Context) {
	variantID, ok := h.PathID(c)
	if !ok {
		return
	}

	bd, err := h.service.Breakdown(c.Request.Context(), variantID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, bd)
}

// ByBranch handles GET /stock/branches/:id. The reserved id "central" lists
// the central warehouse.
func (h *StockHandler) ByBranch(c *gin.Context) {
	var loc ledger.Location
	if raw := c.Param("id"); raw == "central" {
		loc = ledger.Central()
	} else {
		branchID, ok := h.PathID(c)
		if !ok {
			return
		}
		loc = ledger.AtBranch(branchID)
	}

	records, err := h.service.ListByBranch(c.Request.Context(), loc)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, records)
}

// Adjust handles POST /stock/adjust. Sets an absolute quantity.
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	variantID, loc, qty, err := req.Parse()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.SetAbsolute(c.Request.Context(), variantID, loc, qty); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "stock adjusted")
}

// Transfer handles POST /stock/transfers.
func (h *StockHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}
	variantID, origin, destination, qty, err := req.Parse()
	if err != nil {
		h.Error(c, err)
		return
	}

	t, err := h.service.Transfer(c.Request.Context(), variantID, origin, destination, qty, req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, t.ID.String())
}

// Transfers handles GET /stock/transfers.
func (h *StockHandler) Transfers(c *gin.Context) {
	var req dto.TransferHistoryRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	transfers, err := h.service.ListTransfers(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, transfers)
}
