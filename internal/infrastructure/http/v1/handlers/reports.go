package handlers

import (
	"github.com/gin-gonic/gin"

	"almacen/internal/domain/reports"
	"almacen/internal/infrastructure/http/v1/dto"
)

// ReportsHandler serves the owner-facing reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

func NewReportsHandler(service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: NewBaseHandler(), service: service}
}

// PeriodSummary handles GET /reports/summary?from=...&to=...
func (h *ReportsHandler) PeriodSummary(c *gin.Context) {
	var req dto.DateRangeRequest
	if !h.BindQuery(c, &req) {
		return
	}

	summary, err := h.service.PeriodSummary(c.Request.Context(), req.From, req.To)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// BranchComparison handles GET /reports/branches?from=...&to=...
func (h *ReportsHandler) BranchComparison(c *gin.Context) {
	var req dto.DateRangeRequest
	if !h.BindQuery(c, &req) {
		return
	}

	rows, err := h.service.BranchComparison(c.Request.Context(), req.From, req.To)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}

// LowStock handles GET /reports/low-stock.
func (h *ReportsHandler) LowStock(c *gin.Context) {
	items, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}
