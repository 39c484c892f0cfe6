package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"almacen/internal/core/id"
	"almacen/internal/domain/documents/sale"
	"almacen/internal/infrastructure/http/v1/dto"
)

// SaleHandler serves sale documents.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
}

func NewSaleHandler(service *sale.Service) *SaleHandler {
	return &SaleHandler{BaseHandler: NewBaseHandler(), service: service}
}

// Create handles POST /sales.
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, doc.ID.String())
}

// Get handles GET /sales/:id.
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.PathID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// List handles GET /sales.
func (h *SaleHandler) List(c *gin.Context) {
	filter := sale.Filter{
		Status: sale.Status(c.Query("status")),
		Limit:  h.ParseIntQuery(c, "limit", 50),
	}
	if raw := c.Query("branchId"); raw != "" {
		branchID, err := id.Parse(raw)
		if err == nil {
			filter.BranchID = branchID
		}
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err == nil {
			filter.From = t
		}
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err == nil {
			filter.To = t
		}
	}

	sales, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sales)
}

// Update handles PUT /sales/:id. Only open sales can be edited.
func (h *SaleHandler) Update(c *gin.Context) {
	saleID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.UpdateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.Update(c.Request.Context(), saleID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Confirm handles POST /sales/:id/confirm. Deducts stock.
func (h *SaleHandler) Confirm(c *gin.Context) {
	saleID, ok := h.PathID(c)
	if !ok {
		return
	}

	doc, err := h.service.Confirm(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Delete handles DELETE /sales/:id. A confirmed sale's quantities are
// credited back to its branch first.
func (h *SaleHandler) Delete(c *gin.Context) {
	saleID, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), saleID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
