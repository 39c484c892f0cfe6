package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"almacen/internal/domain/documents/purchase"
	"almacen/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler serves purchase documents.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

func NewPurchaseHandler(service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: NewBaseHandler(), service: service}
}

// Create handles POST /purchases.
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p.ID.String())
}

// Get handles GET /purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	purchaseID, ok := h.PathID(c)
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// List handles GET /purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	filter := purchase.Filter{
		SupplierName: c.Query("supplier"),
		Limit:        h.ParseIntQuery(c, "limit", 50),
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

	purchases, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, purchases)
}

// Update handles PUT /purchases/:id. The previous stock effect is reversed
// and the new content posted atomically.
func (h *PurchaseHandler) Update(c *gin.Context) {
	purchaseID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.UpdatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.Update(c.Request.Context(), purchaseID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Delete handles DELETE /purchases/:id.
func (h *PurchaseHandler) Delete(c *gin.Context) {
	purchaseID, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), purchaseID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
