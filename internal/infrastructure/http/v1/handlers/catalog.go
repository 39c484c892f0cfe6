package handlers

import (
	"github.com/gin-gonic/gin"

	"almacen/internal/domain/catalogs/branch"
	"almacen/internal/domain/catalogs/variant"
	"almacen/internal/infrastructure/http/v1/dto"
)

// BranchHandler serves the branch catalog.
type BranchHandler struct {
	*BaseHandler
	service *branch.Service
}

func NewBranchHandler(service *branch.Service) *BranchHandler {
	return &BranchHandler{BaseHandler: NewBaseHandler(), service: service}
}

// Create handles POST /branches.
func (h *BranchHandler) Create(c *gin.Context) {
	var req dto.CreateBranchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b := branch.NewBranch(req.Name)
	if err := h.service.Create(c.Request.Context(), b); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, b.ID.String())
}

// Get handles GET /branches/:id.
func (h *BranchHandler) Get(c *gin.Context) {
	branchID, ok := h.PathID(c)
	if !ok {
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), branchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, b)
}

// List handles GET /branches. ?active=true limits to active branches.
func (h *BranchHandler) List(c *gin.Context) {
	var (
		branches []*branch.Branch
		err      error
	)
	if c.Query("active") == "true" {
		branches, err = h.service.ListActive(c.Request.Context())
	} else {
		branches, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, branches)
}

// Rename handles PUT /branches/:id.
func (h *BranchHandler) Rename(c *gin.Context) {
	branchID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.RenameBranchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.service.Rename(c.Request.Context(), branchID, req.Name)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, b)
}

// Deactivate handles DELETE /branches/:id. Stock rows are kept.
func (h *BranchHandler) Deactivate(c *gin.Context) {
	branchID, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), branchID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// VariantHandler serves the variant catalog.
type VariantHandler struct {
	*BaseHandler
	service *variant.Service
}

func NewVariantHandler(service *variant.Service) *VariantHandler {
	return &VariantHandler{BaseHandler: NewBaseHandler(), service: service}
}

// Create handles POST /variants.
func (h *VariantHandler) Create(c *gin.Context) {
	var req dto.CreateVariantRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	v, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, v.ID.String())
}

// Get handles GET /variants/:id.
func (h *VariantHandler) Get(c *gin.Context) {
	variantID, ok := h.PathID(c)
	if !ok {
		return
	}

	v, err := h.service.GetByID(c.Request.Context(), variantID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, v)
}

// List handles GET /variants. ?search= filters, ?active=true limits.
func (h *VariantHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if query := c.Query("search"); query != "" {
		variants, err := h.service.Search(ctx, query)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, variants)
		return
	}

	variants, err := h.service.List(ctx, c.Query("active") == "true")
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, variants)
}

// Update handles PUT /variants/:id.
func (h *VariantHandler) Update(c *gin.Context) {
	variantID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.UpdateVariantRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	v, err := h.service.Update(c.Request.Context(), variantID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, v)
}

// Deactivate handles DELETE /variants/:id. Stock rows are kept.
func (h *VariantHandler) Deactivate(c *gin.Context) {
	variantID, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), variantID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
