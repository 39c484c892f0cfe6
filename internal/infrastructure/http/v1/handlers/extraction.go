package handlers

import (
	"github.com/gin-gonic/gin"

	"almacen/internal/infrastructure/extraction"
	"almacen/internal/infrastructure/http/v1/dto"
)

// ExtractionHandler turns invoice text into draft purchase lines.
type ExtractionHandler struct {
	*BaseHandler
	extractor *extraction.Extractor
}

func NewExtractionHandler(extractor *extraction.Extractor) *ExtractionHandler {
	return &ExtractionHandler{BaseHandler: NewBaseHandler(), extractor: extractor}
}

// Extract handles POST /purchases/extract. The response is a suggestion for
// the operator to review, nothing is recorded.
func (h *ExtractionHandler) Extract(c *gin.Context) {
	var req dto.ExtractInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.extractor.ExtractInvoice(c.Request.Context(), req.Text)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}
