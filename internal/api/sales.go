package api

import (
	"net/http"
	"strconv"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateSale handles POST /api/v1/sales
func (h *Handler) CreateSale(c *gin.Context) {
	var req service.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError(err.Error()))
		return
	}

	sale, err := h.sales.ProcessSale(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// GetSale handles GET /api/v1/sales/:id
func (h *Handler) GetSale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	sale, err := h.sales.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// ListSales handles GET /api/v1/sales
func (h *Handler) ListSales(c *gin.Context) {
	sales, err := h.sales.ListSales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales, "count": len(sales)})
}

// Checkout handles POST /api/v1/checkout
func (h *Handler) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError(err.Error()))
		return
	}

	result, err := h.sales.Checkout(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

type issueInvoiceRequest struct {
	EmitFiscal bool `json:"emit_fiscal"`
}

// IssueInvoice handles POST /api/v1/sales/:id/invoice
func (h *Handler) IssueInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req issueInvoiceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError(err.Error()))
			return
		}
	}

	result, err := h.invoices.IssueInvoice(c.Request.Context(), id, req.EmitFiscal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// IssueRemito handles POST /api/v1/sales/:id/remito
func (h *Handler) IssueRemito(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.invoices.IssueRemito(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetSalePDF handles GET /api/v1/sales/:id/pdf?document=invoice|remito
func (h *Handler) GetSalePDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	document := c.DefaultQuery("document", service.DocumentInvoice)
	pdf, err := h.invoices.GetPDF(c.Request.Context(), id, document)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sale_id": id, "document": document, "pdf": pdf})
}

type shareRequest struct {
	Document string `json:"document"`
}

// ShareSale handles POST /api/v1/sales/:id/share
func (h *Handler) ShareSale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	req := shareRequest{Document: service.DocumentInvoice}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError(err.Error()))
			return
		}
	}

	result, err := h.invoices.Share(c.Request.Context(), id, req.Document)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type uploadFileRequest struct {
	Filename      string `json:"filename" binding:"required"`
	ContentBase64 string `json:"content_base64" binding:"required"`
}

// UploadFile handles POST /api/v1/files
func (h *Handler) UploadFile(c *gin.Context) {
	var req uploadFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError(err.Error()))
		return
	}

	if h.files == nil {
		respondError(c, apperrors.NewUpstreamError("drive", "file hosting not configured", nil))
		return
	}

	url, err := h.files.Upload(c.Request.Context(), req.Filename, req.ContentBase64)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"file_url": url})
}

// pathID parses a numeric path parameter, responding 400 on garbage
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		respondError(c, apperrors.NewFieldValidationError(name, "must be a numeric id"))
		return 0, false
	}
	return id, true
}
