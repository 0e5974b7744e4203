package api

import (
	"net/http"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ListClients handles GET /api/v1/clients
func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.clients.GetClients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients, "count": len(clients)})
}

// GetClientByTaxID handles GET /api/v1/clients/by-tax-id/:taxId. A miss is
// not an error for the storefront; it answers found=false instead.
func (h *Handler) GetClientByTaxID(c *gin.Context) {
	client, err := h.clients.GetClientByTaxID(c.Request.Context(), c.Param("taxId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if client == nil {
		c.JSON(http.StatusOK, gin.H{"found": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "client": client})
}

type clientRequest struct {
	Name           string  `json:"name" binding:"required"`
	TaxID          string  `json:"tax_id" binding:"required"`
	FiscalCategory string  `json:"fiscal_category"`
	Phone          string  `json:"phone"`
	Address        string  `json:"address"`
	CreditLimit    float64 `json:"credit_limit"`
}

// CreateClient handles POST /api/v1/clients
func (h *Handler) CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError(err.Error()))
		return
	}

	if req.FiscalCategory == "" {
		req.FiscalCategory = models.FiscalConsumidorFinal
	}
	client := &models.Client{
		Name:           req.Name,
		TaxID:          req.TaxID,
		FiscalCategory: req.FiscalCategory,
		Phone:          req.Phone,
		Address:        req.Address,
		CreditLimit:    req.CreditLimit,
	}
	if err := h.clients.CreateClient(c.Request.Context(), client); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// UpdateClient handles PUT /api/v1/clients/:id
func (h *Handler) UpdateClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError(err.Error()))
		return
	}

	existing, err := h.clients.GetClientByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	existing.Name = req.Name
	existing.TaxID = req.TaxID
	if req.FiscalCategory != "" {
		existing.FiscalCategory = req.FiscalCategory
	}
	existing.Phone = req.Phone
	existing.Address = req.Address
	existing.CreditLimit = req.CreditLimit

	if err := h.clients.UpdateClient(c.Request.Context(), existing); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, existing)
}

type paymentRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// RegisterClientPayment handles POST /api/v1/clients/:id/payments. The payment
// reduces the client's running balance and appends a ledger entry.
func (h *Handler) RegisterClientPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError(err.Error()))
		return
	}
	if req.Amount <= 0 {
		respondError(c, apperrors.NewFieldValidationError("amount", "must be positive"))
		return
	}

	entry, err := h.clients.RegisterPayment(c.Request.Context(), id, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetClientLedger handles GET /api/v1/clients/:id/ledger
func (h *Handler) GetClientLedger(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.clients.GetClientByID(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	entries, err := h.clients.GetLedgerEntries(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}
