package api

import (
	"net/http"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ListSellers handles GET /api/v1/sellers
func (h *Handler) ListSellers(c *gin.Context) {
	sellers, err := h.sellers.GetSellers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sellers": sellers, "count": len(sellers)})
}

// GetSellerByEmail handles GET /api/v1/sellers/by-email/:email with the same
// found-flag contract as the client lookup.
func (h *Handler) GetSellerByEmail(c *gin.Context) {
	seller, err := h.sellers.GetSellerByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	if seller == nil {
		c.JSON(http.StatusOK, gin.H{"found": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "seller": seller})
}

type sellerRequest struct {
	Name           string  `json:"name" binding:"required"`
	Email          string  `json:"email" binding:"required"`
	CommissionRate float64 `json:"commission_rate"`
}

// CreateSeller handles POST /api/v1/sellers
func (h *Handler) CreateSeller(c *gin.Context) {
	var req sellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError(err.Error()))
		return
	}

	seller := &models.Seller{
		Name:           req.Name,
		Email:          req.Email,
		CommissionRate: req.CommissionRate,
	}
	if err := h.sellers.CreateSeller(c.Request.Context(), seller); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, seller)
}

// UpdateSeller handles PUT /api/v1/sellers/:id
func (h *Handler) UpdateSeller(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req sellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError(err.Error()))
		return
	}

	seller, err := h.sellers.GetSellerByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	seller.Name = req.Name
	seller.Email = req.Email
	if req.CommissionRate > 0 {
		seller.CommissionRate = req.CommissionRate
	}

	if err := h.sellers.UpdateSeller(c.Request.Context(), seller); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, seller)
}

// PayCommission handles POST /api/v1/commissions/:id/pay
func (h *Handler) PayCommission(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	commission, err := h.commissions.PayCommission(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, commission)
}

// PayAllCommissions handles POST /api/v1/sellers/:id/commissions/pay-all
func (h *Handler) PayAllCommissions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.commissions.PayAllCommissions(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListSellerCommissions handles GET /api/v1/sellers/:id/commissions[?unpaid=true]
func (h *Handler) ListSellerCommissions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	unpaidOnly := c.Query("unpaid") == "true"
	commissions, err := h.commissions.ListCommissions(c.Request.Context(), id, unpaidOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commissions": commissions, "count": len(commissions)})
}
