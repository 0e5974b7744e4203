package api

import (
	"net/http"

	"heladeria-backend/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// ListOrders handles GET /api/v1/orders[?status=]
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError(err.Error()))
		return
	}

	order, err := h.orders.AdvanceOrder(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type linkSaleRequest struct {
	SaleID int64 `json:"sale_id" binding:"required"`
}

// LinkOrderSale handles PUT /api/v1/orders/:id/sale
func (h *Handler) LinkOrderSale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req linkSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError(err.Error()))
		return
	}

	if err := h.orders.LinkSale(c.Request.Context(), id, req.SaleID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": id, "sale_id": req.SaleID})
}
