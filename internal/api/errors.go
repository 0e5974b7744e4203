package api

import (
	"net/http"

	"heladeria-backend/internal/apperrors"
	"heladeria-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps domain errors onto HTTP statuses. Document-size failures
// stay 500 but carry their own code so callers can tell them from generic
// write failures.
func respondError(c *gin.Context, err error) {
	if _, ok := apperrors.IsAuthError(err); ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if _, ok := apperrors.IsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if _, ok := apperrors.IsUpstreamError(err); ok {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if _, ok := apperrors.IsSizeLimitError(err); ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
			"code":  "document_size_limit",
		})
		return
	}

	util.GetLogger().Error("Unhandled request error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
