package handlers

import (
	"errors"
	"net/http"

	"github.com/omeshapasan2/e-commerce-platform/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const tracerName = "ecommerce-api"

// respondError maps the domain error taxonomy to fixed status codes.
// Anything unmapped becomes a generic 500 with no internal detail leaked.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validation     *models.ValidationError
		notFound       *models.NotFoundError
		authentication *models.AuthenticationError
		authorization  *models.AuthorizationError
		conflict       *models.ConflictError
		security       *models.SecurityError
		upstream       *models.UpstreamError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Message})
	case errors.As(err, &authentication):
		c.JSON(http.StatusUnauthorized, gin.H{"error": authentication.Message})
	case errors.As(err, &authorization):
		c.JSON(http.StatusForbidden, gin.H{"error": authorization.Message})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Message})
	case errors.As(err, &security):
		logger.Warn("Security error", zap.Error(err), zap.String("ip", c.ClientIP()))
		c.JSON(http.StatusBadRequest, gin.H{"error": security.Message})
	case errors.As(err, &upstream):
		logger.Error("Upstream provider error", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
	default:
		logger.Error("Unhandled error", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
