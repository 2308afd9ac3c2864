package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"sellerhub/internal/platform"
	"sellerhub/internal/service"
)

// writeError maps domain errors onto the response envelope. Upstream API
// errors keep their verbatim body so the client can surface the platform's
// own message; configuration problems never leak which credential is missing.
func writeError(c *gin.Context, err error) {
	var (
		validationErr *platform.ValidationError
		apiErr        *platform.APIError
		stockErr      *service.InsufficientStockError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": validationErr.Msg})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": stockErr.Error()})
	case errors.Is(err, platform.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "configuration error"})
	case errors.Is(err, service.ErrDuplicateIntegration):
		c.JSON(http.StatusConflict, gin.H{"code": 409, "message": "this account is already connected"})
	case errors.Is(err, service.ErrUnknownPlatform):
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": err.Error()})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"code":     502,
			"message":  apiErr.Error(),
			"platform": apiErr.Platform,
			"upstream": apiErr.Body,
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
	}
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": data})
}
