package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sellerhub/internal/api/dto"
	"sellerhub/internal/middleware"
	"sellerhub/internal/service"
)

type SyncController struct {
	syncService *service.SyncService
	authService *service.AuthService
}

func NewSyncController(syncService *service.SyncService, authService *service.AuthService) *SyncController {
	return &SyncController{syncService: syncService, authService: authService}
}

// Update changes price and/or stock and pushes the change to every
// connected listing. The canonical write succeeds or fails atomically;
// platform results come back per listing.
// @Summary Update price/stock and sync to all platforms
// @Tags Sync
// @Param id path int true "product id"
// @Param body body dto.UpdateProductReq true "fields to change"
// @Router /api/sync/products/{id} [put]
func (ctrl *SyncController) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid product id"})
		return
	}

	var req dto.UpdateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid request body: " + err.Error()})
		return
	}

	report, err := ctrl.syncService.UpdateProduct(c.Request.Context(), service.UpdateProductInput{
		UserID:    middleware.GetUserID(c),
		ProductID: id,
		Price:     req.Price,
		Stock:     req.Stock,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, report)
}

// Resync re-pushes the current canonical values to every listing.
// @Summary Re-sync a product without changing it
// @Tags Sync
// @Param id path int true "product id"
// @Router /api/sync/products/{id}/resync [post]
func (ctrl *SyncController) Resync(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid product id"})
		return
	}

	report, err := ctrl.syncService.Resync(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, report)
}

// Publish creates a listing for the product on one connected platform.
// @Summary Publish a product to a platform
// @Tags Sync
// @Param id path int true "product id"
// @Param body body dto.PublishProductReq true "target"
// @Router /api/sync/products/{id}/publish [post]
func (ctrl *SyncController) Publish(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid product id"})
		return
	}

	var req dto.PublishProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid request body: " + err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	integration, err := ctrl.authService.GetIntegration(c.Request.Context(), req.IntegrationID, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	listing, err := ctrl.syncService.Publish(c.Request.Context(), service.PublishInput{
		UserID:        userID,
		ProductID:     id,
		IntegrationID: req.IntegrationID,
		CategoryID:    req.CategoryID,
		ListingType:   req.ListingType,
		Description:   req.Description,
	}, integration)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, listing)
}
