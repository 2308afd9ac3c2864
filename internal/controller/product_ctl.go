package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sellerhub/internal/api/dto"
	"sellerhub/internal/middleware"
	"sellerhub/internal/model"
	"sellerhub/internal/repository"
	"sellerhub/internal/service"
)

type ProductController struct {
	productService *service.ProductService
}

func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// ==================== Queries ====================

// List returns the caller's products.
// @Summary List products
// @Tags Product
// @Param keyword query string false "name or SKU search"
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(20)
// @Router /api/products [get]
func (ctrl *ProductController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	products, total, err := ctrl.productService.List(c.Request.Context(), repository.ProductFilter{
		UserID:   middleware.GetUserID(c),
		Keyword:  c.Query("keyword"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProductListResp{
		Code:     0,
		Message:  "success",
		Data:     products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Get returns one product with its listings.
// @Summary Get product detail
// @Tags Product
// @Param id path int true "product id"
// @Router /api/products/{id} [get]
func (ctrl *ProductController) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid product id"})
		return
	}

	product, err := ctrl.productService.Get(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, product)
}

// ==================== Mutations ====================

// Create adds a product to the canonical catalog.
// @Summary Create product
// @Tags Product
// @Param body body dto.CreateProductReq true "product"
// @Router /api/products [post]
func (ctrl *ProductController) Create(c *gin.Context) {
	var req dto.CreateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid request body: " + err.Error()})
		return
	}

	product := &model.Product{
		UserID:         middleware.GetUserID(c),
		OrganizationID: middleware.GetOrganizationID(c),
		Name:           req.Name,
		SKU:            req.SKU,
		Stock:          req.Stock,
		CostPrice:      req.CostPrice,
		SellingPrice:   req.SellingPrice,
		AdSpend:        req.AdSpend,
		Images:         req.Images,
		WeightKg:       req.WeightKg,
		LengthCm:       req.LengthCm,
		WidthCm:        req.WidthCm,
		HeightCm:       req.HeightCm,
		Condition:      req.Condition,
		Category:       req.Category,
	}
	if err := ctrl.productService.Create(c.Request.Context(), product); err != nil {
		writeError(c, err)
		return
	}
	ok(c, product)
}

// AdjustStock applies a relative stock change to the canonical record only.
// @Summary Adjust stock by a delta
// @Tags Product
// @Param id path int true "product id"
// @Param body body dto.AdjustStockReq true "delta"
// @Router /api/products/{id}/stock [post]
func (ctrl *ProductController) AdjustStock(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid product id"})
		return
	}

	var req dto.AdjustStockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid request body: " + err.Error()})
		return
	}

	product, err := ctrl.productService.AdjustStock(c.Request.Context(), id, middleware.GetUserID(c), req.Delta)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, product)
}
