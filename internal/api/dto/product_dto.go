package dto

import "github.com/shopspring/decimal"

// ==================== Requests ====================

type CreateProductReq struct {
	Name         string          `json:"name" binding:"required"`
	SKU          string          `json:"sku"`
	Stock        int             `json:"stock"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	AdSpend      decimal.Decimal `json:"ad_spend"`
	Images       []string        `json:"images"`
	WeightKg     float64         `json:"weight_kg"`
	LengthCm     float64         `json:"length_cm"`
	WidthCm      float64         `json:"width_cm"`
	HeightCm     float64         `json:"height_cm"`
	Condition    string          `json:"condition"`
	Category     string          `json:"category"`
}

type AdjustStockReq struct {
	Delta int `json:"delta" binding:"required"`
}

// UpdateProductReq changes price and/or stock and fans the change out to
// every connected listing. Nil fields stay untouched.
type UpdateProductReq struct {
	Price *decimal.Decimal `json:"price"`
	Stock *int             `json:"stock"`
}

type PublishProductReq struct {
	IntegrationID int64  `json:"integration_id" binding:"required"`
	CategoryID    string `json:"category_id"`
	ListingType   string `json:"listing_type"`
	Description   string `json:"description"`
}

// ==================== Responses ====================

type ProductListResp struct {
	Code     int         `json:"code"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
