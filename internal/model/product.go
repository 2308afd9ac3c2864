package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Listing sync status constants
const (
	SyncStatusActive = "active"
	SyncStatusError  = "error"
	SyncStatusPaused = "paused"
)

// Product is the canonical internal representation; the source of truth that
// platform adapters translate outward.
type Product struct {
	BaseModel
	UserID         int64 `gorm:"index;not null"`
	OrganizationID int64 `gorm:"index"`

	Name string `gorm:"size:255;not null"`
	SKU  string `gorm:"size:100;index"`

	// Stock must never go negative; adjustments that would are rejected
	// before persistence.
	Stock int `gorm:"default:0;not null"`

	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	AdSpend      decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	Images pq.StringArray `gorm:"type:text[]"`

	WeightKg  float64 `gorm:"default:0"`
	LengthCm  float64 `gorm:"default:0"`
	WidthCm   float64 `gorm:"default:0"`
	HeightCm  float64 `gorm:"default:0"`
	Condition string  `gorm:"size:20;default:'new'"`
	Category  string  `gorm:"size:100"`

	Listings []ProductListing `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string {
	return "products"
}

// Margin returns the gross margin percentage, or zero when no selling price.
func (p *Product) Margin() decimal.Decimal {
	if p.SellingPrice.IsZero() {
		return decimal.Zero
	}
	return p.SellingPrice.Sub(p.CostPrice).
		Div(p.SellingPrice).
		Mul(decimal.NewFromInt(100))
}

// ProductListing is the external mirror of one Product on one platform.
// sync_status/sync_error reflect the last attempt's outcome; last_sync_at is
// stamped on every attempt, success or failure.
type ProductListing struct {
	BaseModel
	ProductID int64    `gorm:"index;not null;uniqueIndex:idx_listing_product_integration"`
	Product   *Product `gorm:"foreignKey:ProductID"`

	IntegrationID int64        `gorm:"index;not null;uniqueIndex:idx_listing_product_integration"`
	Integration   *Integration `gorm:"foreignKey:IntegrationID"`

	Platform          string `gorm:"size:30;index"`
	PlatformProductID string `gorm:"size:100;index"`
	PlatformVariantID string `gorm:"size:100"`
	PlatformURL       string `gorm:"size:512"`

	SyncStatus string     `gorm:"size:20;index;default:'active'"` // active, error, paused
	SyncError  string     `gorm:"type:text"`
	LastSyncAt *time.Time

	// Opaque snapshot of the platform's own representation.
	PlatformMetadata datatypes.JSON `gorm:"type:jsonb"`
}

func (ProductListing) TableName() string {
	return "product_listings"
}
