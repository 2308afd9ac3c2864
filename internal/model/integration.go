package model

import (
	"time"
)

// Platform tags. One Integration row per connected seller account per platform.
const (
	PlatformMercadoLivre = "mercadolivre"
	PlatformAmazon       = "amazon"
	PlatformShopify      = "shopify"
	PlatformTikTokShop   = "tiktok_shop"
	PlatformTikTokAds    = "tiktok_ads"
	PlatformMagalu       = "magalu"
	PlatformShopee       = "shopee"
)

// Token status constants
const (
	TokenStatusValid   = "valid"
	TokenStatusExpired = "expired"
	TokenStatusInvalid = "auth_invalid" // platform refused a refresh, needs re-auth
)

// Integration is a connected seller account credential set for one marketplace.
// Tokens are stored encrypted only; plaintext never touches this table.
type Integration struct {
	BaseModel
	UserID         int64  `gorm:"index;not null"`
	OrganizationID int64  `gorm:"index"`
	Platform       string `gorm:"size:30;index:idx_integration_user_platform;not null"`
	AccountName    string `gorm:"size:100"`

	// Ciphertext produced by the token vault.
	EncryptedAccessToken  string `gorm:"type:text"`
	EncryptedRefreshToken string `gorm:"type:text"`
	TokenExpiresAt        *time.Time
	TokenStatus           string `gorm:"size:20;index;default:'valid'"`

	// Platform-specific external identity.
	SellingPartnerID string `gorm:"size:100;index"` // Amazon SP-API
	ShopDomain       string `gorm:"size:100"`       // Shopify *.myshopify.com
	MarketplaceID    string `gorm:"size:50"`        // Amazon marketplace
	ExternalUserID   string `gorm:"size:100"`       // ML user id / TikTok advertiser id

	Listings []ProductListing `gorm:"foreignKey:IntegrationID"`
}

func (Integration) TableName() string {
	return "integrations"
}

// TokenExpiringWithin reports whether the access token expires inside d.
func (i *Integration) TokenExpiringWithin(d time.Duration) bool {
	if i.TokenExpiresAt == nil {
		return false
	}
	return i.TokenExpiresAt.Before(time.Now().Add(d))
}
