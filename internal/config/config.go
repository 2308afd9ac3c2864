package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration. Per-platform credential structs are
// injected into each adapter instance; nothing reads the environment after
// startup.
type Config struct {
	ServerPort  string
	AppURL      string // dashboard origin, target of OAuth redirect callbacks
	DatabaseDSN string
	LogLevel    string

	JWTSecret string

	// Hex-encoded AES-256 key for the local vault. When empty the vault
	// delegates to the database's encrypt_token/decrypt_token functions.
	VaultKey string

	GeminiAPIKey string

	MercadoLivre MercadoLivreConfig
	Amazon       AmazonConfig
	Shopify      ShopifyConfig
	TikTokShop   TikTokShopConfig
	TikTokAds    TikTokAdsConfig
	Magalu       MagaluConfig
}

type MercadoLivreConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type AmazonConfig struct {
	LWAClientID     string
	LWAClientSecret string
	AppID           string
	RedirectURI     string
	MarketplaceID   string // defaults to Brazil
}

type ShopifyConfig struct {
	APIKey    string
	APISecret string
}

type TikTokShopConfig struct {
	AppKey    string
	AppSecret string
}

type TikTokAdsConfig struct {
	AppID       string
	Secret      string
	RedirectURI string
}

type MagaluConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("APP_URL", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AMAZON_MARKETPLACE_ID", "A2Q3Y263D00KWC")

	cfg := &Config{
		ServerPort:  v.GetString("SERVER_PORT"),
		AppURL:      v.GetString("APP_URL"),
		DatabaseDSN: v.GetString("DATABASE_DSN"),
		LogLevel:    v.GetString("LOG_LEVEL"),

		JWTSecret: v.GetString("JWT_SECRET"),
		VaultKey:  v.GetString("VAULT_KEY"),

		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),

		MercadoLivre: MercadoLivreConfig{
			ClientID:     v.GetString("ML_CLIENT_ID"),
			ClientSecret: v.GetString("ML_CLIENT_SECRET"),
			RedirectURI:  v.GetString("ML_REDIRECT_URI"),
		},
		Amazon: AmazonConfig{
			LWAClientID:     v.GetString("AMAZON_LWA_CLIENT_ID"),
			LWAClientSecret: v.GetString("AMAZON_LWA_CLIENT_SECRET"),
			AppID:           v.GetString("AMAZON_APP_ID"),
			RedirectURI:     v.GetString("AMAZON_REDIRECT_URI"),
			MarketplaceID:   v.GetString("AMAZON_MARKETPLACE_ID"),
		},
		Shopify: ShopifyConfig{
			APIKey:    v.GetString("SHOPIFY_API_KEY"),
			APISecret: v.GetString("SHOPIFY_API_SECRET"),
		},
		TikTokShop: TikTokShopConfig{
			AppKey:    v.GetString("TIKTOK_SHOP_APP_KEY"),
			AppSecret: v.GetString("TIKTOK_SHOP_APP_SECRET"),
		},
		TikTokAds: TikTokAdsConfig{
			AppID:       v.GetString("TIKTOK_ADS_APP_ID"),
			Secret:      v.GetString("TIKTOK_ADS_SECRET"),
			RedirectURI: v.GetString("TIKTOK_ADS_REDIRECT_URI"),
		},
		Magalu: MagaluConfig{
			ClientID:     v.GetString("MAGALU_CLIENT_ID"),
			ClientSecret: v.GetString("MAGALU_CLIENT_SECRET"),
			RedirectURI:  v.GetString("MAGALU_REDIRECT_URI"),
		},
	}

	return cfg, nil
}
