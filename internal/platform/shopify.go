package platform

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"sellerhub/internal/config"
	"sellerhub/internal/model"
	"sellerhub/pkg/utils"
)

const shopifyAPIVersion = "2024-01"

// Shopify talks to the per-shop admin REST API. The account is the shop
// domain itself; reconnecting replaces the prior single Shopify account for
// the user (upsert on user+platform).
type Shopify struct {
	cfg     config.ShopifyConfig
	client  *resty.Client
	baseURL string // test override; empty means https://{shop_domain}
	logger  *zap.Logger
}

func NewShopify(cfg config.ShopifyConfig, logger *zap.Logger) *Shopify {
	return &Shopify{
		cfg:    cfg,
		client: utils.NewAPIClient("", 0),
		logger: logger,
	}
}

// WithBaseURL overrides the shop host. Test hook.
func (s *Shopify) WithBaseURL(u string) *Shopify {
	s.baseURL = u
	return s
}

func (s *Shopify) shopURL(shopDomain string) string {
	if s.baseURL != "" {
		return s.baseURL
	}
	return "https://" + shopDomain
}

func (s *Shopify) Platform() string { return model.PlatformShopify }

func (s *Shopify) ConflictPolicy() ConflictPolicy { return ConflictReplace }

func (s *Shopify) Configured() error {
	if s.cfg.APIKey == "" || s.cfg.APISecret == "" {
		return fmt.Errorf("shopify: %w", ErrNotConfigured)
	}
	return nil
}

// ==================== OAuth ====================

type shopifyTokenResp struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

func (s *Shopify) ExchangeCode(ctx context.Context, req ExchangeRequest) (*TokenSet, *Identity, error) {
	if req.ShopDomain == "" {
		return nil, nil, &ValidationError{Msg: "shop domain is required to connect Shopify"}
	}

	var out shopifyTokenResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"client_id":     s.cfg.APIKey,
			"client_secret": s.cfg.APISecret,
			"code":          req.Code,
		}).
		SetResult(&out).
		Post(s.shopURL(req.ShopDomain) + "/admin/oauth/access_token")
	if err != nil {
		return nil, nil, fmt.Errorf("shopify token exchange: %w", err)
	}
	if resp.IsError() {
		return nil, nil, &APIError{Platform: s.Platform(), StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	accountName := req.AccountName
	if accountName == "" {
		accountName = strings.TrimSuffix(req.ShopDomain, ".myshopify.com")
	}
	identity := &Identity{
		AccountName: accountName,
		ShopDomain:  req.ShopDomain,
	}
	// Shopify offline tokens do not expire and carry no refresh token.
	return &TokenSet{AccessToken: out.AccessToken}, identity, nil
}

func (s *Shopify) Refresh(_ context.Context, _ string) (*TokenSet, error) {
	return nil, fmt.Errorf("shopify: offline tokens do not expire, nothing to refresh")
}

// ==================== Admin REST ====================

type shopifyProductResp struct {
	Product struct {
		ID       int64  `json:"id"`
		Handle   string `json:"handle"`
		Variants []struct {
			ID int64 `json:"id"`
		} `json:"variants"`
	} `json:"product"`
}

func (s *Shopify) Publish(ctx context.Context, product *model.Product, integration *model.Integration, accessToken string, fields PublishFields) (*PublishResult, error) {
	images := make([]map[string]string, 0, len(product.Images))
	for _, img := range product.Images {
		images = append(images, map[string]string{"src": img})
	}

	payload := map[string]interface{}{
		"product": map[string]interface{}{
			"title":     product.Name,
			"body_html": fields.Description,
			"images":    images,
			"variants": []map[string]interface{}{{
				"price":                product.SellingPrice.StringFixed(2),
				"sku":                  product.SKU,
				"inventory_quantity":   product.Stock,
				"inventory_management": "shopify",
			}},
		},
	}

	var out shopifyProductResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", accessToken).
		SetBody(payload).
		SetResult(&out).
		Post(s.shopURL(integration.ShopDomain) + "/admin/api/" + shopifyAPIVersion + "/products.json")
	if err != nil {
		return nil, fmt.Errorf("shopify publish: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Platform: s.Platform(), StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	result := &PublishResult{
		PlatformProductID: strconv.FormatInt(out.Product.ID, 10),
		PlatformURL:       s.shopURL(integration.ShopDomain) + "/products/" + out.Product.Handle,
	}
	if len(out.Product.Variants) > 0 {
		result.PlatformVariantID = strconv.FormatInt(out.Product.Variants[0].ID, 10)
	}
	return result, nil
}

// UpdatePriceAndStock updates the variant in one PUT; Shopify keeps price and
// quantity on the same resource.
func (s *Shopify) UpdatePriceAndStock(ctx context.Context, product *model.Product, listing *model.ProductListing, integration *model.Integration, accessToken string) *Outcome {
	outcome := &Outcome{}

	variantID := listing.PlatformVariantID
	if variantID == "" {
		outcome.Errors = append(outcome.Errors, "listing has no variant id")
		return outcome
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", accessToken).
		SetBody(map[string]interface{}{
			"variant": map[string]interface{}{
				"id":                 variantID,
				"price":              product.SellingPrice.StringFixed(2),
				"inventory_quantity": product.Stock,
			},
		}).
		Put(s.shopURL(integration.ShopDomain) + "/admin/api/" + shopifyAPIVersion + "/variants/" + variantID + ".json")

	switch {
	case err != nil:
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("variant update: %v", err))
	case resp.IsError():
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("variant update (status %d): %s", resp.StatusCode(), resp.String()))
	default:
		outcome.PriceUpdated = true
		outcome.StockUpdated = true
	}
	return outcome
}
