package platform

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"sellerhub/internal/config"
	"sellerhub/internal/model"
	"sellerhub/pkg/utils"
)

const (
	ttsAuthBase = "https://auth.tiktok-shops.com"
	ttsAPIBase  = "https://open-api.tiktokglobalshop.com"
	ttAdsBase   = "https://business-api.tiktok.com"
)

// ==================== TikTok Shop ====================

// TikTokShop uses header-based token auth and separates price and inventory
// into two endpoints, so both updates are attempted independently.
type TikTokShop struct {
	cfg      config.TikTokShopConfig
	client   *resty.Client
	authBase string
	logger   *zap.Logger
}

func NewTikTokShop(cfg config.TikTokShopConfig, logger *zap.Logger) *TikTokShop {
	return &TikTokShop{
		cfg:      cfg,
		client:   utils.NewAPIClient(ttsAPIBase, 0),
		authBase: ttsAuthBase,
		logger:   logger,
	}
}

// WithBaseURL points both API and auth hosts at a different host. Test hook.
func (t *TikTokShop) WithBaseURL(u string) *TikTokShop {
	t.client.SetBaseURL(u)
	t.authBase = u
	return t
}

func (t *TikTokShop) Platform() string { return model.PlatformTikTokShop }

func (t *TikTokShop) ConflictPolicy() ConflictPolicy { return ConflictAllowMultiple }

func (t *TikTokShop) Configured() error {
	if t.cfg.AppKey == "" || t.cfg.AppSecret == "" {
		return fmt.Errorf("tiktok_shop: %w", ErrNotConfigured)
	}
	return nil
}

type ttsTokenResp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"access_token_expire_in"`
		SellerName   string `json:"seller_name"`
		OpenID       string `json:"open_id"`
	} `json:"data"`
}

func (t *TikTokShop) ExchangeCode(ctx context.Context, req ExchangeRequest) (*TokenSet, *Identity, error) {
	var out ttsTokenResp
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"app_key":    t.cfg.AppKey,
			"app_secret": t.cfg.AppSecret,
			"auth_code":  req.Code,
			"grant_type": "authorized_code",
		}).
		SetResult(&out).
		Get(t.authBase + "/api/v2/token/get")
	if err != nil {
		return nil, nil, fmt.Errorf("tiktok_shop token exchange: %w", err)
	}
	if resp.IsError() || out.Code != 0 {
		return nil, nil, &APIError{Platform: t.Platform(), StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	accountName := req.AccountName
	if accountName == "" {
		accountName = out.Data.SellerName
	}
	identity := &Identity{
		AccountName:    accountName,
		ExternalUserID: out.Data.OpenID,
	}
	return &TokenSet{
		AccessToken:  out.Data.AccessToken,
		RefreshToken: out.Data.RefreshToken,
		ExpiresIn:    out.Data.ExpiresIn,
	}, identity, nil
}

func (t *TikTokShop) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	var out ttsTokenResp
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"app_key":       t.cfg.AppKey,
			"app_secret":    t.cfg.AppSecret,
			"refresh_token": refreshToken,
			"grant_type":    "refresh_token",
		}).
		SetResult(&out).
		Get(t.authBase + "/api/v2/token/refresh")
	if err != nil {
		return nil, fmt.Errorf("tiktok_shop token refresh: %w", err)
	}
	if resp.IsError() || out.Code != 0 {
		return nil, &APIError{Platform: t.Platform(), StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return &TokenSet{
		AccessToken:  out.Data.AccessToken,
		RefreshToken: out.Data.RefreshToken,
		ExpiresIn:    out.Data.ExpiresIn,
	}, nil
}

type ttsAPIResp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		ProductID string `json:"product_id"`
	} `json:"data"`
}

func (t *TikTokShop) Publish(ctx context.Context, product *model.Product, _ *model.Integration, accessToken string, fields PublishFields) (*PublishResult, error) {
	images := make([]map[string]string, 0, len(product.Images))
	for _, img := range product.Images {
		images = append(images, map[string]string{"uri": img})
	}

	payload := map[string]interface{}{
		"title":       product.Name,
		"description": fields.Description,
		"category_id": fields.CategoryID,
		"main_images": images,
		"skus": []map[string]interface{}{{
			"seller_sku": product.SKU,
			"price":      map[string]interface{}{"amount": product.SellingPrice.StringFixed(2), "currency": "BRL"},
			"inventory":  []map[string]interface{}{{"quantity": product.Stock}},
		}},
	}

	var out ttsAPIResp
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("x-tts-access-token", accessToken).
		SetBody(payload).
		SetResult(&out).
		Post("/product/202309/products")
	if err != nil {
		return nil, fmt.Errorf("tiktok_shop publish: %w", err)
	}
	if resp.IsError() || out.Code != 0 {
		return nil, &APIError{Platform: t.Platform(), StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return &PublishResult{PlatformProductID: out.Data.ProductID}, nil
}

// UpdatePriceAndStock calls the price and inventory endpoints independently.
func (t *TikTokShop) UpdatePriceAndStock(ctx context.Context, product *model.Product, listing *model.ProductListing, _ *model.Integration, accessToken string) *Outcome {
	outcome := &Outcome{}

	var out ttsAPIResp
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("x-tts-access-token", accessToken).
		SetBody(map[string]interface{}{
			"skus": []map[string]interface{}{{
				"id":    listing.PlatformVariantID,
				"price": map[string]interface{}{"amount": product.SellingPrice.StringFixed(2), "currency": "BRL"},
			}},
		}).
		SetResult(&out).
		Post("/product/202309/products/" + listing.PlatformProductID + "/prices/update")
	switch {
	case err != nil:
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("price update: %v", err))
	case resp.IsError() || out.Code != 0:
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("price update (status %d): %s", resp.StatusCode(), resp.String()))
	default:
		outcome.PriceUpdated = true
	}

	out = ttsAPIResp{}
	resp, err = t.client.R().
		SetContext(ctx).
		SetHeader("x-tts-access-token", accessToken).
		SetBody(map[string]interface{}{
			"skus": []map[string]interface{}{{
				"id":        listing.PlatformVariantID,
				"inventory": []map[string]interface{}{{"quantity": product.Stock}},
			}},
		}).
		SetResult(&out).
		Post("/product/202309/products/" + listing.PlatformProductID + "/inventory/update")
	switch {
	case err != nil:
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("stock update: %v", err))
	case resp.IsError() || out.Code != 0:
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("stock update (status %d): %s", resp.StatusCode(), resp.String()))
	default:
		outcome.StockUpdated = true
	}

	return outcome
}

// ==================== TikTok Ads ====================

// TikTokAds is OAuth-only: it holds advertiser credentials for the ad-spend
// dashboard and has no sales channel to adapt.
type TikTokAds struct {
	cfg    config.TikTokAdsConfig
	client *resty.Client
	logger *zap.Logger
}

func NewTikTokAds(cfg config.TikTokAdsConfig, logger *zap.Logger) *TikTokAds {
	return &TikTokAds{
		cfg:    cfg,
		client: utils.NewAPIClient(ttAdsBase, 0),
		logger: logger,
	}
}

// WithBaseURL points the API host at a different host. Test hook.
func (t *TikTokAds) WithBaseURL(u string) *TikTokAds {
	t.client.SetBaseURL(u)
	return t
}

func (t *TikTokAds) Platform() string { return model.PlatformTikTokAds }

func (t *TikTokAds) ConflictPolicy() ConflictPolicy { return ConflictAllowMultiple }

func (t *TikTokAds) Configured() error {
	if t.cfg.AppID == "" || t.cfg.Secret == "" {
		return fmt.Errorf("tiktok_ads: %w", ErrNotConfigured)
	}
	return nil
}

// AuthorizationURL builds the Business API portal consent URL. The callback
// leg carries auth_code instead of code.
func (t *TikTokAds) AuthorizationURL(state, _ string) string {
	return fmt.Sprintf(
		"%s/portal/auth?app_id=%s&state=%s&redirect_uri=%s",
		ttAdsBase, t.cfg.AppID, state, url.QueryEscape(t.cfg.RedirectURI),
	)
}

type ttAdsTokenResp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		AccessToken   string  `json:"access_token"`
		AdvertiserIDs []int64 `json:"advertiser_ids"`
	} `json:"data"`
}

func (t *TikTokAds) ExchangeCode(ctx context.Context, req ExchangeRequest) (*TokenSet, *Identity, error) {
	var out ttAdsTokenResp
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"app_id":    t.cfg.AppID,
			"secret":    t.cfg.Secret,
			"auth_code": req.Code,
		}).
		SetResult(&out).
		Post("/open_api/v1.3/oauth2/access_token/")
	if err != nil {
		return nil, nil, fmt.Errorf("tiktok_ads token exchange: %w", err)
	}
	if resp.IsError() || out.Code != 0 {
		return nil, nil, &APIError{Platform: t.Platform(), StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	identity := &Identity{AccountName: req.AccountName}
	if len(out.Data.AdvertiserIDs) > 0 {
		identity.ExternalUserID = fmt.Sprintf("%d", out.Data.AdvertiserIDs[0])
	}
	// Ads tokens are long-lived and carry no refresh token.
	return &TokenSet{AccessToken: out.Data.AccessToken}, identity, nil
}

// SelfAuthorize accepts a pre-generated long-lived token (sandbox flows).
func (t *TikTokAds) SelfAuthorize(_ context.Context, req ExchangeRequest) (*TokenSet, *Identity, error) {
	if req.RefreshToken == "" {
		return nil, nil, &ValidationError{Msg: "a long-lived access token is required for TikTok Ads self-authorization"}
	}
	return &TokenSet{AccessToken: req.RefreshToken},
		&Identity{AccountName: req.AccountName}, nil
}

func (t *TikTokAds) Refresh(_ context.Context, _ string) (*TokenSet, error) {
	return nil, fmt.Errorf("tiktok_ads: long-lived tokens are not refreshed")
}
