package platform

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"sellerhub/internal/config"
	"sellerhub/internal/model"
	"sellerhub/pkg/utils"
)

const (
	lwaTokenURL = "https://api.amazon.com/auth/o2/token"
	spAPIBase   = "https://sellingpartnerapi-na.amazon.com"
)

// Amazon wires the SP-API adapter and the LWA OAuth provider. The seller's
// identity (selling partner id) arrives alongside the consent code on the
// callback; a second callback with the same id must not create a second row.
type Amazon struct {
	cfg      config.AmazonConfig
	client   *resty.Client // SP-API
	tokenURL string
	logger   *zap.Logger
}

func NewAmazon(cfg config.AmazonConfig, logger *zap.Logger) *Amazon {
	return &Amazon{
		cfg:      cfg,
		client:   utils.NewAPIClient(spAPIBase, 0),
		tokenURL: lwaTokenURL,
		logger:   logger,
	}
}

// WithBaseURL points both the SP-API client and the token endpoint at a
// different host. Test hook.
func (a *Amazon) WithBaseURL(u string) *Amazon {
	a.client.SetBaseURL(u)
	a.tokenURL = u + "/auth/o2/token"
	return a
}

func (a *Amazon) Platform() string { return model.PlatformAmazon }

func (a *Amazon) ConflictPolicy() ConflictPolicy { return ConflictRejectDuplicate }

func (a *Amazon) Configured() error {
	if a.cfg.LWAClientID == "" || a.cfg.LWAClientSecret == "" {
		return fmt.Errorf("amazon: %w", ErrNotConfigured)
	}
	return nil
}

// ==================== OAuth (LWA) ====================

type lwaTokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (a *Amazon) exchange(ctx context.Context, form map[string]string) (*TokenSet, error) {
	form["client_id"] = a.cfg.LWAClientID
	form["client_secret"] = a.cfg.LWAClientSecret

	var out lwaTokenResp
	resp, err := a.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		Post(a.tokenURL)
	if err != nil {
		return nil, fmt.Errorf("amazon LWA exchange: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Platform: a.Platform(), StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return &TokenSet{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    out.ExpiresIn,
	}, nil
}

func (a *Amazon) ExchangeCode(ctx context.Context, req ExchangeRequest) (*TokenSet, *Identity, error) {
	tokens, err := a.exchange(ctx, map[string]string{
		"grant_type":   "authorization_code",
		"code":         req.Code,
		"redirect_uri": a.cfg.RedirectURI,
	})
	if err != nil {
		return nil, nil, err
	}
	return tokens, a.identity(req), nil
}

// SelfAuthorize accepts a user-supplied long-lived refresh token instead of
// performing the code exchange.
func (a *Amazon) SelfAuthorize(ctx context.Context, req ExchangeRequest) (*TokenSet, *Identity, error) {
	tokens, err := a.exchange(ctx, map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": req.RefreshToken,
	})
	if err != nil {
		return nil, nil, err
	}
	// The platform omits the refresh token on this grant; keep the one the
	// seller supplied.
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = req.RefreshToken
	}
	return tokens, a.identity(req), nil
}

func (a *Amazon) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	tokens, err := a.exchange(ctx, map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, err
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}
	return tokens, nil
}

// AuthorizationURL builds the Seller Central consent URL. The callback leg
// carries spapi_oauth_code and selling_partner_id instead of code.
func (a *Amazon) AuthorizationURL(state, _ string) string {
	return fmt.Sprintf(
		"https://sellercentral.amazon.com.br/apps/authorize/consent?application_id=%s&state=%s&version=beta",
		a.cfg.AppID, state,
	)
}

func (a *Amazon) identity(req ExchangeRequest) *Identity {
	return &Identity{
		AccountName:      req.AccountName,
		SellingPartnerID: req.SellingPartnerID,
		MarketplaceID:    a.cfg.MarketplaceID,
	}
}

// ==================== SP-API listings ====================

type spPatch struct {
	Op    string        `json:"op"`
	Path  string        `json:"path"`
	Value []interface{} `json:"value"`
}

func (a *Amazon) listingsPath(integration *model.Integration, sku string) string {
	return fmt.Sprintf("/listings/2021-08-01/items/%s/%s", integration.SellingPartnerID, sku)
}

func (a *Amazon) Publish(ctx context.Context, product *model.Product, integration *model.Integration, accessToken string, fields PublishFields) (*PublishResult, error) {
	payload := map[string]interface{}{
		"productType": "PRODUCT",
		"attributes": map[string]interface{}{
			"item_name": []map[string]interface{}{{"value": product.Name}},
			"purchasable_offer": []map[string]interface{}{{
				"currency": "BRL",
				"our_price": []map[string]interface{}{{
					"schedule": []map[string]interface{}{{"value_with_tax": product.SellingPrice.InexactFloat64()}},
				}},
			}},
			"fulfillment_availability": []map[string]interface{}{{
				"fulfillment_channel_code": "DEFAULT",
				"quantity":                 product.Stock,
			}},
		},
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("x-amz-access-token", accessToken).
		SetQueryParam("marketplaceIds", integration.MarketplaceID).
		SetBody(payload).
		Put(a.listingsPath(integration, product.SKU))
	if err != nil {
		return nil, fmt.Errorf("amazon publish: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Platform: a.Platform(), StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return &PublishResult{
		PlatformProductID: product.SKU,
		PlatformURL:       fmt.Sprintf("https://sellercentral.amazon.com.br/skucentral?mSku=%s", product.SKU),
	}, nil
}

// UpdatePriceAndStock patches price and quantity in a single listings call.
func (a *Amazon) UpdatePriceAndStock(ctx context.Context, product *model.Product, listing *model.ProductListing, integration *model.Integration, accessToken string) *Outcome {
	outcome := &Outcome{}

	patches := []spPatch{
		{
			Op:   "replace",
			Path: "/attributes/purchasable_offer",
			Value: []interface{}{map[string]interface{}{
				"currency": "BRL",
				"our_price": []map[string]interface{}{{
					"schedule": []map[string]interface{}{{"value_with_tax": product.SellingPrice.InexactFloat64()}},
				}},
			}},
		},
		{
			Op:   "replace",
			Path: "/attributes/fulfillment_availability",
			Value: []interface{}{map[string]interface{}{
				"fulfillment_channel_code": "DEFAULT",
				"quantity":                 product.Stock,
			}},
		},
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("x-amz-access-token", accessToken).
		SetQueryParam("marketplaceIds", integration.MarketplaceID).
		SetBody(map[string]interface{}{"productType": "PRODUCT", "patches": patches}).
		Patch(a.listingsPath(integration, listing.PlatformProductID))

	switch {
	case err != nil:
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("listings patch: %v", err))
	case resp.IsError():
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("listings patch (status %d): %s", resp.StatusCode(), resp.String()))
	default:
		outcome.PriceUpdated = true
		outcome.StockUpdated = true
	}
	return outcome
}
