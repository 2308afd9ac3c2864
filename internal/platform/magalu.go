package platform

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sellerhub/internal/config"
	"sellerhub/internal/model"
	"sellerhub/pkg/utils"
)

// Magalu portfolio prices are integer cents.
var decimalHundred = decimal.NewFromInt(100)

const (
	magaluAPIBase  = "https://api.magalu.com"
	magaluTokenURL = "https://id.magalu.com/oauth/token"
)

// Magalu separates price and inventory into two portfolio endpoints; the two
// updates are attempted independently and each failure is recorded on its own.
type Magalu struct {
	cfg      config.MagaluConfig
	client   *resty.Client
	tokenURL string
	logger   *zap.Logger
}

func NewMagalu(cfg config.MagaluConfig, logger *zap.Logger) *Magalu {
	return &Magalu{
		cfg:      cfg,
		client:   utils.NewAPIClient(magaluAPIBase, 0),
		tokenURL: magaluTokenURL,
		logger:   logger,
	}
}

// WithBaseURL points the adapter and token endpoint at a different host.
// Test hook.
func (m *Magalu) WithBaseURL(u string) *Magalu {
	m.client.SetBaseURL(u)
	m.tokenURL = u + "/oauth/token"
	return m
}

func (m *Magalu) Platform() string { return model.PlatformMagalu }

func (m *Magalu) ConflictPolicy() ConflictPolicy { return ConflictAllowMultiple }

func (m *Magalu) Configured() error {
	if m.cfg.ClientID == "" || m.cfg.ClientSecret == "" {
		return fmt.Errorf("magalu: %w", ErrNotConfigured)
	}
	return nil
}

// ==================== OAuth ====================

type magaluTokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (m *Magalu) exchange(ctx context.Context, form map[string]string) (*TokenSet, error) {
	form["client_id"] = m.cfg.ClientID
	form["client_secret"] = m.cfg.ClientSecret

	var out magaluTokenResp
	resp, err := m.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		Post(m.tokenURL)
	if err != nil {
		return nil, fmt.Errorf("magalu token exchange: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Platform: m.Platform(), StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return &TokenSet{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    out.ExpiresIn,
	}, nil
}

func (m *Magalu) ExchangeCode(ctx context.Context, req ExchangeRequest) (*TokenSet, *Identity, error) {
	redirectURI := req.RedirectURI
	if redirectURI == "" {
		redirectURI = m.cfg.RedirectURI
	}
	tokens, err := m.exchange(ctx, map[string]string{
		"grant_type":   "authorization_code",
		"code":         req.Code,
		"redirect_uri": redirectURI,
	})
	if err != nil {
		return nil, nil, err
	}
	return tokens, &Identity{AccountName: req.AccountName}, nil
}

func (m *Magalu) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	return m.exchange(ctx, map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
}

// ==================== Portfolio ====================

// Publish is not supported: Magalu listings enter the portfolio through the
// seller panel import, after which price/stock updates are keyed by SKU.
func (m *Magalu) Publish(_ context.Context, _ *model.Product, _ *model.Integration, _ string, _ PublishFields) (*PublishResult, error) {
	return nil, &ValidationError{Msg: "magalu listings are imported from the seller portfolio; publish is not available"}
}

// UpdatePriceAndStock issues the two portfolio PUTs independently. A price
// rejection never suppresses the stock attempt, and vice versa.
func (m *Magalu) UpdatePriceAndStock(ctx context.Context, product *model.Product, listing *model.ProductListing, _ *model.Integration, accessToken string) *Outcome {
	outcome := &Outcome{}
	sku := listing.PlatformProductID

	priceCents := product.SellingPrice.Mul(decimalHundred).IntPart()
	resp, err := m.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(map[string]interface{}{
			"list_price": priceCents,
			"price":      priceCents,
		}).
		Put("/seller/v1/portfolios/prices/" + sku)
	switch {
	case err != nil:
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("price update: %v", err))
	case resp.IsError():
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("price update (status %d): %s", resp.StatusCode(), resp.String()))
	default:
		outcome.PriceUpdated = true
	}

	resp, err = m.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(map[string]interface{}{"quantity": product.Stock}).
		Put("/seller/v1/portfolios/stocks/" + sku)
	switch {
	case err != nil:
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("stock update: %v", err))
	case resp.IsError():
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("stock update (status %d): %s", resp.StatusCode(), resp.String()))
	default:
		outcome.StockUpdated = true
	}

	return outcome
}
