package platform

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"sellerhub/internal/config"
	"sellerhub/internal/model"
	"sellerhub/pkg/utils"
)

const (
	mlAPIBase  = "https://api.mercadolibre.com"
	mlTitleMax = 60
)

// MercadoLivre implements both the marketplace adapter and the OAuth provider
// for Mercado Livre. Exchange uses PKCE; the verifier travels in the request.
type MercadoLivre struct {
	cfg    config.MercadoLivreConfig
	client *resty.Client
	logger *zap.Logger
}

func NewMercadoLivre(cfg config.MercadoLivreConfig, logger *zap.Logger) *MercadoLivre {
	return &MercadoLivre{
		cfg:    cfg,
		client: utils.NewAPIClient(mlAPIBase, 0),
		logger: logger,
	}
}

// WithBaseURL points the adapter at a different host. Test hook.
func (m *MercadoLivre) WithBaseURL(u string) *MercadoLivre {
	m.client.SetBaseURL(u)
	return m
}

func (m *MercadoLivre) Platform() string { return model.PlatformMercadoLivre }

func (m *MercadoLivre) ConflictPolicy() ConflictPolicy { return ConflictAllowMultiple }

func (m *MercadoLivre) Configured() error {
	if m.cfg.ClientID == "" || m.cfg.ClientSecret == "" {
		return fmt.Errorf("mercadolivre: %w", ErrNotConfigured)
	}
	return nil
}

// ==================== OAuth ====================

type mlTokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       int64  `json:"user_id"`
}

func (m *MercadoLivre) ExchangeCode(ctx context.Context, req ExchangeRequest) (*TokenSet, *Identity, error) {
	redirectURI := req.RedirectURI
	if redirectURI == "" {
		redirectURI = m.cfg.RedirectURI
	}

	form := map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     m.cfg.ClientID,
		"client_secret": m.cfg.ClientSecret,
		"code":          req.Code,
		"redirect_uri":  redirectURI,
	}
	if req.CodeVerifier != "" {
		form["code_verifier"] = req.CodeVerifier
	}

	var out mlTokenResp
	resp, err := m.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		Post("/oauth/token")
	if err != nil {
		return nil, nil, fmt.Errorf("mercadolivre token exchange: %w", err)
	}
	if resp.IsError() {
		return nil, nil, &APIError{Platform: m.Platform(), StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	identity := &Identity{
		AccountName:    req.AccountName,
		ExternalUserID: strconv.FormatInt(out.UserID, 10),
	}
	return &TokenSet{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    out.ExpiresIn,
	}, identity, nil
}

func (m *MercadoLivre) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	var out mlTokenResp
	resp, err := m.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"client_id":     m.cfg.ClientID,
			"client_secret": m.cfg.ClientSecret,
			"refresh_token": refreshToken,
		}).
		SetResult(&out).
		Post("/oauth/token")
	if err != nil {
		return nil, fmt.Errorf("mercadolivre token refresh: %w", err)
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

// AuthorizationURL builds the consent URL for the PKCE flow.
func (m *MercadoLivre) AuthorizationURL(state, codeChallenge string) string {
	return fmt.Sprintf(
		"https://auth.mercadolivre.com.br/authorization?response_type=code&client_id=%s&redirect_uri=%s&state=%s&code_challenge=%s&code_challenge_method=S256",
		m.cfg.ClientID, m.cfg.RedirectURI, state, codeChallenge,
	)
}

// ==================== Catalog ====================

type mlItemResp struct {
	ID        string `json:"id"`
	Permalink string `json:"permalink"`
}

// Publish creates an item. ML returns an opaque downstream error when the
// category is missing, so that is rejected up front.
func (m *MercadoLivre) Publish(ctx context.Context, product *model.Product, _ *model.Integration, accessToken string, fields PublishFields) (*PublishResult, error) {
	if fields.CategoryID == "" {
		return nil, &ValidationError{Msg: "select a category before publishing to Mercado Livre"}
	}

	title := product.Name
	if len(title) > mlTitleMax {
		title = title[:mlTitleMax]
	}

	pictures := make([]map[string]string, 0, len(product.Images))
	for _, img := range product.Images {
		pictures = append(pictures, map[string]string{"source": img})
	}

	listingType := fields.ListingType
	if listingType == "" {
		listingType = "gold_special"
	}

	payload := map[string]interface{}{
		"title":              title,
		"category_id":        fields.CategoryID,
		"price":              product.SellingPrice.InexactFloat64(),
		"currency_id":        "BRL",
		"available_quantity": product.Stock,
		"condition":          product.Condition,
		"listing_type_id":    listingType,
		"pictures":           pictures,
	}

	var out mlItemResp
	resp, err := m.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(payload).
		SetResult(&out).
		Post("/items")
	if err != nil {
		return nil, fmt.Errorf("mercadolivre publish: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Platform: m.Platform(), StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return &PublishResult{
		PlatformProductID: out.ID,
		PlatformURL:       out.Permalink,
	}, nil
}

// UpdatePriceAndStock sends price and quantity in one PUT; ML has a single
// item-update endpoint.
func (m *MercadoLivre) UpdatePriceAndStock(ctx context.Context, product *model.Product, listing *model.ProductListing, _ *model.Integration, accessToken string) *Outcome {
	outcome := &Outcome{}

	resp, err := m.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(map[string]interface{}{
			"price":              product.SellingPrice.InexactFloat64(),
			"available_quantity": product.Stock,
		}).
		Put("/items/" + listing.PlatformProductID)

	switch {
	case err != nil:
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("item update: %v", err))
	case resp.IsError():
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("item update (status %d): %s", resp.StatusCode(), resp.String()))
	default:
		outcome.PriceUpdated = true
		outcome.StockUpdated = true
	}
	return outcome
}
