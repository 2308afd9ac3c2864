package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sellerhub/internal/config"
	"sellerhub/internal/model"
)

// ErrNotConfigured signals missing server-side platform credentials. Handlers
// must answer 500 "configuration error" and never leak which secret is absent.
var ErrNotConfigured = errors.New("platform credentials not configured")

// ValidationError is a pre-flight rejection with a human-actionable message,
// raised before any external call is made.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// APIError carries the upstream platform's status and body verbatim so
// operators can see exactly what the marketplace said. Never retried inline.
type APIError struct {
	Platform   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Platform, e.StatusCode, e.Body)
}

// ConflictPolicy decides what happens when an OAuth completion finds an
// equivalent Integration already persisted.
type ConflictPolicy int

const (
	// ConflictAllowMultiple inserts a new row; several accounts per
	// platform are fine.
	ConflictAllowMultiple ConflictPolicy = iota
	// ConflictReplace upserts on (user, platform); reconnecting replaces
	// the prior single account (Shopify).
	ConflictReplace
	// ConflictRejectDuplicate refuses a second row with the same external
	// seller id for the same user (Amazon).
	ConflictRejectDuplicate
)

// TokenSet is the result of a token-endpoint exchange.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // seconds; zero for non-expiring tokens
}

// Identity is the platform-specific external identity attached to an
// Integration row.
type Identity struct {
	AccountName      string
	SellingPartnerID string
	ShopDomain       string
	MarketplaceID    string
	ExternalUserID   string
}

// ExchangeRequest is the polymorphic input to an OAuth exchange.
type ExchangeRequest struct {
	Code         string
	RedirectURI  string
	CodeVerifier string
	RefreshToken string // self-authorization: user-supplied long-lived token
	ShopDomain   string
	// Amazon passes the seller identity alongside the consent code.
	SellingPartnerID string
	AccountName      string
}

// OAuthProvider exchanges authorization codes for tokens at one platform's
// token endpoint. Exchanges are never retried: authorization codes are
// single-use.
type OAuthProvider interface {
	Platform() string
	ConflictPolicy() ConflictPolicy
	// Configured reports ErrNotConfigured when required server-side
	// credentials are missing.
	Configured() error
	ExchangeCode(ctx context.Context, req ExchangeRequest) (*TokenSet, *Identity, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
}

// SelfAuthorizer is the OAuth variant where the seller supplies a
// pre-generated long-lived token instead of completing a consent flow.
type SelfAuthorizer interface {
	SelfAuthorize(ctx context.Context, req ExchangeRequest) (*TokenSet, *Identity, error)
}

// RedirectAuthorizer is implemented by providers whose consent happens in
// the seller's browser and lands back on the public callback route.
// Providers that do not use PKCE ignore the code challenge.
type RedirectAuthorizer interface {
	AuthorizationURL(state, codeChallenge string) string
}

// PublishFields carries the platform-specific knobs needed to create a
// listing that the canonical Product does not model.
type PublishFields struct {
	CategoryID  string // Mercado Livre taxonomy id, required there
	ListingType string
	Description string
}

// PublishResult identifies the freshly created external listing.
type PublishResult struct {
	PlatformProductID string
	PlatformVariantID string
	PlatformURL       string
}

// Outcome aggregates one update attempt. Price and stock are attempted
// independently; one failure never suppresses the other attempt.
type Outcome struct {
	PriceUpdated bool
	StockUpdated bool
	Errors       []string
}

func (o *Outcome) Failed() bool { return len(o.Errors) > 0 }

// JoinedErrors renders Errors for the listing's sync_error column.
func (o *Outcome) JoinedErrors() string { return strings.Join(o.Errors, "; ") }

// MarketplaceAdapter translates the canonical Product into one platform's
// create/update payloads and calls its REST API. The decrypted access token
// is handed in by the caller immediately before the call and is never stored.
type MarketplaceAdapter interface {
	Platform() string
	Publish(ctx context.Context, product *model.Product, integration *model.Integration, accessToken string, fields PublishFields) (*PublishResult, error)
	UpdatePriceAndStock(ctx context.Context, product *model.Product, listing *model.ProductListing, integration *model.Integration, accessToken string) *Outcome
}

// ==================== Registry ====================

// Registry maps platform tags to adapter and OAuth-provider implementations.
// Adding a platform means adding one implementation, not touching a switch.
type Registry struct {
	adapters  map[string]MarketplaceAdapter
	providers map[string]OAuthProvider
}

// NewRegistry wires every supported platform with its injected credentials.
func NewRegistry(cfg *config.Config, logger *zap.Logger) *Registry {
	r := &Registry{
		adapters:  make(map[string]MarketplaceAdapter),
		providers: make(map[string]OAuthProvider),
	}

	ml := NewMercadoLivre(cfg.MercadoLivre, logger)
	r.RegisterAdapter(ml)
	r.RegisterProvider(ml)

	amz := NewAmazon(cfg.Amazon, logger)
	r.RegisterAdapter(amz)
	r.RegisterProvider(amz)

	shp := NewShopify(cfg.Shopify, logger)
	r.RegisterAdapter(shp)
	r.RegisterProvider(shp)

	tts := NewTikTokShop(cfg.TikTokShop, logger)
	r.RegisterAdapter(tts)
	r.RegisterProvider(tts)

	r.RegisterProvider(NewTikTokAds(cfg.TikTokAds, logger))

	mgl := NewMagalu(cfg.Magalu, logger)
	r.RegisterAdapter(mgl)
	r.RegisterProvider(mgl)

	return r
}

func (r *Registry) RegisterAdapter(a MarketplaceAdapter) {
	r.adapters[a.Platform()] = a
}

func (r *Registry) RegisterProvider(p OAuthProvider) {
	r.providers[p.Platform()] = p
}

func (r *Registry) Adapter(platform string) (MarketplaceAdapter, bool) {
	a, ok := r.adapters[platform]
	return a, ok
}

func (r *Registry) Provider(platform string) (OAuthProvider, bool) {
	p, ok := r.providers[platform]
	return p, ok
}
