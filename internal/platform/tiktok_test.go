package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"sellerhub/internal/config"
	"sellerhub/internal/model"
)

func testTikTokShop(t *testing.T, handler http.HandlerFunc) *TikTokShop {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewTikTokShop(config.TikTokShopConfig{
		AppKey:    "key",
		AppSecret: "secret",
	}, testLogger()).WithBaseURL(srv.URL)
}

func TestTikTokShop_ExchangeCode(t *testing.T) {
	tts := testTikTokShop(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/token/get" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("grant_type") != "authorized_code" {
			t.Errorf("grant_type = %q", r.URL.Query().Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":0,"message":"success","data":{"access_token":"tts-access","refresh_token":"tts-refresh","access_token_expire_in":86400,"seller_name":"Loja TikTok","open_id":"open-1"}}`))
	})

	tokens, identity, err := tts.ExchangeCode(context.Background(), ExchangeRequest{Code: "auth-code"})
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}
	if tokens.AccessToken != "tts-access" || tokens.ExpiresIn != 86400 {
		t.Errorf("tokens = %+v", tokens)
	}
	if identity.AccountName != "Loja TikTok" || identity.ExternalUserID != "open-1" {
		t.Errorf("identity = %+v", identity)
	}
}

// TikTok signals failure inside a 200 body; code != 0 must still surface as
// an upstream error.
func TestTikTokShop_ErrorEnvelope(t *testing.T) {
	tts := testTikTokShop(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":36004004,"message":"auth_code expired","data":{}}`))
	})

	_, _, err := tts.ExchangeCode(context.Background(), ExchangeRequest{Code: "stale"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if !strings.Contains(apiErr.Body, "auth_code expired") {
		t.Errorf("Body = %q", apiErr.Body)
	}
}

func TestTikTokShop_IndependentPriceAndStock(t *testing.T) {
	var stockCalled bool
	tts := testTikTokShop(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/prices/update"):
			w.Write([]byte(`{"code":12052901,"message":"price out of range","data":{}}`))
		case strings.HasSuffix(r.URL.Path, "/inventory/update"):
			stockCalled = true
			w.Write([]byte(`{"code":0,"message":"success","data":{}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	product := &model.Product{Stock: 3, SellingPrice: decimal.NewFromFloat(9999999)}
	listing := &model.ProductListing{PlatformProductID: "tt-prod", PlatformVariantID: "tt-sku"}

	outcome := tts.UpdatePriceAndStock(context.Background(), product, listing, nil, "token")
	if !stockCalled {
		t.Fatal("price failure suppressed the inventory attempt")
	}
	if outcome.PriceUpdated {
		t.Error("PriceUpdated = true despite error envelope")
	}
	if !outcome.StockUpdated {
		t.Error("StockUpdated = false")
	}
	if len(outcome.Errors) != 1 || !strings.Contains(outcome.Errors[0], "price update") {
		t.Errorf("errors = %v", outcome.Errors)
	}
}

func TestTikTokAds_SelfAuthorize(t *testing.T) {
	ads := NewTikTokAds(config.TikTokAdsConfig{AppID: "app", Secret: "sec"}, testLogger())

	tokens, identity, err := ads.SelfAuthorize(context.Background(), ExchangeRequest{
		RefreshToken: "long-lived-token",
		AccountName:  "Anunciante",
	})
	if err != nil {
		t.Fatalf("SelfAuthorize() error = %v", err)
	}
	if tokens.AccessToken != "long-lived-token" {
		t.Errorf("AccessToken = %q", tokens.AccessToken)
	}
	if tokens.RefreshToken != "" {
		t.Error("ads tokens carry no refresh token")
	}
	if identity.AccountName != "Anunciante" {
		t.Errorf("AccountName = %q", identity.AccountName)
	}

	if _, _, err := ads.SelfAuthorize(context.Background(), ExchangeRequest{}); err == nil {
		t.Error("SelfAuthorize() without a token expected error")
	}

	if _, err := ads.Refresh(context.Background(), "x"); err == nil {
		t.Error("Refresh() expected error for long-lived tokens")
	}
}
