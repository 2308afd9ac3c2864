package platform

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"sellerhub/internal/config"
	"sellerhub/internal/model"
)

func testML(t *testing.T, handler http.HandlerFunc) *MercadoLivre {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewMercadoLivre(config.MercadoLivreConfig{
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		RedirectURI:  "https://example.com/callback",
	}, testLogger()).WithBaseURL(srv.URL)
}

func TestMercadoLivre_ExchangeCodeSendsVerifier(t *testing.T) {
	var form map[string][]string
	ml := testML(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		r.ParseForm()
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"APP_USR-access","refresh_token":"TG-refresh","expires_in":21600,"user_id":123456}`))
	})

	tokens, identity, err := ml.ExchangeCode(context.Background(), ExchangeRequest{
		Code:         "TG-code",
		CodeVerifier: "the-verifier",
	})
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}

	if got := form["code_verifier"]; len(got) != 1 || got[0] != "the-verifier" {
		t.Errorf("code_verifier form field = %v", got)
	}
	if got := form["grant_type"]; len(got) != 1 || got[0] != "authorization_code" {
		t.Errorf("grant_type form field = %v", got)
	}
	if tokens.AccessToken != "APP_USR-access" || tokens.RefreshToken != "TG-refresh" {
		t.Errorf("tokens = %+v", tokens)
	}
	if tokens.ExpiresIn != 21600 {
		t.Errorf("ExpiresIn = %d", tokens.ExpiresIn)
	}
	if identity.ExternalUserID != "123456" {
		t.Errorf("ExternalUserID = %q", identity.ExternalUserID)
	}
}

func TestMercadoLivre_ExchangeCodeUpstreamError(t *testing.T) {
	ml := testML(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","message":"Error validating grant"}`))
	})

	_, _, err := ml.ExchangeCode(context.Background(), ExchangeRequest{Code: "bad"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	// The upstream body must come through verbatim.
	if !strings.Contains(apiErr.Body, "Error validating grant") {
		t.Errorf("Body = %q", apiErr.Body)
	}
}

func TestMercadoLivre_PublishRequiresCategory(t *testing.T) {
	ml := testML(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the API without a category")
	})

	_, err := ml.Publish(context.Background(), &model.Product{Name: "Camiseta"}, nil, "token", PublishFields{})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestMercadoLivre_PublishTruncatesTitle(t *testing.T) {
	var payload map[string]interface{}
	ml := testML(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &payload)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"MLB123","permalink":"https://produto.mercadolivre.com.br/MLB123"}`))
	})

	longName := strings.Repeat("Camiseta Basica ", 10)
	product := &model.Product{
		Name:         longName,
		SKU:          "CAM-001",
		Stock:        5,
		SellingPrice: decimal.NewFromFloat(29.9),
		Condition:    "new",
	}

	result, err := ml.Publish(context.Background(), product, nil, "token", PublishFields{CategoryID: "MLB1430"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	title, _ := payload["title"].(string)
	if len(title) != mlTitleMax {
		t.Errorf("title length = %d, want %d", len(title), mlTitleMax)
	}
	if payload["currency_id"] != "BRL" {
		t.Errorf("currency_id = %v", payload["currency_id"])
	}
	if payload["listing_type_id"] != "gold_special" {
		t.Errorf("listing_type_id = %v", payload["listing_type_id"])
	}
	if result.PlatformProductID != "MLB123" {
		t.Errorf("PlatformProductID = %q", result.PlatformProductID)
	}
	if result.PlatformURL == "" {
		t.Error("PlatformURL empty")
	}
}

func TestMercadoLivre_UpdatePriceAndStock(t *testing.T) {
	var path string
	var payload map[string]interface{}
	ml := testML(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusOK)
	})

	product := &model.Product{Stock: 7, SellingPrice: decimal.NewFromFloat(49.9)}
	listing := &model.ProductListing{PlatformProductID: "MLB999"}

	outcome := ml.UpdatePriceAndStock(context.Background(), product, listing, nil, "token")
	if outcome.Failed() {
		t.Fatalf("outcome errors = %v", outcome.Errors)
	}
	if !outcome.PriceUpdated || !outcome.StockUpdated {
		t.Error("both fields should be marked updated on the single-call platform")
	}
	if path != "/items/MLB999" {
		t.Errorf("path = %q", path)
	}
	if payload["available_quantity"].(float64) != 7 {
		t.Errorf("available_quantity = %v", payload["available_quantity"])
	}
}
