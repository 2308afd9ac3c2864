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

func testMagalu(t *testing.T, handler http.HandlerFunc) *Magalu {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewMagalu(config.MagaluConfig{
		ClientID:     "id",
		ClientSecret: "secret",
	}, testLogger()).WithBaseURL(srv.URL)
}

func TestMagalu_PriceFailureDoesNotSuppressStock(t *testing.T) {
	var stockCalled bool
	mgl := testMagalu(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/seller/v1/portfolios/prices/"):
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"price below minimum"}`))
		case strings.HasPrefix(r.URL.Path, "/seller/v1/portfolios/stocks/"):
			stockCalled = true
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	product := &model.Product{Stock: 4, SellingPrice: decimal.NewFromFloat(0.01)}
	listing := &model.ProductListing{PlatformProductID: "CAM-001"}

	outcome := mgl.UpdatePriceAndStock(context.Background(), product, listing, nil, "token")

	if !stockCalled {
		t.Fatal("price failure suppressed the stock attempt")
	}
	if outcome.PriceUpdated {
		t.Error("PriceUpdated = true after a 422")
	}
	if !outcome.StockUpdated {
		t.Error("StockUpdated = false after a 200")
	}
	if len(outcome.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly the price failure", outcome.Errors)
	}
	if !strings.Contains(outcome.Errors[0], "price update") {
		t.Errorf("error = %q, want price detail", outcome.Errors[0])
	}
}

func TestMagalu_BothEndpointsFail(t *testing.T) {
	mgl := testMagalu(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	product := &model.Product{Stock: 4, SellingPrice: decimal.NewFromFloat(10)}
	listing := &model.ProductListing{PlatformProductID: "CAM-001"}

	outcome := mgl.UpdatePriceAndStock(context.Background(), product, listing, nil, "token")
	if len(outcome.Errors) != 2 {
		t.Fatalf("errors = %v, want both failures recorded", outcome.Errors)
	}
	if !outcome.Failed() {
		t.Error("Failed() = false")
	}
}

func TestMagalu_PublishUnsupported(t *testing.T) {
	mgl := NewMagalu(config.MagaluConfig{ClientID: "id", ClientSecret: "secret"}, testLogger())

	_, err := mgl.Publish(context.Background(), &model.Product{Name: "X"}, nil, "token", PublishFields{})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestMagalu_PriceSentAsCents(t *testing.T) {
	var body string
	mgl := testMagalu(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/seller/v1/portfolios/prices/") {
			buf := make([]byte, r.ContentLength)
			r.Body.Read(buf)
			body = string(buf)
		}
		w.WriteHeader(http.StatusOK)
	})

	product := &model.Product{Stock: 1, SellingPrice: decimal.NewFromFloat(19.9)}
	listing := &model.ProductListing{PlatformProductID: "CAM-001"}

	mgl.UpdatePriceAndStock(context.Background(), product, listing, nil, "token")
	if !strings.Contains(body, "1990") {
		t.Errorf("price body = %q, want integer cents 1990", body)
	}
}
