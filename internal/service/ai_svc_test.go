package service

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

	"sellerhub/internal/model"
	"sellerhub/internal/platform"
	"sellerhub/internal/repository"
)

func TestAIService_ChatParsesActions(t *testing.T) {
	var reqBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &reqBody)

		reply := "Posso ajustar o preço.\n\n:::action\n{\"type\": \"update_price\", \"product_id\": \"1\", \"sku\": \"CAM-001\", \"new_value\": 19.9, \"label\": \"Ajustar preço para R$ 19,90\"}\n:::"
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": reply}},
				},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	db := setupTestDB(t)
	db.Create(&model.Product{
		UserID: 1, OrganizationID: 1, Name: "Camiseta", SKU: "CAM-001",
		Stock: 10, SellingPrice: decimal.NewFromFloat(29.9),
	})

	svc := NewAIService("test-key", repository.NewProductRepository(db), testLogger()).WithBaseURL(srv.URL)

	result, err := svc.Chat(context.Background(), 1, 1, nil, "baixa o preço da camiseta")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if strings.Contains(result.Reply, ":::") {
		t.Errorf("reply still contains action markup: %q", result.Reply)
	}
	if len(result.Actions) != 1 {
		t.Fatalf("actions = %d, want 1", len(result.Actions))
	}
	if result.Actions[0].NewValue != 19.9 {
		t.Errorf("NewValue = %v", result.Actions[0].NewValue)
	}

	// The catalog snapshot travels in the system instruction, never any
	// credentials.
	raw, _ := json.Marshal(reqBody)
	if !strings.Contains(string(raw), "CAM-001") {
		t.Error("catalog snapshot missing from prompt")
	}
}

func TestAIService_ChatRequiresKey(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAIService("", repository.NewProductRepository(db), testLogger())

	if _, err := svc.Chat(context.Background(), 1, 1, nil, "oi"); err == nil {
		t.Fatal("Chat() without api key expected error")
	}
}

func TestSyncUpdateFromAction_FractionalStockRejected(t *testing.T) {
	_, err := SyncUpdateFromAction(1, 10, AIAction{Type: AIActionUpdateStock, ProductID: "10", NewValue: 4.9})
	var validationErr *platform.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("SyncUpdateFromAction() error = %v, want ValidationError", err)
	}

	in, err := SyncUpdateFromAction(1, 10, AIAction{Type: AIActionUpdateStock, ProductID: "10", NewValue: 4})
	if err != nil {
		t.Fatalf("SyncUpdateFromAction() error = %v", err)
	}
	if in.Stock == nil || *in.Stock != 4 {
		t.Errorf("Stock = %v, want 4", in.Stock)
	}
}

func TestSyncUpdateFromAction_PriceKeepsFraction(t *testing.T) {
	in, err := SyncUpdateFromAction(1, 10, AIAction{Type: AIActionUpdatePrice, ProductID: "10", NewValue: 19.9})
	if err != nil {
		t.Fatalf("SyncUpdateFromAction() error = %v", err)
	}
	if in.Price == nil || !in.Price.Equal(decimal.NewFromFloat(19.9)) {
		t.Errorf("Price = %v, want 19.9", in.Price)
	}
}
