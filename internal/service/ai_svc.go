package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sellerhub/internal/platform"
	"sellerhub/internal/repository"
)

const (
	defaultGeminiBase  = "https://generativelanguage.googleapis.com"
	defaultGeminiModel = "gemini-2.0-flash"
)

// assistantInstruction teaches the model the action protocol. Proposals come
// back as fenced blocks that ParseActions lifts out of the prose.
const assistantInstruction = `You are a pricing and inventory assistant for an e-commerce seller managing listings across Mercado Livre, Amazon, Shopify, TikTok Shop and Magalu.

Answer in the seller's language. When the seller asks you to change a price or stock level, do not pretend the change happened. Instead, append one action block per change, in exactly this format:

:::action
{"type": "update_price", "product_id": "<id>", "sku": "<sku>", "product_name": "<name>", "new_value": 19.9, "label": "Adjust price of <name> to R$ 19.90"}
:::

Valid types are "update_price" and "update_stock". new_value is the new price in the store currency or the new absolute stock quantity. The label is a short imperative sentence shown on the confirmation button. Never invent product ids; use only the catalog provided below.`

// ==================== Service ====================

// AIService talks to Gemini and turns replies into text plus confirmable
// actions. The model never mutates anything; every proposal goes back to the
// client as an AIAction awaiting explicit confirmation.
type AIService struct {
	apiKey      string
	model       string
	baseURL     string
	productRepo repository.ProductRepository
	logger      *zap.Logger
	httpClient  *http.Client
}

func NewAIService(apiKey string, productRepo repository.ProductRepository, logger *zap.Logger) *AIService {
	return &AIService{
		apiKey:      apiKey,
		model:       defaultGeminiModel,
		baseURL:     defaultGeminiBase,
		productRepo: productRepo,
		logger:      logger,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// WithBaseURL redirects Gemini calls, for tests.
func (s *AIService) WithBaseURL(u string) *AIService {
	s.baseURL = u
	return s
}

// ChatMessage is one turn of the conversation, role "user" or "model".
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatResult is the parsed assistant reply.
type ChatResult struct {
	Reply   string     `json:"reply"`
	Actions []AIAction `json:"actions"`
}

// Chat sends the conversation plus a catalog snapshot to Gemini and parses
// action blocks out of the reply.
func (s *AIService) Chat(ctx context.Context, userID, organizationID int64, history []ChatMessage, message string) (*ChatResult, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}

	catalog, err := s.catalogSnapshot(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	raw, err := s.generate(ctx, catalog, history, message)
	if err != nil {
		return nil, err
	}

	reply, actions := ParseActions(raw)
	s.logger.Info("assistant reply",
		zap.Int64("user_id", userID),
		zap.Int("actions", len(actions)))
	return &ChatResult{Reply: reply, Actions: actions}, nil
}

// catalogSnapshot renders the org's products as plain text context. Tokens
// and platform credentials never enter the prompt.
func (s *AIService) catalogSnapshot(ctx context.Context, organizationID int64) (string, error) {
	products, err := s.productRepo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return "The seller has no products yet.", nil
	}

	var b strings.Builder
	b.WriteString("Catalog:\n")
	for i := range products {
		p := &products[i]
		fmt.Fprintf(&b, "- id=%d sku=%s name=%q price=%s cost=%s stock=%d margin=%s%%\n",
			p.ID, p.SKU, p.Name,
			p.SellingPrice.StringFixed(2), p.CostPrice.StringFixed(2),
			p.Stock, p.Margin().StringFixed(1))
	}
	return b.String(), nil
}

func (s *AIService) generate(ctx context.Context, catalog string, history []ChatMessage, message string) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)

	contents := make([]map[string]interface{}, 0, len(history)+1)
	for _, h := range history {
		role := h.Role
		if role != "model" {
			role = "user"
		}
		contents = append(contents, map[string]interface{}{
			"role":  role,
			"parts": []map[string]interface{}{{"text": h.Text}},
		})
	}
	contents = append(contents, map[string]interface{}{
		"role":  "user",
		"parts": []map[string]interface{}{{"text": message}},
	})

	reqBody := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]interface{}{
				{"text": assistantInstruction},
				{"text": catalog},
			},
		},
		"contents": contents,
	}

	bodyBytes, _ := json.Marshal(reqBody)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini api error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}
	if len(geminiResp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}

// ==================== Action execution ====================

// ExecuteAction runs one confirmed action through the sync orchestrator so
// the canonical write and the platform fan-out follow the normal path.
func (s *AIService) ExecuteAction(ctx context.Context, userID int64, action AIAction, syncSvc *SyncService) (*SyncReport, error) {
	var productID int64
	if _, err := fmt.Sscanf(action.ProductID, "%d", &productID); err != nil {
		return nil, fmt.Errorf("invalid product id %q", action.ProductID)
	}

	in, err := SyncUpdateFromAction(userID, productID, action)
	if err != nil {
		return nil, err
	}
	return syncSvc.UpdateProduct(ctx, in)
}

// SyncUpdateFromAction maps an AI proposal onto the orchestrator's input.
// Stock proposals must be whole numbers; truncating a fractional value would
// silently apply a different quantity than the seller confirmed.
func SyncUpdateFromAction(userID, productID int64, action AIAction) (UpdateProductInput, error) {
	in := UpdateProductInput{UserID: userID, ProductID: productID}
	switch action.Type {
	case AIActionUpdatePrice:
		price := decimal.NewFromFloat(action.NewValue)
		in.Price = &price
	case AIActionUpdateStock:
		if action.NewValue != math.Trunc(action.NewValue) {
			return in, &platform.ValidationError{Msg: fmt.Sprintf("stock must be a whole number, got %v", action.NewValue)}
		}
		stock := int(action.NewValue)
		in.Stock = &stock
	}
	return in, nil
}
