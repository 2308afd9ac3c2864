package service

import (
	"encoding/json"
	"regexp"
	"strings"
)

// AI action types the assistant may propose. Anything else is dropped.
const (
	AIActionUpdatePrice = "update_price"
	AIActionUpdateStock = "update_stock"
)

// AIAction is one executable proposal embedded in an assistant reply. The
// client renders it as a confirmation button; nothing executes server-side
// until the user explicitly confirms.
type AIAction struct {
	Type        string  `json:"type"`
	ProductID   string  `json:"product_id"`
	SKU         string  `json:"sku,omitempty"`
	ProductName string  `json:"product_name,omitempty"`
	NewValue    float64 `json:"new_value"`
	Label       string  `json:"label"`
}

// actionBlockRe matches a fenced action block. (?s) lets the payload span
// lines; the lazy body stops at the first closing fence.
var actionBlockRe = regexp.MustCompile(`(?s):::action\s*(.*?):::`)

// ParseActions extracts action blocks from an assistant reply. Every block
// is removed from the returned text; only blocks that decode into a valid
// action are kept. Malformed blocks are dropped silently rather than shown
// to the user as raw markup.
func ParseActions(text string) (string, []AIAction) {
	matches := actionBlockRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return strings.TrimSpace(text), nil
	}

	var actions []AIAction
	for _, m := range matches {
		var action AIAction
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &action); err != nil {
			continue
		}
		if !validAction(&action) {
			continue
		}
		actions = append(actions, action)
	}

	clean := actionBlockRe.ReplaceAllString(text, "")
	return strings.TrimSpace(clean), actions
}

func validAction(a *AIAction) bool {
	if a.Type != AIActionUpdatePrice && a.Type != AIActionUpdateStock {
		return false
	}
	return a.ProductID != "" && a.Label != ""
}
