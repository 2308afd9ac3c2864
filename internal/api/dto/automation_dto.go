package dto

import "encoding/json"

type CreateRuleReq struct {
	RuleType string          `json:"rule_type" binding:"required"`
	Config   json.RawMessage `json:"config"`
}

type SetRuleActiveReq struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
