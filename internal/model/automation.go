package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Automation rule types
const (
	RuleTypePauseZeroStock = "pause_zero_stock"
	RuleTypeLowStockAlert  = "low_stock_alert"
	RuleTypeLowMarginAlert = "low_margin_alert"
)

// AutomationRule is a standing condition evaluated periodically against an
// organization's products. last_triggered_at is updated only when a pass
// actually produced at least one action.
type AutomationRule struct {
	BaseModel
	OrganizationID int64  `gorm:"index;not null"`
	UserID         int64  `gorm:"index;not null"`
	RuleType       string `gorm:"size:30;index;not null"`
	IsActive       bool   `gorm:"default:true;index"`

	// Rule-type-specific settings, e.g. {"threshold": 5} or {"min_margin": 20}.
	Config datatypes.JSON `gorm:"type:jsonb"`

	LastTriggeredAt *time.Time
}

func (AutomationRule) TableName() string {
	return "automation_rules"
}

// RuleConfig is the decoded shape of AutomationRule.Config.
type RuleConfig struct {
	Threshold int     `json:"threshold"`  // low_stock_alert
	MinMargin float64 `json:"min_margin"` // low_margin_alert, percent
}

// DecodeConfig parses Config, falling back to zero values when absent.
func (r *AutomationRule) DecodeConfig() RuleConfig {
	var cfg RuleConfig
	if len(r.Config) > 0 {
		_ = json.Unmarshal(r.Config, &cfg)
	}
	return cfg
}

// AutomationLog is an append-only audit record, one per action taken.
type AutomationLog struct {
	ID               int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	AutomationRuleID int64     `gorm:"index;not null" json:"automation_rule_id"`
	OrganizationID   int64     `gorm:"index" json:"organization_id"`
	ActionTaken      string    `gorm:"size:50;not null" json:"action_taken"`
	Details          string    `gorm:"type:text" json:"details"`
	CreatedAt        time.Time `json:"created_at"`
}

func (AutomationLog) TableName() string {
	return "automation_logs"
}
