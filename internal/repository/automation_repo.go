package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sellerhub/internal/model"
)

// ==================== Interfaces ====================

// AutomationRuleRepository persists standing rules.
type AutomationRuleRepository interface {
	Create(ctx context.Context, rule *model.AutomationRule) error
	GetByID(ctx context.Context, id int64) (*model.AutomationRule, error)
	Update(ctx context.Context, rule *model.AutomationRule) error
	Delete(ctx context.Context, id int64) error
	ListByOrganization(ctx context.Context, organizationID int64) ([]model.AutomationRule, error)
	// ListActive returns every active rule ordered by organization so a
	// batch pass can group them with one product read per org.
	ListActive(ctx context.Context) ([]model.AutomationRule, error)
	// TouchLastTriggered updates last_triggered_at; called only for passes
	// that produced at least one action.
	TouchLastTriggered(ctx context.Context, id int64, at time.Time) error
}

// AutomationLogRepository is append-only audit: rows are never mutated.
type AutomationLogRepository interface {
	Append(ctx context.Context, entry *model.AutomationLog) error
	ListByRule(ctx context.Context, ruleID int64, limit int) ([]model.AutomationLog, error)
}

// ==================== Implementations ====================

type automationRuleRepo struct {
	db *gorm.DB
}

func NewAutomationRuleRepository(db *gorm.DB) AutomationRuleRepository {
	return &automationRuleRepo{db: db}
}

func (r *automationRuleRepo) Create(ctx context.Context, rule *model.AutomationRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *automationRuleRepo) GetByID(ctx context.Context, id int64) (*model.AutomationRule, error) {
	var rule model.AutomationRule
	if err := r.db.WithContext(ctx).First(&rule, id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *automationRuleRepo) Update(ctx context.Context, rule *model.AutomationRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *automationRuleRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.AutomationRule{}, id).Error
}

func (r *automationRuleRepo) ListByOrganization(ctx context.Context, organizationID int64) ([]model.AutomationRule, error) {
	var rules []model.AutomationRule
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at ASC").
		Find(&rules).Error
	return rules, err
}

func (r *automationRuleRepo) ListActive(ctx context.Context) ([]model.AutomationRule, error) {
	var rules []model.AutomationRule
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("organization_id ASC, id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *automationRuleRepo) TouchLastTriggered(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.AutomationRule{}).
		Where("id = ?", id).
		Update("last_triggered_at", at).Error
}

type automationLogRepo struct {
	db *gorm.DB
}

func NewAutomationLogRepository(db *gorm.DB) AutomationLogRepository {
	return &automationLogRepo{db: db}
}

func (r *automationLogRepo) Append(ctx context.Context, entry *model.AutomationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *automationLogRepo) ListByRule(ctx context.Context, ruleID int64, limit int) ([]model.AutomationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []model.AutomationLog
	err := r.db.WithContext(ctx).
		Where("automation_rule_id = ?", ruleID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
