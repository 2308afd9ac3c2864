package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sellerhub/internal/model"
	"sellerhub/internal/repository"
)

const defaultLowStockThreshold = 5

// AutomationService evaluates standing rules against an organization's
// products. Evaluation is read-mostly: a pass loads each org's products once
// and runs every rule of that org against the same snapshot. Alert rules
// dedup through NotificationService; an action is only counted when it had
// an observable effect.
type AutomationService struct {
	ruleRepo    repository.AutomationRuleRepository
	logRepo     repository.AutomationLogRepository
	productRepo repository.ProductRepository
	listingRepo repository.ListingRepository
	notifier    *NotificationService
	logger      *zap.Logger
}

func NewAutomationService(
	ruleRepo repository.AutomationRuleRepository,
	logRepo repository.AutomationLogRepository,
	productRepo repository.ProductRepository,
	listingRepo repository.ListingRepository,
	notifier *NotificationService,
	logger *zap.Logger,
) *AutomationService {
	return &AutomationService{
		ruleRepo:    ruleRepo,
		logRepo:     logRepo,
		productRepo: productRepo,
		listingRepo: listingRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// ==================== Rule CRUD ====================

func (s *AutomationService) CreateRule(ctx context.Context, rule *model.AutomationRule) error {
	switch rule.RuleType {
	case model.RuleTypePauseZeroStock, model.RuleTypeLowStockAlert, model.RuleTypeLowMarginAlert:
	default:
		return fmt.Errorf("unknown rule type: %s", rule.RuleType)
	}
	return s.ruleRepo.Create(ctx, rule)
}

func (s *AutomationService) ListRules(ctx context.Context, organizationID int64) ([]model.AutomationRule, error) {
	return s.ruleRepo.ListByOrganization(ctx, organizationID)
}

func (s *AutomationService) SetRuleActive(ctx context.Context, id int64, active bool) error {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	rule.IsActive = active
	return s.ruleRepo.Update(ctx, rule)
}

func (s *AutomationService) DeleteRule(ctx context.Context, id int64) error {
	return s.ruleRepo.Delete(ctx, id)
}

func (s *AutomationService) RuleHistory(ctx context.Context, ruleID int64, limit int) ([]model.AutomationLog, error) {
	return s.logRepo.ListByRule(ctx, ruleID, limit)
}

// ==================== Evaluation pass ====================

// RunPass evaluates every active rule. Rules are grouped by organization so
// each org's product set is loaded once. A failing rule never stops the pass.
func (s *AutomationService) RunPass(ctx context.Context) {
	rules, err := s.ruleRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("automation pass aborted: cannot list rules", zap.Error(err))
		return
	}
	if len(rules) == 0 {
		return
	}

	var (
		orgID    int64 = -1
		products []model.Product
	)
	for i := range rules {
		rule := &rules[i]
		if rule.OrganizationID != orgID {
			orgID = rule.OrganizationID
			products, err = s.productRepo.ListByOrganization(ctx, orgID)
			if err != nil {
				s.logger.Error("automation pass: cannot load products",
					zap.Int64("organization_id", orgID), zap.Error(err))
				products = nil
			}
		}
		if products == nil {
			continue
		}

		actions, err := s.evaluateRule(ctx, rule, products)
		if err != nil {
			s.logger.Error("rule evaluation failed",
				zap.Int64("rule_id", rule.ID),
				zap.String("rule_type", rule.RuleType),
				zap.Error(err))
			continue
		}
		if actions > 0 {
			if err := s.ruleRepo.TouchLastTriggered(ctx, rule.ID, time.Now()); err != nil {
				s.logger.Warn("failed to stamp rule trigger", zap.Int64("rule_id", rule.ID), zap.Error(err))
			}
		}
	}
}

// evaluateRule returns the number of actions actually taken.
func (s *AutomationService) evaluateRule(ctx context.Context, rule *model.AutomationRule, products []model.Product) (int, error) {
	switch rule.RuleType {
	case model.RuleTypePauseZeroStock:
		return s.evalPauseZeroStock(ctx, rule, products)
	case model.RuleTypeLowStockAlert:
		return s.evalLowStockAlert(ctx, rule, products)
	case model.RuleTypeLowMarginAlert:
		return s.evalLowMarginAlert(ctx, rule, products)
	default:
		return 0, fmt.Errorf("unknown rule type: %s", rule.RuleType)
	}
}

func (s *AutomationService) evalPauseZeroStock(ctx context.Context, rule *model.AutomationRule, products []model.Product) (int, error) {
	actions := 0
	for i := range products {
		p := &products[i]
		if p.Stock > 0 {
			continue
		}
		paused, err := s.listingRepo.PauseByProduct(ctx, p.ID)
		if err != nil {
			s.logger.Warn("pause_zero_stock: failed to pause listings",
				zap.Int64("product_id", p.ID), zap.Error(err))
			continue
		}
		// Already-paused products produce no new action.
		if paused == 0 {
			continue
		}
		actions++
		s.appendLog(ctx, rule, "paused_listings",
			fmt.Sprintf("paused %d listing(s) of %q (SKU %s): stock reached zero", paused, p.Name, p.SKU))
		if _, err := s.notifier.Notify(ctx, rule.UserID, model.NotificationTypeZeroStock,
			fmt.Sprintf("Listings paused: %s", p.Name),
			fmt.Sprintf("All listings of %q were paused because stock reached zero.", p.Name)); err != nil {
			s.logger.Warn("pause_zero_stock: notification failed", zap.Error(err))
		}
	}
	return actions, nil
}

func (s *AutomationService) evalLowStockAlert(ctx context.Context, rule *model.AutomationRule, products []model.Product) (int, error) {
	threshold := rule.DecodeConfig().Threshold
	if threshold <= 0 {
		threshold = defaultLowStockThreshold
	}

	actions := 0
	for i := range products {
		p := &products[i]
		if p.Stock >= threshold {
			continue
		}
		created, err := s.notifier.Notify(ctx, rule.UserID, model.NotificationTypeLowStock,
			fmt.Sprintf("Low stock: %s", p.Name),
			fmt.Sprintf("%q (SKU %s) has %d unit(s) left, below the threshold of %d.", p.Name, p.SKU, p.Stock, threshold))
		if err != nil {
			s.logger.Warn("low_stock_alert: notification failed", zap.Error(err))
			continue
		}
		// Deduped notifications are not new actions.
		if !created {
			continue
		}
		actions++
		s.appendLog(ctx, rule, "notified_low_stock",
			fmt.Sprintf("notified low stock for %q (SKU %s): %d < %d", p.Name, p.SKU, p.Stock, threshold))
	}
	return actions, nil
}

func (s *AutomationService) evalLowMarginAlert(ctx context.Context, rule *model.AutomationRule, products []model.Product) (int, error) {
	minMargin := decimal.NewFromFloat(rule.DecodeConfig().MinMargin)
	if minMargin.IsZero() {
		return 0, nil
	}

	actions := 0
	for i := range products {
		p := &products[i]
		// Products without a price carry no margin signal.
		if p.SellingPrice.IsZero() {
			continue
		}
		margin := p.Margin()
		if margin.GreaterThanOrEqual(minMargin) {
			continue
		}
		created, err := s.notifier.Notify(ctx, rule.UserID, model.NotificationTypeLowMargin,
			fmt.Sprintf("Low margin: %s", p.Name),
			fmt.Sprintf("%q (SKU %s) has a margin of %s%%, below the minimum of %s%%.",
				p.Name, p.SKU, margin.StringFixed(1), minMargin.StringFixed(1)))
		if err != nil {
			s.logger.Warn("low_margin_alert: notification failed", zap.Error(err))
			continue
		}
		if !created {
			continue
		}
		actions++
		s.appendLog(ctx, rule, "notified_low_margin",
			fmt.Sprintf("notified low margin for %q (SKU %s): %s%% < %s%%",
				p.Name, p.SKU, margin.StringFixed(1), minMargin.StringFixed(1)))
	}
	return actions, nil
}

func (s *AutomationService) appendLog(ctx context.Context, rule *model.AutomationRule, action, details string) {
	entry := &model.AutomationLog{
		AutomationRuleID: rule.ID,
		OrganizationID:   rule.OrganizationID,
		ActionTaken:      action,
		Details:          details,
	}
	if err := s.logRepo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append automation log", zap.Int64("rule_id", rule.ID), zap.Error(err))
	}
}
