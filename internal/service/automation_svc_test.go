package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sellerhub/internal/model"
	"sellerhub/internal/repository"
)

func newAutomationService(t *testing.T, db *gorm.DB) *AutomationService {
	t.Helper()
	notifier := NewNotificationService(repository.NewNotificationRepository(db), testLogger())
	return NewAutomationService(
		repository.NewAutomationRuleRepository(db),
		repository.NewAutomationLogRepository(db),
		repository.NewProductRepository(db),
		repository.NewListingRepository(db),
		notifier,
		testLogger(),
	)
}

func countRows(t *testing.T, db *gorm.DB, mdl interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(mdl).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestAutomation_LowStockAlert(t *testing.T) {
	db := setupTestDB(t)
	svc := newAutomationService(t, db)
	ctx := context.Background()

	rule := &model.AutomationRule{
		OrganizationID: 1,
		UserID:         1,
		RuleType:       model.RuleTypeLowStockAlert,
		IsActive:       true,
		Config:         datatypes.JSON(`{"threshold": 5}`),
	}
	if err := svc.CreateRule(ctx, rule); err != nil {
		t.Fatalf("CreateRule() error = %v", err)
	}

	db.Create(&model.Product{UserID: 1, OrganizationID: 1, Name: "Caneca", SKU: "CAN-001", Stock: 2})
	db.Create(&model.Product{UserID: 1, OrganizationID: 1, Name: "Camiseta", SKU: "CAM-001", Stock: 50})

	svc.RunPass(ctx)

	if n := countRows(t, db, &model.Notification{}); n != 1 {
		t.Fatalf("notifications = %d, want 1", n)
	}
	if n := countRows(t, db, &model.AutomationLog{}); n != 1 {
		t.Fatalf("automation logs = %d, want 1", n)
	}

	var got model.AutomationRule
	if err := db.First(&got, rule.ID).Error; err != nil {
		t.Fatalf("load rule: %v", err)
	}
	if got.LastTriggeredAt == nil {
		t.Error("last_triggered_at not stamped")
	}

	// A second pass within the dedup window creates nothing new.
	svc.RunPass(ctx)
	if n := countRows(t, db, &model.Notification{}); n != 1 {
		t.Errorf("notifications after rerun = %d, want 1 (deduped)", n)
	}
	if n := countRows(t, db, &model.AutomationLog{}); n != 1 {
		t.Errorf("automation logs after rerun = %d, want 1", n)
	}
}

func TestAutomation_PauseZeroStock(t *testing.T) {
	db := setupTestDB(t)
	svc := newAutomationService(t, db)
	ctx := context.Background()

	rule := &model.AutomationRule{
		OrganizationID: 1,
		UserID:         1,
		RuleType:       model.RuleTypePauseZeroStock,
		IsActive:       true,
	}
	if err := svc.CreateRule(ctx, rule); err != nil {
		t.Fatalf("CreateRule() error = %v", err)
	}

	product := &model.Product{UserID: 1, OrganizationID: 1, Name: "Tênis", SKU: "TEN-001", Stock: 0}
	db.Create(product)
	integration := &model.Integration{UserID: 1, Platform: model.PlatformMercadoLivre, EncryptedAccessToken: "x"}
	db.Create(integration)
	listing := &model.ProductListing{
		ProductID:         product.ID,
		IntegrationID:     integration.ID,
		Platform:          model.PlatformMercadoLivre,
		PlatformProductID: "MLB123",
		SyncStatus:        model.SyncStatusActive,
	}
	db.Create(listing)

	svc.RunPass(ctx)

	var got model.ProductListing
	if err := db.First(&got, listing.ID).Error; err != nil {
		t.Fatalf("load listing: %v", err)
	}
	if got.SyncStatus != model.SyncStatusPaused {
		t.Errorf("sync_status = %q, want paused", got.SyncStatus)
	}
	if n := countRows(t, db, &model.AutomationLog{}); n != 1 {
		t.Errorf("automation logs = %d, want 1", n)
	}

	// Listings already paused produce no further actions.
	svc.RunPass(ctx)
	if n := countRows(t, db, &model.AutomationLog{}); n != 1 {
		t.Errorf("automation logs after rerun = %d, want 1", n)
	}
}

func TestAutomation_LowMarginAlert(t *testing.T) {
	db := setupTestDB(t)
	svc := newAutomationService(t, db)
	ctx := context.Background()

	rule := &model.AutomationRule{
		OrganizationID: 1,
		UserID:         1,
		RuleType:       model.RuleTypeLowMarginAlert,
		IsActive:       true,
		Config:         datatypes.JSON(`{"min_margin": 20}`),
	}
	if err := svc.CreateRule(ctx, rule); err != nil {
		t.Fatalf("CreateRule() error = %v", err)
	}

	// 10% margin, below the 20% floor.
	db.Create(&model.Product{
		UserID: 1, OrganizationID: 1, Name: "Fone", SKU: "FON-001",
		Stock: 10, CostPrice: decimal.NewFromInt(90), SellingPrice: decimal.NewFromInt(100),
	})
	// 50% margin, fine.
	db.Create(&model.Product{
		UserID: 1, OrganizationID: 1, Name: "Capa", SKU: "CAP-001",
		Stock: 10, CostPrice: decimal.NewFromInt(50), SellingPrice: decimal.NewFromInt(100),
	})
	// No price yet; carries no margin signal.
	db.Create(&model.Product{
		UserID: 1, OrganizationID: 1, Name: "Novo", SKU: "NOV-001", Stock: 10,
	})

	svc.RunPass(ctx)

	var notifications []model.Notification
	db.Find(&notifications)
	if len(notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifications))
	}
	if notifications[0].Type != model.NotificationTypeLowMargin {
		t.Errorf("type = %q, want low_margin", notifications[0].Type)
	}
}

func TestAutomation_InactiveRuleSkipped(t *testing.T) {
	db := setupTestDB(t)
	svc := newAutomationService(t, db)
	ctx := context.Background()

	rule := &model.AutomationRule{
		OrganizationID: 1,
		UserID:         1,
		RuleType:       model.RuleTypeLowStockAlert,
		IsActive:       true,
		Config:         datatypes.JSON(`{"threshold": 5}`),
	}
	if err := svc.CreateRule(ctx, rule); err != nil {
		t.Fatalf("CreateRule() error = %v", err)
	}
	if err := svc.SetRuleActive(ctx, rule.ID, false); err != nil {
		t.Fatalf("SetRuleActive() error = %v", err)
	}

	db.Create(&model.Product{UserID: 1, OrganizationID: 1, Name: "Caneca", SKU: "CAN-001", Stock: 1})

	svc.RunPass(ctx)
	if n := countRows(t, db, &model.Notification{}); n != 0 {
		t.Errorf("notifications = %d, want 0 for inactive rule", n)
	}
}

func TestAutomation_RejectsUnknownRuleType(t *testing.T) {
	db := setupTestDB(t)
	svc := newAutomationService(t, db)

	err := svc.CreateRule(context.Background(), &model.AutomationRule{
		OrganizationID: 1, UserID: 1, RuleType: "price_war",
	})
	if err == nil {
		t.Fatal("CreateRule(unknown type) expected error")
	}
}
