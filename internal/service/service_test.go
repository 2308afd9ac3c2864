package service

import (
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sellerhub/internal/model"
	"sellerhub/internal/vault"
)

const testVaultKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.SysUser{},
		&model.Integration{},
		&model.Product{}, &model.ProductListing{},
		&model.AutomationRule{}, &model.AutomationLog{},
		&model.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestVault(t *testing.T) vault.TokenVault {
	t.Helper()
	v, err := vault.NewAESVault(testVaultKey)
	if err != nil {
		t.Fatalf("failed to create test vault: %v", err)
	}
	return v
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
