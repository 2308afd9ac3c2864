package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sellerhub/internal/model"
)

func setupListingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.Integration{}, &model.Product{}, &model.ProductListing{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedListing(t *testing.T, db *gorm.DB) *model.ProductListing {
	t.Helper()

	integration := &model.Integration{UserID: 1, Platform: model.PlatformShopify, EncryptedAccessToken: "enc"}
	if err := db.Create(integration).Error; err != nil {
		t.Fatalf("create integration: %v", err)
	}
	product := &model.Product{UserID: 1, Name: "Camiseta", SKU: "CAM-001", Stock: 5}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	listing := &model.ProductListing{
		ProductID:         product.ID,
		IntegrationID:     integration.ID,
		Platform:          model.PlatformShopify,
		PlatformProductID: "100",
		PlatformVariantID: "200",
		SyncStatus:        model.SyncStatusActive,
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return listing
}

func TestListingRepo_UpsertReplacesOnConflict(t *testing.T) {
	db := setupListingTestDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()

	existing := seedListing(t, db)

	// Re-publishing the same product to the same integration must update the
	// existing row, not add one.
	err := repo.Upsert(ctx, &model.ProductListing{
		ProductID:         existing.ProductID,
		IntegrationID:     existing.IntegrationID,
		Platform:          model.PlatformShopify,
		PlatformProductID: "101",
		PlatformVariantID: "201",
		SyncStatus:        model.SyncStatusActive,
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	var count int64
	db.Model(&model.ProductListing{}).Count(&count)
	if count != 1 {
		t.Fatalf("listing rows = %d, want 1", count)
	}

	var got model.ProductListing
	db.Where("product_id = ? AND integration_id = ?", existing.ProductID, existing.IntegrationID).First(&got)
	if got.PlatformProductID != "101" || got.PlatformVariantID != "201" {
		t.Errorf("mapping not updated: %+v", got)
	}
}

func TestListingRepo_RecordSyncOutcome(t *testing.T) {
	db := setupListingTestDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()

	listing := seedListing(t, db)
	now := time.Now()

	if err := repo.RecordSyncOutcome(ctx, listing.ID, model.SyncStatusError, "stock update failed", now); err != nil {
		t.Fatalf("RecordSyncOutcome() error = %v", err)
	}

	var got model.ProductListing
	db.First(&got, listing.ID)
	if got.SyncStatus != model.SyncStatusError || got.SyncError != "stock update failed" {
		t.Errorf("after failure: %+v", got)
	}
	if got.LastSyncAt == nil {
		t.Error("last_sync_at not stamped")
	}

	// Success clears the error. Scan into a fresh struct: gorm leaves a
	// string field untouched when the column comes back NULL, so reusing
	// `got` would keep the stale failure message.
	if err := repo.RecordSyncOutcome(ctx, listing.ID, model.SyncStatusActive, "", time.Now()); err != nil {
		t.Fatalf("RecordSyncOutcome() error = %v", err)
	}
	var after model.ProductListing
	db.First(&after, listing.ID)
	if after.SyncStatus != model.SyncStatusActive {
		t.Errorf("sync_status = %q", after.SyncStatus)
	}
	if after.SyncError != "" {
		t.Errorf("sync_error = %q, want cleared", after.SyncError)
	}
}

func TestListingRepo_PauseByProduct(t *testing.T) {
	db := setupListingTestDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()

	listing := seedListing(t, db)

	affected, err := repo.PauseByProduct(ctx, listing.ProductID)
	if err != nil {
		t.Fatalf("PauseByProduct() error = %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected = %d, want 1", affected)
	}

	// Second call touches nothing; callers use the count to avoid
	// double-reporting.
	affected, err = repo.PauseByProduct(ctx, listing.ProductID)
	if err != nil {
		t.Fatalf("PauseByProduct() error = %v", err)
	}
	if affected != 0 {
		t.Errorf("affected on rerun = %d, want 0", affected)
	}

	syncable, err := repo.ListSyncableByProduct(ctx, listing.ProductID)
	if err != nil {
		t.Fatalf("ListSyncableByProduct() error = %v", err)
	}
	if len(syncable) != 0 {
		t.Errorf("paused listing still syncable")
	}
}
