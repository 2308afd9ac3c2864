package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sellerhub/internal/model"
)

// ==================== Interface ====================

// ListingRepository persists the per-platform mirrors of products.
type ListingRepository interface {
	// Upsert keys on (product_id, integration_id): republishing refreshes
	// the row instead of duplicating it.
	Upsert(ctx context.Context, listing *model.ProductListing) error
	GetByID(ctx context.Context, id int64) (*model.ProductListing, error)
	ListByProduct(ctx context.Context, productID int64) ([]model.ProductListing, error)
	// ListSyncableByProduct returns non-paused listings with their
	// integrations preloaded, ready for fan-out.
	ListSyncableByProduct(ctx context.Context, productID int64) ([]model.ProductListing, error)

	// RecordSyncOutcome writes the last attempt's result. last_sync_at is
	// stamped unconditionally so staleness stays observable.
	RecordSyncOutcome(ctx context.Context, id int64, status, syncErr string, at time.Time) error
	// PauseByProduct flags every active listing of a product as paused,
	// returning how many rows changed.
	PauseByProduct(ctx context.Context, productID int64) (int64, error)
}

// ==================== Implementation ====================

type listingRepo struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepo{db: db}
}

func (r *listingRepo) Upsert(ctx context.Context, listing *model.ProductListing) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "integration_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"platform_product_id", "platform_variant_id", "platform_url",
			"sync_status", "sync_error", "last_sync_at", "platform_metadata",
			"updated_at",
		}),
	}).Create(listing).Error
}

func (r *listingRepo) GetByID(ctx context.Context, id int64) (*model.ProductListing, error) {
	var listing model.ProductListing
	err := r.db.WithContext(ctx).
		Preload("Integration").
		First(&listing, id).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepo) ListByProduct(ctx context.Context, productID int64) ([]model.ProductListing, error) {
	var listings []model.ProductListing
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("platform ASC").
		Find(&listings).Error
	return listings, err
}

func (r *listingRepo) ListSyncableByProduct(ctx context.Context, productID int64) ([]model.ProductListing, error) {
	var listings []model.ProductListing
	err := r.db.WithContext(ctx).
		Preload("Integration").
		Where("product_id = ? AND sync_status <> ?", productID, model.SyncStatusPaused).
		Find(&listings).Error
	return listings, err
}

func (r *listingRepo) RecordSyncOutcome(ctx context.Context, id int64, status, syncErr string, at time.Time) error {
	fields := map[string]interface{}{
		"sync_status":  status,
		"last_sync_at": at,
	}
	if syncErr == "" {
		fields["sync_error"] = nil // cleared on full success
	} else {
		fields["sync_error"] = syncErr
	}
	return r.db.WithContext(ctx).
		Model(&model.ProductListing{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *listingRepo) PauseByProduct(ctx context.Context, productID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.ProductListing{}).
		Where("product_id = ? AND sync_status <> ?", productID, model.SyncStatusPaused).
		Update("sync_status", model.SyncStatusPaused)
	return result.RowsAffected, result.Error
}
