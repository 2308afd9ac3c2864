package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"sellerhub/internal/model"
)

// ==================== Interface ====================

// IntegrationRepository persists connected marketplace accounts.
type IntegrationRepository interface {
	Create(ctx context.Context, integration *model.Integration) error
	GetByID(ctx context.Context, id int64) (*model.Integration, error)
	GetByIDForUser(ctx context.Context, id, userID int64) (*model.Integration, error)
	Update(ctx context.Context, integration *model.Integration) error
	Delete(ctx context.Context, id, userID int64) error
	ListByUser(ctx context.Context, userID int64) ([]model.Integration, error)

	// FindByExternalID locates an equivalent account (same external seller
	// id) for duplicate detection.
	FindByExternalID(ctx context.Context, userID int64, platform, externalID string) (*model.Integration, error)
	// UpsertByUserPlatform replaces the single account for (user, platform):
	// reconnecting supersedes the prior row.
	UpsertByUserPlatform(ctx context.Context, integration *model.Integration) error

	// FindExpiring returns refreshable integrations whose access token
	// expires within d.
	FindExpiring(ctx context.Context, d time.Duration) ([]model.Integration, error)
	UpdateTokenStatus(ctx context.Context, id int64, status string) error
}

// ==================== Implementation ====================

type integrationRepo struct {
	db *gorm.DB
}

func NewIntegrationRepository(db *gorm.DB) IntegrationRepository {
	return &integrationRepo{db: db}
}

func (r *integrationRepo) Create(ctx context.Context, integration *model.Integration) error {
	return r.db.WithContext(ctx).Create(integration).Error
}

func (r *integrationRepo) GetByID(ctx context.Context, id int64) (*model.Integration, error) {
	var integration model.Integration
	if err := r.db.WithContext(ctx).First(&integration, id).Error; err != nil {
		return nil, err
	}
	return &integration, nil
}

func (r *integrationRepo) GetByIDForUser(ctx context.Context, id, userID int64) (*model.Integration, error) {
	var integration model.Integration
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&integration).Error
	if err != nil {
		return nil, err
	}
	return &integration, nil
}

func (r *integrationRepo) Update(ctx context.Context, integration *model.Integration) error {
	return r.db.WithContext(ctx).Save(integration).Error
}

func (r *integrationRepo) Delete(ctx context.Context, id, userID int64) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Integration{}).Error
}

func (r *integrationRepo) ListByUser(ctx context.Context, userID int64) ([]model.Integration, error) {
	var integrations []model.Integration
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&integrations).Error
	return integrations, err
}

func (r *integrationRepo) FindByExternalID(ctx context.Context, userID int64, platform, externalID string) (*model.Integration, error) {
	var integration model.Integration
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND platform = ? AND selling_partner_id = ?", userID, platform, externalID).
		First(&integration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &integration, nil
}

// UpsertByUserPlatform runs find-then-save inside one transaction. A partial
// unique index (user, platform) for Shopify only is not expressible via gorm
// tags, so concurrent callbacks serialize on the row instead.
func (r *integrationRepo) UpsertByUserPlatform(ctx context.Context, integration *model.Integration) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Integration
		err := tx.Where("user_id = ? AND platform = ?", integration.UserID, integration.Platform).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(integration).Error
		}
		if err != nil {
			return err
		}
		integration.ID = existing.ID
		integration.CreatedAt = existing.CreatedAt
		return tx.Save(integration).Error
	})
}

func (r *integrationRepo) FindExpiring(ctx context.Context, d time.Duration) ([]model.Integration, error) {
	var integrations []model.Integration
	deadline := time.Now().Add(d)
	err := r.db.WithContext(ctx).
		Where("token_expires_at IS NOT NULL AND token_expires_at < ?", deadline).
		Where("encrypted_refresh_token <> ''").
		Where("token_status = ?", model.TokenStatusValid).
		Find(&integrations).Error
	return integrations, err
}

func (r *integrationRepo) UpdateTokenStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Integration{}).
		Where("id = ?", id).
		Update("token_status", status).Error
}
