package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sellerhub/internal/model"
)

// ==================== Interface ====================

// NotificationRepository persists user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.Notification, error)
	// ExistsSince backs the 24h de-duplication window on
	// (user_id, type, title).
	ExistsSince(ctx context.Context, userID int64, ntype, title string, since time.Time) (bool, error)
	MarkRead(ctx context.Context, id, userID int64) error
}

// ==================== Implementation ====================

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var notifications []model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepo) ExistsSince(ctx context.Context, userID int64, ntype, title string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND type = ? AND title = ? AND created_at >= ?", userID, ntype, title, since).
		Count(&count).Error
	return count > 0, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, userID int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}
