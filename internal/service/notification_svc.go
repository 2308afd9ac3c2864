package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sellerhub/internal/model"
	"sellerhub/internal/repository"
)

const dedupWindow = 24 * time.Hour

type NotificationService struct {
	repo   repository.NotificationRepository
	logger *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

// Notify inserts a notification unless an equal (user, type, title) one was
// already created within the rolling 24h window. Returns whether a row was
// actually inserted.
func (s *NotificationService) Notify(ctx context.Context, userID int64, ntype, title, message string) (bool, error) {
	exists, err := s.repo.ExistsSince(ctx, userID, ntype, title, time.Now().Add(-dedupWindow))
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	n := &model.Notification{
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}

func (s *NotificationService) List(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}
