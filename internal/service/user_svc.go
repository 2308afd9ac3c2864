package service

import (
	"context"

	"go.uber.org/zap"

	"sellerhub/internal/model"
	"sellerhub/internal/repository"
)

// UserService resolves the operator account behind an authenticated request.
type UserService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*model.SysUser, error) {
	return s.userRepo.FindByID(ctx, userID)
}
