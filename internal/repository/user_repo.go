package repository

import (
	"context"

	"gorm.io/gorm"

	"sellerhub/internal/model"
)

// UserRepository reads back-office operator accounts. Account creation and
// credential checks live in the dashboard layer; the API only resolves the
// account behind a verified JWT.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*model.SysUser, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*model.SysUser, error) {
	var user model.SysUser
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
