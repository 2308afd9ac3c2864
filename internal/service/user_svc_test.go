package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"sellerhub/internal/model"
	"sellerhub/internal/repository"
)

func TestUserService_Profile(t *testing.T) {
	db := setupTestDB(t)
	seed := &model.SysUser{Username: "maria", Email: "maria@loja.com.br", Role: "seller", OrganizationID: 3}
	if err := db.Create(seed).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	svc := NewUserService(repository.NewUserRepository(db), testLogger())
	got, err := svc.Profile(context.Background(), seed.ID)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if got.Username != "maria" {
		t.Errorf("Username = %q", got.Username)
	}
	if got.OrganizationID != 3 {
		t.Errorf("OrganizationID = %d", got.OrganizationID)
	}
}

func TestUserService_ProfileNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db), testLogger())

	_, err := svc.Profile(context.Background(), 999)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Profile() error = %v, want ErrRecordNotFound", err)
	}
}
