package vault

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrInvalidCiphertext is returned when decryption fails (corrupted or
// missing ciphertext). Fatal for the one request that needed the token.
var ErrInvalidCiphertext = errors.New("invalid access token")

// TokenVault encrypts and decrypts OAuth credentials at rest. Callers decrypt
// immediately before an outbound call and must never log, return or persist
// the plaintext beyond that call's lifetime.
type TokenVault interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

// PgVault delegates to the encrypt_token/decrypt_token database functions so
// the encryption key never leaves the database trust boundary. Both calls are
// single statements, hence atomic.
type PgVault struct {
	db *gorm.DB
}

func NewPgVault(db *gorm.DB) *PgVault {
	return &PgVault{db: db}
}

func (v *PgVault) Encrypt(ctx context.Context, plaintext string) (string, error) {
	var out string
	err := v.db.WithContext(ctx).
		Raw("SELECT encrypt_token(?)", plaintext).
		Scan(&out).Error
	if err != nil {
		return "", fmt.Errorf("encrypt_token: %w", err)
	}
	return out, nil
}

func (v *PgVault) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", ErrInvalidCiphertext
	}
	var out string
	err := v.db.WithContext(ctx).
		Raw("SELECT decrypt_token(?)", ciphertext).
		Scan(&out).Error
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return out, nil
}
