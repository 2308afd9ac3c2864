package service

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by controllers for HTTP mapping.
var (
	// ErrUnauthorized: missing/invalid caller session, never proceeds.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDuplicateIntegration: an equivalent account already exists;
	// surfaced as a distinct duplicate signal, not a generic error.
	ErrDuplicateIntegration = errors.New("integration already connected")
	// ErrUnknownPlatform: no adapter/provider registered for the tag.
	ErrUnknownPlatform = errors.New("unknown platform")
)

// InsufficientStockError rejects adjustments that would drive stock negative.
type InsufficientStockError struct {
	Current int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock, current stock is %d", e.Current)
}
