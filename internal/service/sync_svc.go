package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sellerhub/internal/model"
	"sellerhub/internal/platform"
	"sellerhub/internal/repository"
	"sellerhub/internal/vault"
)

// ==================== Sync orchestrator ====================

// SyncService owns the write path for product price and stock: the canonical
// record is written first, then every syncable listing is pushed concurrently.
// A platform failure never rolls back the canonical write.
type SyncService struct {
	productRepo repository.ProductRepository
	listingRepo repository.ListingRepository
	registry    *platform.Registry
	vault       vault.TokenVault
	logger      *zap.Logger
}

func NewSyncService(
	productRepo repository.ProductRepository,
	listingRepo repository.ListingRepository,
	registry *platform.Registry,
	tokenVault vault.TokenVault,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		productRepo: productRepo,
		listingRepo: listingRepo,
		registry:    registry,
		vault:       tokenVault,
		logger:      logger,
	}
}

// UpdateProductInput carries the fields being changed. Nil means unchanged.
type UpdateProductInput struct {
	UserID    int64
	ProductID int64
	Price     *decimal.Decimal
	Stock     *int
}

// SyncResult is the outcome for one listing.
type SyncResult struct {
	ListingID int64  `json:"listing_id"`
	Platform  string `json:"platform"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// SyncReport aggregates a fan-out. Success is true only when every attempted
// listing succeeded; the canonical write has already happened either way.
type SyncReport struct {
	Success     bool         `json:"success"`
	SyncedCount int          `json:"synced_count"`
	TotalCount  int          `json:"total_count"`
	Results     []SyncResult `json:"results"`
}

// UpdateProduct applies the change to the canonical product row, then pushes
// it to every non-paused listing concurrently.
func (s *SyncService) UpdateProduct(ctx context.Context, in UpdateProductInput) (*SyncReport, error) {
	product, err := s.productRepo.GetByIDForUser(ctx, in.ProductID, in.UserID)
	if err != nil {
		return nil, err
	}

	// Canonical write first. Stock can never go negative.
	fields := map[string]interface{}{}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, &platform.ValidationError{Msg: "price cannot be negative"}
		}
		product.SellingPrice = *in.Price
		fields["selling_price"] = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, &InsufficientStockError{Current: product.Stock}
		}
		product.Stock = *in.Stock
		fields["stock"] = *in.Stock
	}
	if len(fields) == 0 {
		return nil, &platform.ValidationError{Msg: "nothing to update"}
	}
	if err := s.productRepo.UpdateFields(ctx, product.ID, fields); err != nil {
		return nil, err
	}

	return s.fanOut(ctx, product), nil
}

// Resync re-pushes the current canonical values without changing them.
func (s *SyncService) Resync(ctx context.Context, userID, productID int64) (*SyncReport, error) {
	product, err := s.productRepo.GetByIDForUser(ctx, productID, userID)
	if err != nil {
		return nil, err
	}
	return s.fanOut(ctx, product), nil
}

func (s *SyncService) fanOut(ctx context.Context, product *model.Product) *SyncReport {
	listings, err := s.listingRepo.ListSyncableByProduct(ctx, product.ID)
	if err != nil {
		s.logger.Error("failed to load listings for sync", zap.Int64("product_id", product.ID), zap.Error(err))
		return &SyncReport{Success: false, Results: []SyncResult{}}
	}

	report := &SyncReport{TotalCount: len(listings), Results: make([]SyncResult, len(listings))}
	if len(listings) == 0 {
		report.Success = true
		return report
	}

	var wg sync.WaitGroup
	for i := range listings {
		wg.Add(1)
		go func(idx int, listing model.ProductListing) {
			defer wg.Done()
			report.Results[idx] = s.syncListing(ctx, product, &listing)
		}(i, listings[i])
	}
	wg.Wait()

	report.Success = true
	for _, r := range report.Results {
		if r.Success {
			report.SyncedCount++
		} else {
			report.Success = false
		}
	}
	return report
}

// syncListing pushes one listing and records the outcome on the row. The
// decrypted token lives only inside this call.
func (s *SyncService) syncListing(ctx context.Context, product *model.Product, listing *model.ProductListing) SyncResult {
	result := SyncResult{ListingID: listing.ID, Platform: listing.Platform}
	now := time.Now()

	adapter, ok := s.registry.Adapter(listing.Platform)
	if !ok {
		result.Error = fmt.Sprintf("no adapter for platform %s", listing.Platform)
		s.recordOutcome(ctx, listing.ID, model.SyncStatusError, result.Error, now)
		return result
	}

	if listing.Integration == nil {
		result.Error = "listing has no integration"
		s.recordOutcome(ctx, listing.ID, model.SyncStatusError, result.Error, now)
		return result
	}

	accessToken, err := s.vault.Decrypt(ctx, listing.Integration.EncryptedAccessToken)
	if err != nil {
		result.Error = err.Error()
		s.recordOutcome(ctx, listing.ID, model.SyncStatusError, result.Error, now)
		return result
	}

	outcome := adapter.UpdatePriceAndStock(ctx, product, listing, listing.Integration, accessToken)
	if outcome.Failed() {
		result.Error = outcome.JoinedErrors()
		s.recordOutcome(ctx, listing.ID, model.SyncStatusError, result.Error, now)
		s.logger.Warn("listing sync failed",
			zap.String("platform", listing.Platform),
			zap.Int64("listing_id", listing.ID),
			zap.String("error", result.Error))
		return result
	}

	result.Success = true
	s.recordOutcome(ctx, listing.ID, model.SyncStatusActive, "", now)
	return result
}

func (s *SyncService) recordOutcome(ctx context.Context, listingID int64, status, syncErr string, at time.Time) {
	if err := s.listingRepo.RecordSyncOutcome(ctx, listingID, status, syncErr, at); err != nil {
		s.logger.Error("failed to record sync outcome", zap.Int64("listing_id", listingID), zap.Error(err))
	}
}

// ==================== Publish ====================

// PublishInput creates a listing on one platform for an existing product.
type PublishInput struct {
	UserID        int64
	ProductID     int64
	IntegrationID int64
	CategoryID    string
	ListingType   string
	Description   string
}

// Publish creates the listing on the platform and persists the mapping row.
func (s *SyncService) Publish(ctx context.Context, in PublishInput, integration *model.Integration) (*model.ProductListing, error) {
	product, err := s.productRepo.GetByIDForUser(ctx, in.ProductID, in.UserID)
	if err != nil {
		return nil, err
	}

	adapter, ok := s.registry.Adapter(integration.Platform)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, integration.Platform)
	}

	accessToken, err := s.vault.Decrypt(ctx, integration.EncryptedAccessToken)
	if err != nil {
		return nil, err
	}

	published, err := adapter.Publish(ctx, product, integration, accessToken, platform.PublishFields{
		CategoryID:  in.CategoryID,
		ListingType: in.ListingType,
		Description: in.Description,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	listing := &model.ProductListing{
		ProductID:         product.ID,
		IntegrationID:     integration.ID,
		Platform:          integration.Platform,
		PlatformProductID: published.PlatformProductID,
		PlatformVariantID: published.PlatformVariantID,
		PlatformURL:       published.PlatformURL,
		SyncStatus:        model.SyncStatusActive,
		LastSyncAt:        &now,
	}
	if err := s.listingRepo.Upsert(ctx, listing); err != nil {
		return nil, err
	}

	s.logger.Info("product published",
		zap.String("platform", integration.Platform),
		zap.Int64("product_id", product.ID),
		zap.String("platform_product_id", published.PlatformProductID))
	return listing, nil
}
