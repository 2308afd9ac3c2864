package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sellerhub/internal/model"
	"sellerhub/internal/platform"
	"sellerhub/internal/repository"
	"sellerhub/internal/vault"
	"sellerhub/pkg/utils"
)

// AuthService runs the OAuth-completion routine shared by every platform:
// validate config, exchange, encrypt, upsert per the platform's conflict
// policy. Exactly one Integration row is written per completion.
type AuthService struct {
	integrationRepo repository.IntegrationRepository
	registry        *platform.Registry
	vault           vault.TokenVault
	logger          *zap.Logger
}

func NewAuthService(
	integrationRepo repository.IntegrationRepository,
	registry *platform.Registry,
	tokenVault vault.TokenVault,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		integrationRepo: integrationRepo,
		registry:        registry,
		vault:           tokenVault,
		logger:          logger,
	}
}

// CompleteOAuthInput is the polymorphic input shared by all platform handlers.
type CompleteOAuthInput struct {
	UserID         int64
	OrganizationID int64
	Platform       string

	Code         string
	RedirectURI  string
	CodeVerifier string
	// RefreshToken switches to the self-authorization variant: a
	// user-supplied long-lived token instead of a consent code.
	RefreshToken string

	ShopDomain       string
	SellingPartnerID string
	AccountName      string
}

// CompleteOAuth exchanges the code (or long-lived token), encrypts the
// resulting credentials and persists the Integration.
func (s *AuthService) CompleteOAuth(ctx context.Context, in CompleteOAuthInput) (*model.Integration, error) {
	provider, ok := s.registry.Provider(in.Platform)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, in.Platform)
	}

	// 1. Server-side credentials must be present before anything leaves
	// the process.
	if err := provider.Configured(); err != nil {
		return nil, err
	}

	// 2. Exchange. Not retried: authorization codes are single-use.
	req := platform.ExchangeRequest{
		Code:             in.Code,
		RedirectURI:      in.RedirectURI,
		CodeVerifier:     in.CodeVerifier,
		RefreshToken:     in.RefreshToken,
		ShopDomain:       in.ShopDomain,
		SellingPartnerID: in.SellingPartnerID,
		AccountName:      in.AccountName,
	}

	var (
		tokens   *platform.TokenSet
		identity *platform.Identity
		err      error
	)
	if in.RefreshToken != "" && in.Code == "" {
		selfAuth, ok := provider.(platform.SelfAuthorizer)
		if !ok {
			return nil, &platform.ValidationError{Msg: fmt.Sprintf("%s does not support self-authorization", in.Platform)}
		}
		tokens, identity, err = selfAuth.SelfAuthorize(ctx, req)
	} else {
		tokens, identity, err = provider.ExchangeCode(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	// 3. Encrypt before anything touches the integrations table.
	integration, err := s.buildIntegration(ctx, in, tokens, identity)
	if err != nil {
		return nil, err
	}

	// 4. Persist per conflict policy.
	switch provider.ConflictPolicy() {
	case platform.ConflictRejectDuplicate:
		existing, err := s.integrationRepo.FindByExternalID(ctx, in.UserID, in.Platform, integration.SellingPartnerID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, ErrDuplicateIntegration
		}
		if err := s.integrationRepo.Create(ctx, integration); err != nil {
			return nil, err
		}
	case platform.ConflictReplace:
		if err := s.integrationRepo.UpsertByUserPlatform(ctx, integration); err != nil {
			return nil, err
		}
	default:
		if err := s.integrationRepo.Create(ctx, integration); err != nil {
			return nil, err
		}
	}

	s.logger.Info("integration connected",
		zap.String("platform", in.Platform),
		zap.Int64("user_id", in.UserID),
		zap.Int64("integration_id", integration.ID))
	return integration, nil
}

func (s *AuthService) buildIntegration(ctx context.Context, in CompleteOAuthInput, tokens *platform.TokenSet, identity *platform.Identity) (*model.Integration, error) {
	encAccess, err := s.vault.Encrypt(ctx, tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("encrypt access token: %w", err)
	}
	encRefresh := ""
	if tokens.RefreshToken != "" {
		encRefresh, err = s.vault.Encrypt(ctx, tokens.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("encrypt refresh token: %w", err)
		}
	}

	integration := &model.Integration{
		UserID:                in.UserID,
		OrganizationID:        in.OrganizationID,
		Platform:              in.Platform,
		AccountName:           identity.AccountName,
		EncryptedAccessToken:  encAccess,
		EncryptedRefreshToken: encRefresh,
		TokenStatus:           model.TokenStatusValid,
		SellingPartnerID:      identity.SellingPartnerID,
		ShopDomain:            identity.ShopDomain,
		MarketplaceID:         identity.MarketplaceID,
		ExternalUserID:        identity.ExternalUserID,
	}
	if integration.AccountName == "" {
		integration.AccountName = in.AccountName
	}
	if tokens.ExpiresIn > 0 {
		expires := time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
		integration.TokenExpiresAt = &expires
	}
	return integration, nil
}

// ==================== Redirect-flow state ====================

// BeginAuthorization creates the consent URL for redirect-based flows
// (Mercado Livre PKCE, Amazon Seller Central, TikTok Ads portal) and caches
// state -> "verifier:userID:orgID" for the callback leg.
func (s *AuthService) BeginAuthorization(userID, organizationID int64, platformTag string) (string, error) {
	provider, ok := s.registry.Provider(platformTag)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPlatform, platformTag)
	}
	if err := provider.Configured(); err != nil {
		return "", err
	}

	redirect, ok := provider.(platform.RedirectAuthorizer)
	if !ok {
		return "", &platform.ValidationError{Msg: fmt.Sprintf("%s does not use a server-generated consent URL", platformTag)}
	}

	verifier, err := utils.GenerateRandomString(32)
	if err != nil {
		return "", err
	}
	state := uuid.New().String()
	utils.SetCache(state, fmt.Sprintf("%s:%d:%d", verifier, userID, organizationID))

	return redirect.AuthorizationURL(state, utils.GenerateCodeChallenge(verifier)), nil
}

// ResolveState validates the callback state and returns the cached verifier
// and caller identity. States are single-use.
func (s *AuthService) ResolveState(state string) (verifier string, userID, organizationID int64, err error) {
	cached, ok := utils.GetCache(state)
	if !ok {
		return "", 0, 0, fmt.Errorf("%w: authorization expired or state invalid", ErrUnauthorized)
	}
	utils.DeleteCache(state)

	parts := strings.Split(cached, ":")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("malformed state cache entry")
	}
	userID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed state cache entry: %w", err)
	}
	organizationID, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed state cache entry: %w", err)
	}
	return parts[0], userID, organizationID, nil
}

// ==================== Token refresh ====================

// RefreshIntegrationToken refreshes one integration's access token: decrypt
// the refresh token, call the platform, re-encrypt, save. A platform refusal
// marks the row auth_invalid so the dashboard can prompt a re-connect.
func (s *AuthService) RefreshIntegrationToken(ctx context.Context, integration *model.Integration) error {
	provider, ok := s.registry.Provider(integration.Platform)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlatform, integration.Platform)
	}

	refreshToken, err := s.vault.Decrypt(ctx, integration.EncryptedRefreshToken)
	if err != nil {
		return err
	}

	tokens, err := provider.Refresh(ctx, refreshToken)
	if err != nil {
		if apiErr, ok := err.(*platform.APIError); ok {
			// The platform explicitly refused; require re-auth.
			if uerr := s.integrationRepo.UpdateTokenStatus(ctx, integration.ID, model.TokenStatusInvalid); uerr != nil {
				s.logger.Warn("failed to mark integration invalid", zap.Int64("integration_id", integration.ID), zap.Error(uerr))
			}
			return fmt.Errorf("refresh denied (status %d)", apiErr.StatusCode)
		}
		return err
	}

	integration.EncryptedAccessToken, err = s.vault.Encrypt(ctx, tokens.AccessToken)
	if err != nil {
		return err
	}
	if tokens.RefreshToken != "" {
		integration.EncryptedRefreshToken, err = s.vault.Encrypt(ctx, tokens.RefreshToken)
		if err != nil {
			return err
		}
	}
	if tokens.ExpiresIn > 0 {
		expires := time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
		integration.TokenExpiresAt = &expires
	}
	integration.TokenStatus = model.TokenStatusValid

	return s.integrationRepo.Update(ctx, integration)
}

// ==================== Queries ====================

func (s *AuthService) GetIntegration(ctx context.Context, id, userID int64) (*model.Integration, error) {
	return s.integrationRepo.GetByIDForUser(ctx, id, userID)
}

func (s *AuthService) ListIntegrations(ctx context.Context, userID int64) ([]model.Integration, error) {
	return s.integrationRepo.ListByUser(ctx, userID)
}

func (s *AuthService) Disconnect(ctx context.Context, id, userID int64) error {
	return s.integrationRepo.Delete(ctx, id, userID)
}
