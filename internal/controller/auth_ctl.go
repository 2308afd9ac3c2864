package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sellerhub/internal/api/dto"
	"sellerhub/internal/config"
	"sellerhub/internal/middleware"
	"sellerhub/internal/model"
	"sellerhub/internal/service"
)

type AuthController struct {
	authService *service.AuthService
	cfg         *config.Config
}

func NewAuthController(authService *service.AuthService, cfg *config.Config) *AuthController {
	return &AuthController{authService: authService, cfg: cfg}
}

// ==================== Exchange ====================

// Exchange completes an OAuth connection for any platform.
// @Summary Exchange an authorization code or long-lived token for an integration
// @Tags Auth
// @Param platform path string true "platform tag"
// @Param body body dto.ExchangeReq true "exchange payload"
// @Router /api/auth/{platform}/exchange [post]
func (ctrl *AuthController) Exchange(c *gin.Context) {
	var req dto.ExchangeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid request body: " + err.Error()})
		return
	}

	integration, err := ctrl.authService.CompleteOAuth(c.Request.Context(), service.CompleteOAuthInput{
		UserID:           middleware.GetUserID(c),
		OrganizationID:   middleware.GetOrganizationID(c),
		Platform:         c.Param("platform"),
		Code:             req.Code,
		RedirectURI:      req.RedirectURI,
		CodeVerifier:     req.CodeVerifier,
		RefreshToken:     req.RefreshToken,
		ShopDomain:       req.ShopDomain,
		SellingPartnerID: req.SellingPartnerID,
		AccountName:      req.AccountName,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, toIntegrationResp(integration))
}

// ==================== Redirect flow ====================

// Login returns the consent URL for redirect-based platforms.
// @Summary Start a redirect-based OAuth flow
// @Tags Auth
// @Param platform path string true "platform tag"
// @Router /api/auth/{platform}/login [get]
func (ctrl *AuthController) Login(c *gin.Context) {
	url, err := ctrl.authService.BeginAuthorization(middleware.GetUserID(c), middleware.GetOrganizationID(c), c.Param("platform"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, gin.H{"auth_url": url})
}

// Callback is the public leg of the redirect flow. It never renders JSON;
// the browser lands here, so the outcome travels back as a redirect.
// @Summary OAuth callback
// @Tags Auth
// @Param platform path string true "platform tag"
// @Router /auth/{platform}/callback [get]
func (ctrl *AuthController) Callback(c *gin.Context) {
	code := callbackCode(c)
	state := c.Query("state")
	if code == "" || state == "" {
		ctrl.redirectResult(c, "error")
		return
	}

	verifier, userID, organizationID, err := ctrl.authService.ResolveState(state)
	if err != nil {
		ctrl.redirectResult(c, "error")
		return
	}

	_, err = ctrl.authService.CompleteOAuth(c.Request.Context(), service.CompleteOAuthInput{
		UserID:           userID,
		OrganizationID:   organizationID,
		Platform:         c.Param("platform"),
		Code:             code,
		CodeVerifier:     verifier,
		RedirectURI:      ctrl.cfg.AppURL + "/auth/" + c.Param("platform") + "/callback",
		SellingPartnerID: c.Query("selling_partner_id"),
	})
	switch {
	case errors.Is(err, service.ErrDuplicateIntegration):
		ctrl.redirectResult(c, "duplicate")
	case err != nil:
		ctrl.redirectResult(c, "error")
	default:
		ctrl.redirectResult(c, "success")
	}
}

// callbackCode reads the consent code under whichever name the platform
// sends it: code (Mercado Livre), spapi_oauth_code (Amazon Seller Central),
// auth_code (TikTok Ads portal).
func callbackCode(c *gin.Context) string {
	for _, key := range []string{"code", "spapi_oauth_code", "auth_code"} {
		if v := c.Query(key); v != "" {
			return v
		}
	}
	return ""
}

func (ctrl *AuthController) redirectResult(c *gin.Context, status string) {
	c.Redirect(http.StatusFound, ctrl.cfg.AppURL+"/app/integrations?status="+status)
}

// ==================== Integrations ====================

// ListIntegrations returns the caller's connected accounts. Encrypted token
// columns never leave the server.
// @Summary List connected integrations
// @Tags Auth
// @Router /api/integrations [get]
func (ctrl *AuthController) ListIntegrations(c *gin.Context) {
	integrations, err := ctrl.authService.ListIntegrations(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]dto.IntegrationResp, 0, len(integrations))
	for i := range integrations {
		resp = append(resp, toIntegrationResp(&integrations[i]))
	}
	ok(c, resp)
}

// Disconnect removes an integration.
// @Summary Disconnect an integration
// @Tags Auth
// @Param id path int true "integration id"
// @Router /api/integrations/{id} [delete]
func (ctrl *AuthController) Disconnect(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid integration id"})
		return
	}

	if err := ctrl.authService.Disconnect(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	ok(c, nil)
}

func toIntegrationResp(in *model.Integration) dto.IntegrationResp {
	resp := dto.IntegrationResp{
		ID:          in.ID,
		Platform:    in.Platform,
		AccountName: in.AccountName,
		TokenStatus: in.TokenStatus,
		ShopDomain:  in.ShopDomain,
	}
	if in.TokenExpiresAt != nil {
		resp.TokenExpiresAt = in.TokenExpiresAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}
