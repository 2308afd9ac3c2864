package dto

// ExchangeReq is the unified body for POST /api/auth/:platform/exchange.
// Which fields matter depends on the platform: code+redirect for code flows,
// refresh_token+selling_partner_id for Amazon self-authorization, shop_domain
// for Shopify. TikTok Ads long-lived tokens also travel in refresh_token.
type ExchangeReq struct {
	Code             string `json:"code"`
	RedirectURI      string `json:"redirect_uri"`
	CodeVerifier     string `json:"code_verifier"`
	RefreshToken     string `json:"refresh_token"`
	ShopDomain       string `json:"shop_domain"`
	SellingPartnerID string `json:"selling_partner_id"`
	AccountName      string `json:"account_name"`
}

type IntegrationResp struct {
	ID             int64  `json:"id"`
	Platform       string `json:"platform"`
	AccountName    string `json:"account_name"`
	TokenStatus    string `json:"token_status"`
	ShopDomain     string `json:"shop_domain,omitempty"`
	TokenExpiresAt string `json:"token_expires_at,omitempty"`
}
