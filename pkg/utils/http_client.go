package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewAPIClient creates the resty client used for every outbound marketplace
// call. One client per adapter instance; no shared global.
func NewAPIClient(baseURL string, timeout time.Duration) *resty.Client {
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "SellerHub/1.0").
		SetHeader("Accept", "application/json")
	return client
}
