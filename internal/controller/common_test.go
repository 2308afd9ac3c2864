package controller

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"sellerhub/internal/platform"
	"sellerhub/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// performErrorRequest routes a canned error through writeError and captures
// the response the client would see.
func performErrorRequest(err error) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/boom", func(c *gin.Context) {
		writeError(c, err)
	})

	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "validation error",
			err:        &platform.ValidationError{Msg: "category_id is required"},
			wantStatus: http.StatusBadRequest,
			wantBody:   "category_id is required",
		},
		{
			name:       "insufficient stock",
			err:        &service.InsufficientStockError{Current: 3},
			wantStatus: http.StatusBadRequest,
			wantBody:   "insufficient stock, current stock is 3",
		},
		{
			name:       "duplicate integration",
			err:        service.ErrDuplicateIntegration,
			wantStatus: http.StatusConflict,
			wantBody:   "already connected",
		},
		{
			name:       "unknown platform",
			err:        service.ErrUnknownPlatform,
			wantStatus: http.StatusBadRequest,
			wantBody:   "unknown platform",
		},
		{
			name:       "record not found",
			err:        gorm.ErrRecordNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   "not found",
		},
		{
			name:       "unexpected error",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "disk on fire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performErrorRequest(tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

// Missing credentials must read as a generic configuration error so the
// response never reveals which secret is absent.
func TestWriteError_ConfigurationNeverLeaksCredential(t *testing.T) {
	err := platform.ErrNotConfigured
	w := performErrorRequest(err)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "configuration error")
	assert.NotContains(t, w.Body.String(), "client_secret")
	assert.NotContains(t, w.Body.String(), "credential")
}

func TestWriteError_UpstreamBodyPassedThrough(t *testing.T) {
	err := &platform.APIError{
		Platform:   "mercadolivre",
		StatusCode: 403,
		Body:       `{"message":"Error validating grant"}`,
	}
	w := performErrorRequest(err)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Error validating grant")
	assert.Contains(t, w.Body.String(), "mercadolivre")
}
