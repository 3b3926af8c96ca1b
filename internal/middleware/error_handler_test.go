package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "classifieds/pkg/errors"
	"classifieds/pkg/logger"
)

func TestErrorHandler(t *testing.T) {
	resetAt := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
		retryAfter string
	}{
		{
			name:       "store_error_hidden",
			err:        apperrors.StoreError("expire featured", errors.New("dial tcp 10.0.0.5:5432: refused")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
		{
			name:       "quota_exceeded",
			err:        apperrors.NewThrottledError(apperrors.ErrQuotaExceeded, 90*time.Second, resetAt),
			wantStatus: http.StatusTooManyRequests,
			wantBody:   `{"error":"monthly free listing quota exceeded","retryAfter":90,"resetAt":"2024-07-01T00:00:00Z"}`,
			retryAfter: "90",
		},
		{
			name:       "not_found",
			err:        apperrors.ErrListingNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"listing not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ErrorHandler(logger.NewNop()))
			router.GET("/", func(c *gin.Context) { _ = c.Error(tt.err) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, tt.retryAfter, w.Header().Get("Retry-After"))
		})
	}
}
