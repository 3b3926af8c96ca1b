package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"classifieds/pkg/logger"
)

func newCronRouter(limiter *rate.Limiter) *gin.Engine {
	router := gin.New()
	router.POST("/api/cron/expire-promotions", CronAuth("s3cret", limiter, logger.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func TestCronAuth(t *testing.T) {
	router := newCronRouter(nil)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer s3cret", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong_secret", "Bearer nope", http.StatusUnauthorized},
		{"wrong_scheme", "Basic s3cret", http.StatusUnauthorized},
		{"prefix_of_secret", "Bearer s3cre", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/cron/expire-promotions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
			}
		})
	}
}

func TestCronAuthEmptySecretRejectsEverything(t *testing.T) {
	router := gin.New()
	router.GET("/cron", CronAuth("", nil, logger.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/cron", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCronAuthThrottlesTriggers(t *testing.T) {
	router := newCronRouter(rate.NewLimiter(rate.Limit(0), 1))

	call := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/cron/expire-promotions", nil)
		req.Header.Set("Authorization", "Bearer s3cret")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call())
	assert.Equal(t, http.StatusTooManyRequests, call())
}
