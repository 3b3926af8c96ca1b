package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"classifieds/internal/config"
)

func TestHealthReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("refused") }

	tests := []struct {
		name   string
		checks map[string]HealthCheck
		want   int
		body   string
	}{
		{"all_ok", map[string]HealthCheck{"postgres": ok, "redis": ok}, http.StatusOK, `{"checks":{"postgres":"ok","redis":"ok"}}`},
		{"redis_down", map[string]HealthCheck{"postgres": ok, "redis": down}, http.StatusServiceUnavailable, `{"checks":{"postgres":"ok","redis":"unavailable"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(&config.Config{Environment: "test"}, tt.checks)
			router := gin.New()
			router.GET("/ready", h.Ready)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.want, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
