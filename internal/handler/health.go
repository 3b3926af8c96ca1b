package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"classifieds/internal/config"
)

// HealthCheck проверяет одну зависимость (БД, Redis)
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	environment string
	checks      map[string]HealthCheck
}

func NewHealthHandler(cfg *config.Config, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{
		environment: cfg.Environment,
		checks:      checks,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"service":     "classifieds",
		"environment": h.environment,
	})
}

// Ready возвращает 503, если хотя бы одна зависимость недоступна
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	c.JSON(status, gin.H{"checks": results})
}
