package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"classifieds/internal/domain"
	"classifieds/internal/metrics"
	"classifieds/internal/service"
	apperrors "classifieds/pkg/errors"
	"classifieds/pkg/logger"
)

type RateLimitMiddleware struct {
	rateLimitService service.RateLimitService
	presets          map[string]domain.RateLimitConfig
	metrics          *metrics.Metrics
	log              logger.Logger
}

func NewRateLimitMiddleware(rateLimitService service.RateLimitService, presets map[string]domain.RateLimitConfig, m *metrics.Metrics, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		presets:          presets,
		metrics:          m,
		log:              log,
	}
}

// Limit ограничивает маршрут пресетом; неизвестный пресет - "api"
func (m *RateLimitMiddleware) Limit(preset string) gin.HandlerFunc {
	cfg, ok := m.presets[preset]
	if !ok {
		cfg, ok = m.presets[domain.RateLimitPresetAPI]
	}
	if !ok {
		cfg = domain.DefaultRateLimitPresets[domain.RateLimitPresetAPI]
	}
	return m.LimitWith(cfg)
}

func (m *RateLimitMiddleware) LimitWith(cfg domain.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := RouteKey(c)
		key := route + ":" + ClientIdentity(c.Request)

		decision, err := m.rateLimitService.Check(c.Request.Context(), key, cfg)
		if err != nil {
			m.log.Error("Rate limit check failed", "error", err, "route", route)
			c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.InternalMessage})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.UnixMilli(), 10))

		if !decision.Allowed {
			m.metrics.RateLimitDecisions.WithLabelValues(route, "denied").Inc()
			m.log.Warn("Rate limit exceeded", "route", route, "client", ClientIdentity(c.Request), "retry_after", decision.RetryAfterSeconds)

			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(decision.RetryAfterSeconds))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "Too many requests, please try again later",
				"retryAfter": decision.RetryAfterSeconds,
			})
			c.Abort()
			return
		}

		m.metrics.RateLimitDecisions.WithLabelValues(route, "allowed").Inc()
		c.Next()
	}
}
