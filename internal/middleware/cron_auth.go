package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"classifieds/pkg/logger"
)

// CronAuth защищает триггеры планировщика: Bearer-токен должен совпасть с секретом.
// limiter (может быть nil) ограничивает частоту вызовов на процесс.
func CronAuth(secret string, limiter *rate.Limiter, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			log.Warn("Cron trigger rejected", "path", c.Request.URL.Path, "client", ClientIdentity(c.Request))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		if limiter != nil && !limiter.Allow() {
			log.Warn("Cron trigger throttled", "path", c.Request.URL.Path)
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later", "retryAfter": 1})
			c.Abort()
			return
		}

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
