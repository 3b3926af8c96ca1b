package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "classifieds/pkg/errors"
	"classifieds/pkg/logger"
)

// ErrorHandler превращает последнюю ошибку из c.Errors в JSON-ответ.
// Хендлеры кладут ошибку через c.Error и выходят, не записывая тело.
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Проверяем есть ли ошибки
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		statusCode := apperrors.HTTPStatusFromError(err)
		if statusCode >= http.StatusInternalServerError {
			log.Error("Request failed", "path", c.Request.URL.Path, "method", c.Request.Method, "error", err)
		}

		body := gin.H{"error": apperrors.PublicMessage(err)}

		var throttled *apperrors.ThrottledError
		if errors.As(err, &throttled) {
			secs := throttled.RetryAfterSeconds()
			c.Header("Retry-After", strconv.Itoa(secs))
			body["retryAfter"] = secs
			if !throttled.ResetAt.IsZero() {
				body["resetAt"] = throttled.ResetAt
			}
		}

		c.JSON(statusCode, body)
	}
}
