package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const UnknownClient = "unknown"

// Порядок доверия заголовкам прокси
var clientIPHeaders = []string{
	"CF-Connecting-IP",
	"X-Real-IP",
	"X-Client-IP",
}

// ClientIdentity - best-effort IP клиента для ключа лимитера
func ClientIdentity(r *http.Request) string {
	for _, header := range clientIPHeaders {
		if ip := strings.TrimSpace(r.Header.Get(header)); ip != "" {
			return ip
		}
	}

	// Первый адрес в X-Forwarded-For - исходный клиент
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}

	return UnknownClient
}

// RouteKey нормализует маршрут: шаблон gin (/listings/:id), нижний регистр, без завершающего /
func RouteKey(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	route = strings.ToLower(route)
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	return route
}
