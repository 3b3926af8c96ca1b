package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"classifieds/internal/domain"
	"classifieds/pkg/logger"
)

// AuthMiddleware валидирует JWT от внешнего провайдера аутентификации
type AuthMiddleware struct {
	jwtSecret []byte
	issuer    string
	log       logger.Logger
}

// Claims - user_id, email и роль, выданные провайдером сессий
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthMiddleware(jwtSecret, issuer string, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: []byte(jwtSecret),
		issuer:    issuer,
		log:       log,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := m.parseToken(tokenString)
		if err != nil {
			m.log.Warn("Token validation failed", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			m.log.Debug("Invalid user_id in token", "user_id", claims.UserID, "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
			c.Abort()
			return
		}

		role := claims.Role
		if role == "" {
			role = domain.RoleUser
		}

		c.Set("user_id", userID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", role)
		c.Next()
	}
}

// RequireRole должен стоять после RequireAuth
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_role") != role {
			m.log.Warn("Insufficient role", "required", role, "actual", c.GetString("user_role"), "path", c.Request.URL.Path)
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) parseToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.jwtSecret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token claims")
}

// Actor собирает данные актора для аудита из контекста запроса
func Actor(c *gin.Context) domain.Actor {
	actor := domain.Actor{
		Role:      c.GetString("user_role"),
		IP:        ClientIdentity(c.Request),
		UserAgent: c.Request.UserAgent(),
	}
	if id, ok := c.Get("user_id"); ok {
		if userID, ok := id.(uuid.UUID); ok {
			actor.UserID = userID
		}
	}
	return actor
}
