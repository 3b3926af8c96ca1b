package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "classifieds/pkg/errors"
)

// currentUserID достает пользователя, положенного AuthMiddleware
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		_ = c.Error(apperrors.ErrUnauthorized)
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	if !ok {
		_ = c.Error(apperrors.ErrUnauthorized)
		return uuid.Nil, false
	}
	return id, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		_ = c.Error(apperrors.NewAPIError("invalid "+name, http.StatusBadRequest))
		return uuid.Nil, false
	}
	return id, true
}
