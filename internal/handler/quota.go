package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classifieds/internal/service"
	"classifieds/pkg/logger"
)

type QuotaHandler struct {
	quotaService service.QuotaService
	log          logger.Logger
}

func NewQuotaHandler(quotaService service.QuotaService, log logger.Logger) *QuotaHandler {
	return &QuotaHandler{
		quotaService: quotaService,
		log:          log,
	}
}

func (h *QuotaHandler) GetMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	summary, err := h.quotaService.Summary(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
