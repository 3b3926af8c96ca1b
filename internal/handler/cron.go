package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"classifieds/internal/service"
	"classifieds/pkg/logger"
)

// CronHandler - триггеры для внешнего планировщика. Авторизация в middleware.CronAuth.
type CronHandler struct {
	promotionService service.PromotionService
	quotaService     service.QuotaService
	clock            clockwork.Clock
	log              logger.Logger
}

func NewCronHandler(promotionService service.PromotionService, quotaService service.QuotaService, clock clockwork.Clock, log logger.Logger) *CronHandler {
	return &CronHandler{
		promotionService: promotionService,
		quotaService:     quotaService,
		clock:            clock,
		log:              log,
	}
}

func (h *CronHandler) ExpirePromotions(c *gin.Context) {
	result, err := h.promotionService.Sweep(c.Request.Context(), h.clock.Now())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"expiredFeatured": result.ExpiredFeatured,
		"expiredAddOns":   result.ExpiredAddOns,
		"clearedBumps":    result.ClearedBumps,
	})
}

func (h *CronHandler) ResetQuotas(c *gin.Context) {
	result, err := h.quotaService.ResetExpired(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"usersReset":  result.UsersReset,
		"nextResetAt": result.NextResetAt,
	})
}
