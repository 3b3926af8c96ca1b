package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"classifieds/internal/domain"
	"classifieds/internal/middleware"
	"classifieds/internal/service"
	"classifieds/pkg/logger"
)

// AdminHandler - модерация и журнал аудита. Доступ только для роли admin.
type AdminHandler struct {
	moderationService service.ModerationService
	auditService      service.AuditService
	log               logger.Logger
}

func NewAdminHandler(moderationService service.ModerationService, auditService service.AuditService, log logger.Logger) *AdminHandler {
	return &AdminHandler{
		moderationService: moderationService,
		auditService:      auditService,
		log:               log,
	}
}

type ModerateListingRequest struct {
	Decision string `json:"decision" binding:"required"`
	Reason   string `json:"reason"`
}

type BanRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) ModerateListing(c *gin.Context) {
	listingID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req ModerateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.moderationService.ModerateListing(c.Request.Context(), middleware.Actor(c), listingID, domain.ModerationDecision(req.Decision), req.Reason)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *AdminHandler) BanUser(c *gin.Context) {
	h.setBanned(c, true)
}

func (h *AdminHandler) UnbanUser(c *gin.Context) {
	h.setBanned(c, false)
}

func (h *AdminHandler) setBanned(c *gin.Context, banned bool) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req BanRequest
	// Тело необязательно, но если оно есть, оно должно быть валидным JSON
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.moderationService.SetUserBanned(c.Request.Context(), middleware.Actor(c), userID, banned, req.Reason); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "is_banned": banned})
}

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	filter := domain.AuditLogFilter{
		Action:   domain.AuditAction(c.Query("action")),
		Severity: domain.Severity(c.Query("severity")),
	}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}
		filter.Offset = offset
	}

	switch filter.Severity {
	case "", domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid severity"})
		return
	}

	entries, err := h.auditService.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}
