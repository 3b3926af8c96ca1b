package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"classifieds/internal/domain"
	"classifieds/internal/middleware"
	"classifieds/internal/service"
	"classifieds/pkg/logger"
)

// PaymentHandler принимает подтверждение оплаты продвижения
type PaymentHandler struct {
	promotionService service.PromotionService
	log              logger.Logger
}

func NewPaymentHandler(promotionService service.PromotionService, log logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		promotionService: promotionService,
		log:              log,
	}
}

type CompletePaymentRequest struct {
	PaymentID string `json:"payment_id" binding:"required"`
	ListingID string `json:"listing_id" binding:"required"`
	Product   string `json:"product" binding:"required"`
}

func (h *PaymentHandler) Complete(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	var req CompletePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing_id"})
		return
	}

	result, err := h.promotionService.Activate(c.Request.Context(), middleware.Actor(c), listingID, domain.Product(req.Product), req.PaymentID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
