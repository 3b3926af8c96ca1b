package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classifieds/internal/middleware"
	"classifieds/internal/service"
	"classifieds/pkg/logger"
)

type ListingHandler struct {
	listingService service.ListingService
	log            logger.Logger
}

func NewListingHandler(listingService service.ListingService, log logger.Logger) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		log:            log,
	}
}

type CreateListingRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" binding:"min=0"`
	Category    string `json:"category"`
	// Оплаченный слот: объявление не расходует бесплатную квоту
	PaymentID string `json:"payment_id,omitempty"`
}

func (h *ListingHandler) Create(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, quota, err := h.listingService.Create(c.Request.Context(), middleware.Actor(c), service.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		PaymentID:   req.PaymentID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"listing": listing,
		"quota":   quota,
	})
}
