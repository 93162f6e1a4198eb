package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"lexscribe/internal/api/errors"
	"lexscribe/internal/api/middleware"
	"lexscribe/internal/api/v1/dto"
	"lexscribe/internal/api/v1/services"
)

// maxNotificationBytes bounds the payment notification body
const maxNotificationBytes = 64 << 10

// SubscriptionHandler handles subscription and payment endpoints
type SubscriptionHandler struct {
	service services.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(service services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
	}
}

// Checkout handles POST /api/subscription/checkout
func (h *SubscriptionHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest

	// Validate request
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.Checkout(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Cancel handles POST /api/subscription/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	response, err := h.service.Cancel(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Notify handles POST /api/subscription/notify, the payment gateway webhook.
// The raw body is kept because the signature covers the fields in sent order.
func (h *SubscriptionHandler) Notify(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxNotificationBytes))
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("Can't read notification body"))
		return
	}

	if err := h.service.Notify(c.Request.Context(), c.ClientIP(), body); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NotifyResponse{Received: true})
}

// Status handles GET /api/subscription/status
func (h *SubscriptionHandler) Status(c *gin.Context) {
	response, err := h.service.Status(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Usage handles GET /api/subscription/usage
func (h *SubscriptionHandler) Usage(c *gin.Context) {
	response, err := h.service.Usage(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
