package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/recruitment-be/internal/api/dto"
	"github.com/cuongbtq/recruitment-be/internal/service"
	"github.com/cuongbtq/recruitment-be/shared/apperr"
	"github.com/cuongbtq/recruitment-be/shared/paystack"
	"github.com/gin-gonic/gin"
)

// WebhookHandler receives payment provider notifications
type WebhookHandler struct {
	logger  *slog.Logger
	webhook *service.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler instance
func NewWebhookHandler(deps *Dependencies) *WebhookHandler {
	return &WebhookHandler{
		logger:  deps.Logger,
		webhook: deps.Webhook,
	}
}

// Paystack handles POST /api/v1/webhooks/paystack
// The body is read raw because the signature covers the exact bytes sent.
// Every verified event gets 200 so the provider stops retrying.
func (h *WebhookHandler) Paystack(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.logger.Error("Failed to read webhook body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.WebhookErrorResponse{Error: "Invalid body"})
		return
	}

	outcome, err := h.webhook.Handle(c.Request.Context(), body, c.GetHeader(paystack.SignatureHeader), c.ClientIP())
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			c.JSON(http.StatusUnauthorized, dto.WebhookErrorResponse{Error: apperr.MessageOf(err)})
			return
		}
		h.logger.Error("Webhook processing failed", slog.Any("error", err))
	}

	h.logger.Debug("Webhook acknowledged", slog.String("outcome", string(outcome)))
	c.JSON(http.StatusOK, dto.WebhookResponse{Received: true})
}
