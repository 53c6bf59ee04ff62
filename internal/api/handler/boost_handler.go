package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/recruitment-be/internal/api/dto"
	"github.com/cuongbtq/recruitment-be/internal/service"
	"github.com/gin-gonic/gin"
)

// BoostHandler handles boost checkout requests
type BoostHandler struct {
	logger   *slog.Logger
	checkout *service.CheckoutService
}

// NewBoostHandler creates a new BoostHandler instance
func NewBoostHandler(deps *Dependencies) *BoostHandler {
	return &BoostHandler{
		logger:   deps.Logger,
		checkout: deps.Checkout,
	}
}

// CreateCheckout handles POST /api/v1/boost/checkout
// Opens a hosted payment session for the chosen tier. Nothing is stored.
func (h *BoostHandler) CreateCheckout(c *gin.Context) {
	h.logger.Info("CreateCheckout called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			OK:    false,
			Error: bindingMessage(err, "Invalid request body"),
		})
		return
	}

	result, err := h.checkout.CreateCheckout(c.Request.Context(), &service.CheckoutInput{
		ApplicationID: req.ApplicationID,
		Email:         req.Email,
		FullName:      req.FullName,
		JobTitle:      req.JobTitle,
		BoostTier:     req.BoostTier,
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to create checkout session")
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutResponse{
		OK:        true,
		Reference: result.Reference,
		URL:       result.RedirectURL,
	})
}
