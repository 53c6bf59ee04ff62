package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/recruitment-be/internal/api/dto"
	"github.com/cuongbtq/recruitment-be/shared/apperr"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindMalformedEvent:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {ok:false, error} for err. Internal errors never leak
// their message; fallback is sent instead.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)

	message := apperr.MessageOf(err)
	if kind == apperr.KindInternal {
		message = fallback
	}

	if status >= http.StatusInternalServerError {
		attrs := []any{
			slog.String("path", c.Request.URL.Path),
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		}
		var appErr *apperr.Error
		if errors.As(err, &appErr) && kind == apperr.KindInternal {
			attrs = append(attrs, slog.String("stack", string(appErr.StackTrace())))
		}
		logger.Error(fallback, attrs...)
	} else {
		logger.Info("Request rejected",
			slog.String("path", c.Request.URL.Path),
			slog.String("kind", string(kind)),
			slog.String("error", message),
		)
	}

	c.JSON(status, dto.ErrorResponse{OK: false, Error: message})
}

// bindingMessage turns a gin binding error into a client-facing message
func bindingMessage(err error, fallback string) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fallback
	}

	switch verrs[0].Tag() {
	case "application_status":
		return "Invalid status value"
	case "boost_tier":
		return "Unknown boost tier"
	case "required":
		return "Missing required fields"
	default:
		return fallback
	}
}
