package handler

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/cuongbtq/recruitment-be/internal/api/dto"
	"github.com/cuongbtq/recruitment-be/internal/domain"
	"github.com/cuongbtq/recruitment-be/internal/service"
	"github.com/cuongbtq/recruitment-be/shared/apperr"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// ApplicationHandler handles candidate application intake
type ApplicationHandler struct {
	logger       *slog.Logger
	applications *service.ApplicationService
}

// NewApplicationHandler creates a new ApplicationHandler instance
func NewApplicationHandler(deps *Dependencies) *ApplicationHandler {
	return &ApplicationHandler{
		logger:       deps.Logger,
		applications: deps.Applications,
	}
}

// SubmitApplication handles POST /api/v1/applications
// Stores the application with its CV, then emails the recruiter and the candidate
func (h *ApplicationHandler) SubmitApplication(c *gin.Context) {
	h.logger.Info("SubmitApplication called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	var form dto.SubmitApplicationForm
	if err := c.ShouldBindWith(&form, binding.FormMultipart); err != nil {
		h.logger.Error("Invalid multipart form", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{OK: false, Error: "Invalid form data"})
		return
	}

	input := &service.SubmitInput{
		JobID:           form.JobID,
		JobTitle:        form.JobTitle,
		FullName:        form.FullName,
		Email:           form.Email,
		Phone:           form.Phone,
		Location:        form.Location,
		LinkedinURL:     form.LinkedinURL,
		PortfolioURL:    form.PortfolioURL,
		AdditionalInfo:  form.AdditionalInfo,
		WantBoost:       formBool(form.WantBoost),
		AgreedToPrivacy: formBool(form.AgreedToPrivacy),
	}

	if form.CV != nil {
		data, err := readCV(form.CV)
		if err != nil {
			respondError(c, h.logger, apperr.Internal("failed to read CV", err), "Failed to process application")
			return
		}
		input.CV = data
		input.CVMimeType = form.CV.Header.Get("Content-Type")
	}

	result, err := h.applications.Submit(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err, "Failed to process application")
		return
	}

	c.JSON(http.StatusOK, dto.SubmitApplicationResponse{
		OK:                 true,
		Message:            "Application submitted successfully",
		ApplicationID:      result.ApplicationID,
		RecruiterEmailSent: result.RecruiterEmailSent,
		CandidateEmailSent: result.CandidateEmailSent,
		EmailError:         result.EmailError,
		EmailQueued:        result.EmailQueued,
	})
}

// readCV reads at most one byte past the size limit so oversized files are
// rejected by validation without buffering them whole
func readCV(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, domain.MaxCVSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

// formBool accepts the values browsers and form libraries send for a checked box
func formBool(value string) bool {
	if value == "on" {
		return true
	}
	b, _ := strconv.ParseBool(value)
	return b
}
