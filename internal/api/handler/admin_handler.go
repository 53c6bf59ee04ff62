package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cuongbtq/recruitment-be/internal/api/dto"
	"github.com/cuongbtq/recruitment-be/internal/service"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles recruiter management of applications
type AdminHandler struct {
	deps         *Dependencies
	logger       *slog.Logger
	applications *service.ApplicationService
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(deps *Dependencies) *AdminHandler {
	return &AdminHandler{
		deps:         deps,
		logger:       deps.Logger,
		applications: deps.Applications,
	}
}

// ListApplications handles GET /api/v1/admin/applications
// Boosted applications come first, then newest first
func (h *AdminHandler) ListApplications(c *gin.Context) {
	h.logger.Info("ListApplications called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
	)

	var req dto.ListApplicationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			OK:    false,
			Error: bindingMessage(err, "Invalid query parameters"),
		})
		return
	}

	// absent parameters take the defaults, explicit values are validated by the service
	page, limit := 1, h.deps.Listing.DefaultLimit
	if req.Page != nil {
		page = *req.Page
	}
	if req.Limit != nil {
		limit = *req.Limit
	}
	if h.deps.Listing.MaxLimit > 0 && limit > h.deps.Listing.MaxLimit {
		limit = h.deps.Listing.MaxLimit
	}

	apps, pagination, err := h.applications.List(c.Request.Context(), service.ListInput{
		JobID:  req.JobID,
		Status: req.Status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch applications")
		return
	}

	now := h.deps.now()
	items := make([]dto.ApplicationDTO, len(apps))
	for i := range apps {
		items[i] = dto.NewApplicationDTO(&apps[i], now)
	}

	c.JSON(http.StatusOK, dto.ListApplicationsResponse{
		OK:           true,
		Applications: items,
		Pagination: dto.PaginationDTO{
			Page:       pagination.Page,
			Limit:      pagination.Limit,
			Total:      pagination.Total,
			TotalPages: pagination.TotalPages,
		},
	})
}

// GetApplication handles GET /api/v1/admin/applications/:id
func (h *AdminHandler) GetApplication(c *gin.Context) {
	id := c.Param("id")

	app, err := h.applications.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch application")
		return
	}

	c.JSON(http.StatusOK, dto.ApplicationResponse{
		OK:          true,
		Application: dto.NewApplicationDTO(app, h.deps.now()),
	})
}

// UpdateApplicationStatus handles PATCH /api/v1/admin/applications/:id
func (h *AdminHandler) UpdateApplicationStatus(c *gin.Context) {
	id := c.Param("id")

	h.logger.Info("UpdateApplicationStatus called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("application_id", id),
	)

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			OK:    false,
			Error: bindingMessage(err, "Invalid status value"),
		})
		return
	}

	if _, err := h.applications.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, h.logger, err, "Failed to update application")
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		OK:      true,
		Message: "Application status updated successfully",
	})
}

// DeleteApplication handles DELETE /api/v1/admin/applications/:id
func (h *AdminHandler) DeleteApplication(c *gin.Context) {
	id := c.Param("id")

	h.logger.Info("DeleteApplication called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("application_id", id),
	)

	if err := h.applications.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Failed to delete application")
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		OK:      true,
		Message: "Application deleted successfully",
	})
}

// DownloadCV handles GET /api/v1/admin/applications/:id/cv
func (h *AdminHandler) DownloadCV(c *gin.Context) {
	id := c.Param("id")

	cv, err := h.applications.GetCV(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to download CV")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cv.Filename()))
	c.Header("Content-Length", strconv.Itoa(len(cv.Data)))
	c.Data(http.StatusOK, cv.MimeType, cv.Data)
}
