package dto

import (
	"mime/multipart"
	"time"

	"github.com/cuongbtq/recruitment-be/internal/domain"
)

// SubmitApplicationForm is the multipart body of POST /api/v1/applications
type SubmitApplicationForm struct {
	JobID           string                `form:"jobId"`
	JobTitle        string                `form:"jobTitle"`
	FullName        string                `form:"fullName"`
	Email           string                `form:"email"`
	Phone           string                `form:"phone"`
	Location        string                `form:"location"`
	LinkedinURL     string                `form:"linkedinUrl"`
	PortfolioURL    string                `form:"portfolioUrl"`
	AdditionalInfo  string                `form:"additionalInfo"`
	WantBoost       string                `form:"wantBoost"`
	AgreedToPrivacy string                `form:"agreedToPrivacy"`
	CV              *multipart.FileHeader `form:"cv"`
}

type SubmitApplicationResponse struct {
	OK                 bool   `json:"ok"`
	Message            string `json:"message"`
	ApplicationID      string `json:"applicationId"`
	RecruiterEmailSent bool   `json:"recruiterEmailSent"`
	CandidateEmailSent bool   `json:"candidateEmailSent"`
	EmailError         string `json:"emailError,omitempty"`
	EmailQueued        bool   `json:"emailQueued"`
}

type ListApplicationsRequest struct {
	JobID  string `form:"jobId"`
	Status string `form:"status" binding:"omitempty,application_status"`
	Page   *int   `form:"page"`
	Limit  *int   `form:"limit"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"application_status"`
}

// ApplicationDTO is an application as returned by the admin API. CV bytes are never included.
type ApplicationDTO struct {
	ID          string     `json:"id"`
	JobID       string     `json:"jobId"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Phone       *string    `json:"phone"`
	CoverLetter *string    `json:"coverLetter"`
	CVMimeType  string     `json:"cvMimeType,omitempty"`
	HasCV       bool       `json:"hasCv"`
	Status      string     `json:"status"`
	Boosted     bool       `json:"boosted"`
	BoostExpiry *time.Time `json:"boostExpiry"`
	BoostActive bool       `json:"boostActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewApplicationDTO converts a stored application, evaluating boost activity at now
func NewApplicationDTO(app *domain.Application, now time.Time) ApplicationDTO {
	return ApplicationDTO{
		ID:          app.ID,
		JobID:       app.JobID,
		FirstName:   app.FirstName,
		LastName:    app.LastName,
		Email:       app.Email,
		Phone:       app.Phone,
		CoverLetter: app.CoverLetter,
		CVMimeType:  app.CVMimeType,
		HasCV:       app.HasCV,
		Status:      string(app.Status),
		Boosted:     app.Boosted,
		BoostExpiry: app.BoostExpiry,
		BoostActive: app.BoostActive(now),
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
	}
}

type PaginationDTO struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type ListApplicationsResponse struct {
	OK           bool             `json:"ok"`
	Applications []ApplicationDTO `json:"applications"`
	Pagination   PaginationDTO    `json:"pagination"`
}

type ApplicationResponse struct {
	OK          bool           `json:"ok"`
	Application ApplicationDTO `json:"application"`
}

type MessageResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
