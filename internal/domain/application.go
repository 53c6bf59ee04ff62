package domain

import (
	"time"

	"github.com/cuongbtq/recruitment-be/shared/apperr"
)

// ApplicationStatus is the review state of an application
type ApplicationStatus string

// Application status constants
const (
	StatusPending     ApplicationStatus = "PENDING"
	StatusReviewing   ApplicationStatus = "REVIEWING"
	StatusShortlisted ApplicationStatus = "SHORTLISTED"
	StatusInterviewed ApplicationStatus = "INTERVIEWED"
	StatusRejected    ApplicationStatus = "REJECTED"
	StatusAccepted    ApplicationStatus = "ACCEPTED"
)

// AllStatuses lists every valid status in display order
var AllStatuses = []ApplicationStatus{
	StatusPending,
	StatusReviewing,
	StatusShortlisted,
	StatusInterviewed,
	StatusRejected,
	StatusAccepted,
}

// Valid reports whether s is one of the defined statuses
func (s ApplicationStatus) Valid() bool {
	for _, status := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ParseStatus converts a raw value into an ApplicationStatus
func ParseStatus(value string) (ApplicationStatus, error) {
	status := ApplicationStatus(value)
	if !status.Valid() {
		return "", apperr.Validation("Invalid status value")
	}
	return status, nil
}

// CV size and type limits
const (
	MaxCVSize = 10 * 1024 * 1024

	MimePDF  = "application/pdf"
	MimeDoc  = "application/msword"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var cvExtensions = map[string]string{
	MimePDF:  "pdf",
	MimeDoc:  "doc",
	MimeDocx: "docx",
}

// AllowedCVType reports whether mimeType may be stored as a CV
func AllowedCVType(mimeType string) bool {
	_, ok := cvExtensions[mimeType]
	return ok
}

// CVExtension returns the file extension for a stored CV MIME type
func CVExtension(mimeType string) string {
	if ext, ok := cvExtensions[mimeType]; ok {
		return ext
	}
	return "pdf"
}

// Application is one candidate's submission to one job posting
type Application struct {
	ID          string            `db:"id"`
	JobID       string            `db:"job_id"`
	FirstName   string            `db:"first_name"`
	LastName    string            `db:"last_name"`
	Email       string            `db:"email"`
	Phone       *string           `db:"phone"`
	CoverLetter *string           `db:"cover_letter"`
	CVData      []byte            `db:"cv_data"`
	CVMimeType  string            `db:"cv_mime_type"`
	HasCV       bool              `db:"has_cv"`
	Status      ApplicationStatus `db:"status"`
	Boosted     bool              `db:"boosted"`
	BoostExpiry *time.Time        `db:"boost_expiry"`
	CreatedAt   time.Time         `db:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at"`
}

// CV is the stored attachment of an application
type CV struct {
	Data      []byte `db:"cv_data"`
	MimeType  string `db:"cv_mime_type"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}

// Filename derives the download name of the CV
func (cv *CV) Filename() string {
	return cv.FirstName + "_" + cv.LastName + "_CV." + CVExtension(cv.MimeType)
}
