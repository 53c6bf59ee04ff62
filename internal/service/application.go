package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/cuongbtq/recruitment-be/internal/domain"
	"github.com/cuongbtq/recruitment-be/internal/notify"
	"github.com/cuongbtq/recruitment-be/internal/storage"
	"github.com/cuongbtq/recruitment-be/shared/apperr"
	"github.com/cuongbtq/recruitment-be/shared/logger"
	"github.com/cuongbtq/recruitment-be/shared/mailer"
)

// EmailFailedMessage is reported to the candidate when the application was saved but email failed
const EmailFailedMessage = "Email delivery failed (SMTP/DNS). Application saved."

// SubmitInput is one application form submission
type SubmitInput struct {
	JobID           string
	JobTitle        string
	FullName        string
	Email           string
	Phone           string
	Location        string
	LinkedinURL     string
	PortfolioURL    string
	AdditionalInfo  string
	WantBoost       bool
	AgreedToPrivacy bool
	CV              []byte
	CVMimeType      string
}

// SubmitResult reports the stored application and the email outcome
type SubmitResult struct {
	ApplicationID      string
	RecruiterEmailSent bool
	CandidateEmailSent bool
	EmailError         string
	EmailQueued        bool
}

// ListInput selects one admin page
type ListInput struct {
	JobID  string
	Status string
	Page   int
	Limit  int
}

// Pagination describes a listing page
type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// ApplicationService handles intake and admin management of applications
type ApplicationService struct {
	store             ApplicationStore
	notifier          SubmissionNotifier
	publisher         TaskPublisher
	rankByActiveBoost bool
	now               Clock
	logger            *slog.Logger
}

// ApplicationServiceConfig wires an ApplicationService. Publisher may be nil.
type ApplicationServiceConfig struct {
	Store             ApplicationStore
	Notifier          SubmissionNotifier
	Publisher         TaskPublisher
	RankByActiveBoost bool
	Clock             Clock
	Logger            *slog.Logger
}

// NewApplicationService creates an ApplicationService
func NewApplicationService(cfg ApplicationServiceConfig) *ApplicationService {
	now := cfg.Clock
	if now == nil {
		now = defaultClock
	}
	return &ApplicationService{
		store:             cfg.Store,
		notifier:          cfg.Notifier,
		publisher:         cfg.Publisher,
		rankByActiveBoost: cfg.RankByActiveBoost,
		now:               now,
		logger:            cfg.Logger,
	}
}

// SplitFullName returns the first token as first name and the rest as last name.
// A single token is used for both.
func SplitFullName(fullName string) (string, string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], parts[0]
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func validateSubmission(in *SubmitInput) error {
	if strings.TrimSpace(in.JobID) == "" ||
		strings.TrimSpace(in.JobTitle) == "" ||
		strings.TrimSpace(in.FullName) == "" ||
		strings.TrimSpace(in.Email) == "" {
		return apperr.Validation("Missing required fields")
	}
	if !in.AgreedToPrivacy {
		return apperr.Validation("Privacy policy consent is required")
	}
	if len(in.CV) == 0 {
		return apperr.Validation("CV is required")
	}
	if len(in.CV) > domain.MaxCVSize {
		return apperr.Validation("File size exceeds 10MB limit")
	}
	if !domain.AllowedCVType(in.CVMimeType) {
		return apperr.Validation("Only PDF and DOCX files are allowed")
	}
	return nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// Submit validates and stores an application, then sends the submission emails.
// Email failure never fails the submission.
func (s *ApplicationService) Submit(ctx context.Context, in *SubmitInput) (*SubmitResult, error) {
	if err := validateSubmission(in); err != nil {
		return nil, err
	}

	firstName, lastName := SplitFullName(in.FullName)
	app := &domain.Application{
		JobID:       strings.TrimSpace(in.JobID),
		FirstName:   firstName,
		LastName:    lastName,
		Email:       strings.TrimSpace(in.Email),
		Phone:       optional(in.Phone),
		CoverLetter: optional(in.AdditionalInfo),
		CVData:      in.CV,
		CVMimeType:  in.CVMimeType,
	}

	if err := s.store.CreateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}

	s.logger.Info("Application submitted",
		slog.String("application_id", app.ID),
		slog.String("job_id", app.JobID),
		logger.Email("email", app.Email),
		slog.Bool("want_boost", in.WantBoost),
	)

	result := &SubmitResult{ApplicationID: app.ID}

	sent := s.notifier.NotifySubmission(ctx, &notify.Submission{
		ApplicationID:  app.ID,
		JobID:          app.JobID,
		JobTitle:       in.JobTitle,
		FullName:       strings.TrimSpace(in.FullName),
		Email:          app.Email,
		Phone:          in.Phone,
		Location:       in.Location,
		LinkedinURL:    in.LinkedinURL,
		PortfolioURL:   in.PortfolioURL,
		AdditionalInfo: in.AdditionalInfo,
		WantBoost:      in.WantBoost,
		CVData:         in.CV,
		CVMimeType:     in.CVMimeType,
		SubmittedAt:    app.CreatedAt,
	})
	result.RecruiterEmailSent = sent.RecruiterSent
	result.CandidateEmailSent = sent.CandidateSent

	switch {
	case sent.Err == nil:
	case errors.Is(sent.Err, mailer.ErrNotConfigured):
		// nothing was attempted, nothing to retry
	default:
		result.EmailError = EmailFailedMessage
		result.EmailQueued = s.queueEmailRetry(ctx, app.ID, in.JobTitle, failedRecipients(sent))
	}

	return result, nil
}

// failedRecipients lists the emails a retry has to send, so a delivered
// email is never sent twice
func failedRecipients(sent notify.Result) []domain.EmailRecipient {
	var recipients []domain.EmailRecipient
	if !sent.RecruiterSent {
		recipients = append(recipients, domain.RecipientRecruiter)
	}
	if !sent.CandidateSent {
		recipients = append(recipients, domain.RecipientCandidate)
	}
	return recipients
}

func (s *ApplicationService) queueEmailRetry(ctx context.Context, applicationID, jobTitle string, recipients []domain.EmailRecipient) bool {
	if s.publisher == nil || len(recipients) == 0 {
		return false
	}

	task := domain.Task{
		Type:          domain.TaskApplicationEmail,
		ApplicationID: applicationID,
		JobTitle:      jobTitle,
		Recipients:    recipients,
		Attempt:       1,
	}
	if err := s.publisher.PublishJSON(ctx, task); err != nil {
		s.logger.Error("Failed to queue application email retry",
			slog.String("application_id", applicationID),
			slog.Any("error", err),
		)
		return false
	}

	s.logger.Info("Application email retry queued",
		slog.String("application_id", applicationID),
		slog.Any("recipients", recipients),
	)
	return true
}

// ResendSubmissionEmails reloads a stored application and sends the selected
// emails again. Used by the worker service.
func (s *ApplicationService) ResendSubmissionEmails(ctx context.Context, applicationID, jobTitle string, recipients []domain.EmailRecipient) error {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return err
	}

	sub := &notify.Submission{
		ApplicationID: app.ID,
		JobID:         app.JobID,
		JobTitle:      jobTitle,
		FullName:      fullName(app),
		Email:         app.Email,
		SubmittedAt:   app.CreatedAt,
		Recipients:    recipients,
	}
	if app.Phone != nil {
		sub.Phone = *app.Phone
	}
	if app.CoverLetter != nil {
		sub.AdditionalInfo = *app.CoverLetter
	}
	if sub.JobTitle == "" {
		sub.JobTitle = app.JobID
	}

	// only the recruiter email carries the CV
	if app.HasCV && domain.IncludesRecipient(recipients, domain.RecipientRecruiter) {
		cv, err := s.store.GetApplicationCV(ctx, applicationID)
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			return err
		}
		if cv != nil {
			sub.CVData = cv.Data
			sub.CVMimeType = cv.MimeType
		}
	}

	result := s.notifier.NotifySubmission(ctx, sub)
	if result.Err != nil {
		return fmt.Errorf("failed to resend submission emails: %w", result.Err)
	}
	return nil
}

func fullName(app *domain.Application) string {
	if app.FirstName == app.LastName {
		return app.FirstName
	}
	return app.FirstName + " " + app.LastName
}

// Get returns one application without CV bytes
func (s *ApplicationService) Get(ctx context.Context, id string) (*domain.Application, error) {
	return s.store.GetApplication(ctx, id)
}

// GetCV returns the stored CV of an application
func (s *ApplicationService) GetCV(ctx context.Context, id string) (*domain.CV, error) {
	return s.store.GetApplicationCV(ctx, id)
}

// UpdateStatus changes the review status of an application
func (s *ApplicationService) UpdateStatus(ctx context.Context, id, status string) (*domain.Application, error) {
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	app, err := s.store.UpdateApplicationStatus(ctx, id, parsed)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Application status updated",
		slog.String("application_id", id),
		slog.String("status", string(parsed)),
	)
	return app, nil
}

// Delete removes an application
func (s *ApplicationService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteApplication(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Application deleted",
		slog.String("application_id", id),
	)
	return nil
}

// List returns one page ranked boosted-first then newest-first
func (s *ApplicationService) List(ctx context.Context, in ListInput) ([]domain.Application, Pagination, error) {
	if in.Page < 1 {
		return nil, Pagination{}, apperr.Validation("page must be at least 1")
	}
	if in.Limit < 1 {
		return nil, Pagination{}, apperr.Validation("limit must be at least 1")
	}

	filter := storage.ListFilter{
		JobID:            in.JobID,
		Page:             in.Page,
		Limit:            in.Limit,
		ActiveBoostFirst: s.rankByActiveBoost,
	}
	if in.Status != "" {
		status, err := domain.ParseStatus(in.Status)
		if err != nil {
			return nil, Pagination{}, err
		}
		filter.Status = status
	}

	apps, total, err := s.store.ListApplications(ctx, filter)
	if err != nil {
		return nil, Pagination{}, err
	}

	domain.RankApplications(apps, domain.RankOptions{
		ActiveBoostFirst: s.rankByActiveBoost,
		Now:              s.now(),
	})

	return apps, Pagination{
		Page:       in.Page,
		Limit:      in.Limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(in.Limit))),
	}, nil
}
