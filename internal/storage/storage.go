package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cuongbtq/recruitment-be/internal/domain"
	"github.com/cuongbtq/recruitment-be/shared/apperr"
	"github.com/cuongbtq/recruitment-be/shared/postgresql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// DefaultQueryTimeout bounds a statement when none is configured
const DefaultQueryTimeout = 5 * time.Second

// applicationColumns never includes cv_data
const applicationColumns = `
	id, job_id, first_name, last_name, email, phone, cover_letter,
	cv_mime_type, cv_data IS NOT NULL AS has_cv, status, boosted,
	boost_expiry, created_at, updated_at`

// Storage is the application store. Every statement runs under a per-call timeout.
type Storage struct {
	db           *sqlx.DB
	queryTimeout time.Duration
	now          func() time.Time
}

// Option configures a Storage
type Option func(*Storage)

// WithClock overrides the time source used for boost expiry and timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		s.now = now
	}
}

// NewStorage creates a store over the shared connection pool
func NewStorage(pg *postgresql.Client, queryTimeout time.Duration, opts ...Option) *Storage {
	return New(pg.DB(), queryTimeout, opts...)
}

// New creates a store over db
func New(db *sqlx.DB, queryTimeout time.Duration, opts ...Option) *Storage {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}

	s := &Storage{
		db:           db,
		queryTimeout: queryTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.queryTimeout)
}

// ids that are not UUIDs cannot exist in the table
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// CreateApplication inserts app as a new PENDING, unboosted application.
// ID and timestamps are assigned when empty.
func (s *Storage) CreateApplication(ctx context.Context, app *domain.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := s.now().UTC()
	app.Status = domain.StatusPending
	app.Boosted = false
	app.BoostExpiry = nil
	app.CreatedAt = now
	app.UpdatedAt = now
	app.HasCV = len(app.CVData) > 0

	query := `
		INSERT INTO applications (
			id, job_id, first_name, last_name, email, phone, cover_letter,
			cv_data, cv_mime_type, status, boosted, boost_expiry,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14
		)
	`

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(
		ctx,
		query,
		app.ID,
		app.JobID,
		app.FirstName,
		app.LastName,
		app.Email,
		app.Phone,
		app.CoverLetter,
		app.CVData,
		app.CVMimeType,
		app.Status,
		app.Boosted,
		app.BoostExpiry,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// GetApplication returns one application without its CV bytes
func (s *Storage) GetApplication(ctx context.Context, id string) (*domain.Application, error) {
	if !validID(id) {
		return nil, apperr.NotFound("Application not found")
	}

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var app domain.Application
	if err := s.db.GetContext(ctx, &app, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Application not found")
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &app, nil
}

// GetApplicationCV returns the stored CV bytes with the names used for the download filename
func (s *Storage) GetApplicationCV(ctx context.Context, id string) (*domain.CV, error) {
	if !validID(id) {
		return nil, apperr.NotFound("Application not found")
	}

	query := `
		SELECT cv_data, COALESCE(cv_mime_type, '') AS cv_mime_type, first_name, last_name
		FROM applications
		WHERE id = $1
	`

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var cv domain.CV
	if err := s.db.GetContext(ctx, &cv, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Application not found")
		}
		return nil, fmt.Errorf("failed to get application cv: %w", err)
	}

	if len(cv.Data) == 0 {
		return nil, apperr.NotFound("CV not found")
	}

	return &cv, nil
}

// UpdateApplicationStatus sets the review status
func (s *Storage) UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus) (*domain.Application, error) {
	if !status.Valid() {
		return nil, apperr.Validation("Invalid status value")
	}
	if !validID(id) {
		return nil, apperr.NotFound("Application not found")
	}

	query := `
		UPDATE applications
		SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + applicationColumns

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var app domain.Application
	if err := s.db.GetContext(ctx, &app, query, id, status, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Application not found")
		}
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	return &app, nil
}

// GrantBoost sets boosted=true and boost_expiry=now+days in one row update.
// A repeated grant overwrites the expiry instead of extending it.
func (s *Storage) GrantBoost(ctx context.Context, id string, days int) (*domain.Application, error) {
	if !domain.ValidBoostDays(days) {
		return nil, apperr.Validation(fmt.Sprintf("boost days must be between 1 and %d, got %d", domain.MaxBoostDays, days))
	}
	if !validID(id) {
		return nil, apperr.NotFound("Application not found")
	}

	now := s.now().UTC()
	expiry := domain.BoostExpiryFrom(now, days)

	query := `
		UPDATE applications
		SET boosted = TRUE, boost_expiry = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + applicationColumns

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var app domain.Application
	if err := s.db.GetContext(ctx, &app, query, id, expiry, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Application not found")
		}
		return nil, fmt.Errorf("failed to grant boost: %w", err)
	}

	return &app, nil
}

// ListFilter selects a page of applications
type ListFilter struct {
	JobID            string
	Status           domain.ApplicationStatus
	Page             int
	Limit            int
	ActiveBoostFirst bool
}

// ListApplications returns one ranked page and the total number of matching rows
func (s *Storage) ListApplications(ctx context.Context, filter ListFilter) ([]domain.Application, int, error) {
	if filter.Page < 1 {
		return nil, 0, apperr.Validation("page must be at least 1")
	}
	if filter.Limit < 1 {
		return nil, 0, apperr.Validation("limit must be at least 1")
	}

	where := " WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.JobID != "" {
		where += fmt.Sprintf(" AND job_id = $%d", argIdx)
		args = append(args, filter.JobID)
		argIdx++
	}

	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM applications"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	query := "SELECT " + applicationColumns + " FROM applications" + where

	if filter.ActiveBoostFirst {
		query += fmt.Sprintf(" ORDER BY (boosted AND boost_expiry IS NOT NULL AND boost_expiry > $%d) DESC, created_at DESC, id DESC", argIdx)
		args = append(args, s.now().UTC())
		argIdx++
	} else {
		query += " ORDER BY boosted DESC, created_at DESC, id DESC"
	}

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	apps := []domain.Application{}
	if err := s.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}

	return apps, total, nil
}

// DeleteApplication removes an application permanently
func (s *Storage) DeleteApplication(ctx context.Context, id string) error {
	if !validID(id) {
		return apperr.NotFound("Application not found")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("Application not found")
	}

	return nil
}
