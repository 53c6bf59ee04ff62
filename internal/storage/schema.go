package storage

import (
	"context"
	"fmt"

	"github.com/cuongbtq/recruitment-be/shared/postgresql"
	"github.com/jmoiron/sqlx"
)

// Schema creates the applications table and its listing index
const Schema = `
CREATE TABLE IF NOT EXISTS applications (
	id            UUID PRIMARY KEY,
	job_id        TEXT NOT NULL,
	first_name    TEXT NOT NULL,
	last_name     TEXT NOT NULL,
	email         TEXT NOT NULL,
	phone         TEXT,
	cover_letter  TEXT,
	cv_data       BYTEA,
	cv_mime_type  TEXT,
	status        TEXT NOT NULL DEFAULT 'PENDING'
		CHECK (status IN ('PENDING', 'REVIEWING', 'SHORTLISTED', 'INTERVIEWED', 'REJECTED', 'ACCEPTED')),
	boosted       BOOLEAN NOT NULL DEFAULT FALSE,
	boost_expiry  TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT boosted_has_expiry CHECK (NOT boosted OR boost_expiry IS NOT NULL)
);

CREATE INDEX IF NOT EXISTS idx_applications_ranking
	ON applications (boosted DESC, created_at DESC);

CREATE INDEX IF NOT EXISTS idx_applications_job_id
	ON applications (job_id);
`

// Migrate applies Schema in one transaction. Statements are idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	return postgresql.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, Schema); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
		return nil
	})
}
