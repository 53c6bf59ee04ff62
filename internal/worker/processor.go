package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/recruitment-be/internal/domain"
	wdomain "github.com/cuongbtq/recruitment-be/internal/worker/domain"
	"github.com/cuongbtq/recruitment-be/shared/apperr"
	"github.com/cuongbtq/recruitment-be/shared/mailer"
	"github.com/cuongbtq/recruitment-be/shared/telemetry"
)

const defaultTaskTimeout = 30 * time.Second

// processTask runs one task under the task timeout. A task already started
// is allowed to finish when the worker is shutting down.
func (w *Worker) processTask(ctx context.Context, msg *wdomain.TaskMessage) error {
	timeout := w.taskTimeout
	if timeout <= 0 {
		timeout = defaultTaskTimeout
	}

	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	taskCtx, span := telemetry.GetTracer("worker").Start(taskCtx, "worker.task")
	defer span.End()
	span.SetAttributes(
		telemetry.String("type", string(msg.Task.Type)),
		telemetry.String("application_id", msg.Task.ApplicationID),
		telemetry.Int("attempt", msg.Task.Attempt),
	)

	var err error
	switch msg.Task.Type {
	case domain.TaskBoostGrant:
		err = w.grantBoost(taskCtx, msg.Task)
	case domain.TaskApplicationEmail:
		err = w.resendEmails(taskCtx, msg.Task)
	default:
		err = fmt.Errorf("%w: unknown type %q", wdomain.ErrInvalidTask, msg.Task.Type)
	}

	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}

func (w *Worker) grantBoost(ctx context.Context, task domain.Task) error {
	app, err := w.boosts.GrantBoost(ctx, task.ApplicationID, task.BoostDays)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) || apperr.Is(err, apperr.KindValidation) {
			return fmt.Errorf("%w: %v", wdomain.ErrTaskRejected, err)
		}
		return wdomain.NewRetryableError(fmt.Errorf("failed to grant boost: %w", err))
	}

	w.logger.Info("Deferred boost granted",
		slog.String("application_id", task.ApplicationID),
		slog.String("reference", task.Reference),
		slog.Int("boost_days", task.BoostDays),
		slog.Any("boost_expiry", app.BoostExpiry),
		slog.Int("attempt", task.Attempt),
	)
	return nil
}

func (w *Worker) resendEmails(ctx context.Context, task domain.Task) error {
	err := w.emails.ResendSubmissionEmails(ctx, task.ApplicationID, task.JobTitle, task.Recipients)
	if err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) || apperr.Is(err, apperr.KindNotFound) {
			return fmt.Errorf("%w: %v", wdomain.ErrTaskRejected, err)
		}
		return wdomain.NewRetryableError(err)
	}

	w.logger.Info("Submission emails resent",
		slog.String("application_id", task.ApplicationID),
		slog.Int("attempt", task.Attempt),
	)
	return nil
}
