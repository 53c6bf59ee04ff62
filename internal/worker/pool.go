package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/recruitment-be/internal/domain"
	wdomain "github.com/cuongbtq/recruitment-be/internal/worker/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop is the main processing loop for each worker goroutine
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Debug("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		select {
		case <-w.stopChan:
			w.logger.Debug("Worker goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			w.logger.Debug("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg, ok := <-w.tasksChan:
			if !ok {
				w.logger.Debug("Worker goroutine stopping - tasksChan closed",
					slog.String("worker_name", workerName),
				)
				return
			}

			w.logger.Info("Worker received task",
				slog.String("worker_name", workerName),
				slog.String("type", string(msg.Task.Type)),
				slog.String("application_id", msg.Task.ApplicationID),
				slog.Int("attempt", msg.Task.Attempt),
			)

			err := w.processTask(ctx, msg)
			w.settle(ctx, workerName, msg, err)
		}
	}
}

// settle acks, retries or dead-letters the delivery according to
// wdomain.Classify. A retry that cannot be published goes back on the queue.
func (w *Worker) settle(ctx context.Context, workerName string, msg *wdomain.TaskMessage, err error) {
	attrs := []any{
		slog.String("worker_name", workerName),
		slog.String("type", string(msg.Task.Type)),
		slog.String("application_id", msg.Task.ApplicationID),
		slog.Int("attempt", msg.Task.Attempt),
	}

	disposition := wdomain.Classify(err, msg.Task.Attempt, w.maxAttempts)
	if err != nil {
		w.logger.Error("Task processing failed", append(attrs,
			slog.String("disposition", disposition.String()),
			slog.String("error", err.Error()),
		)...)
	}

	switch disposition {
	case wdomain.Complete:
		w.ack(msg, attrs)

	case wdomain.Retry:
		if pubErr := w.reschedule(ctx, msg.Task); pubErr != nil {
			w.logger.Error("Failed to reschedule task",
				append(attrs, slog.String("error", pubErr.Error()))...,
			)
			w.nack(msg, true, attrs)
			return
		}
		w.ack(msg, attrs)

	default:
		var retryable *wdomain.RetryableError
		if errors.As(err, &retryable) && msg.Task.Attempt >= w.maxAttempts {
			w.logger.Error("Task dropped",
				append(attrs, slog.String("error", fmt.Errorf("%w: %v", wdomain.ErrMaxAttemptsExceeded, err).Error()))...,
			)
		}
		w.nack(msg, false, attrs)
	}
}

// reschedule waits retryDelay times the attempt number, then queues the next attempt
func (w *Worker) reschedule(ctx context.Context, task domain.Task) error {
	delay := w.retryDelay * time.Duration(task.Attempt)
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopChan:
			return errors.New("worker stopping")
		}
	}

	next := task.NextAttempt()
	if err := w.queue.PublishJSON(ctx, next); err != nil {
		return err
	}

	w.logger.Info("Task rescheduled",
		slog.String("type", string(next.Type)),
		slog.String("application_id", next.ApplicationID),
		slog.Int("attempt", next.Attempt),
	)
	return nil
}

func (w *Worker) ack(msg *wdomain.TaskMessage, attrs []any) {
	if err := w.queue.Ack(msg.DeliveryTag); err != nil {
		w.logger.Error("Failed to ACK message", append(attrs, slog.String("error", err.Error()))...)
	}
}

func (w *Worker) nack(msg *wdomain.TaskMessage, requeue bool, attrs []any) {
	if err := w.queue.Nack(msg.DeliveryTag, requeue); err != nil {
		w.logger.Error("Failed to NACK message", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	w.logger.Info("Message NACKed", append(attrs, slog.Bool("requeue", requeue))...)
}
