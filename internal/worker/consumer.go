package worker

import (
	"context"
	"fmt"
	"log/slog"

	wdomain "github.com/cuongbtq/recruitment-be/internal/worker/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// setupConsumer applies the prefetch limit and opens the delivery stream
func (w *Worker) setupConsumer() (<-chan amqp.Delivery, error) {
	if err := w.queue.SetQos(w.prefetchCount); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := w.queue.Consume(w.workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	w.logger.Info("Task consumer started",
		slog.String("consumer_tag", w.workerID),
		slog.String("queue", w.queueName),
		slog.Int("prefetch_count", w.prefetchCount),
	)

	return deliveries, nil
}

// startMessageDispatcher feeds decoded tasks to the pool until ctx is done or
// the broker closes the stream
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Task dispatcher stopped")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("Task delivery stream closed by broker")
				return
			}

			msg, err := decodeDelivery(delivery)
			if err != nil {
				w.reject(delivery, err)
				continue
			}

			if !w.dispatch(ctx, msg) {
				return
			}
		}
	}
}

func decodeDelivery(delivery amqp.Delivery) (*wdomain.TaskMessage, error) {
	task, err := wdomain.ParseTask(delivery.Body)
	if err != nil {
		return nil, err
	}
	return &wdomain.TaskMessage{
		Task:        task,
		DeliveryTag: delivery.DeliveryTag,
		MessageID:   delivery.MessageId,
		Redelivered: delivery.Redelivered,
	}, nil
}

// reject dead-letters a delivery that can never be processed
func (w *Worker) reject(delivery amqp.Delivery, cause error) {
	w.logger.Error("Dropping malformed task",
		slog.String("message_id", delivery.MessageId),
		slog.Uint64("delivery_tag", delivery.DeliveryTag),
		slog.Int("body_size", len(delivery.Body)),
		slog.Any("error", cause),
	)
	w.nack(&wdomain.TaskMessage{DeliveryTag: delivery.DeliveryTag}, false, []any{
		slog.String("message_id", delivery.MessageId),
	})
}

// dispatch hands msg to the pool. On shutdown the delivery goes back to the
// queue and dispatch reports false.
func (w *Worker) dispatch(ctx context.Context, msg *wdomain.TaskMessage) bool {
	select {
	case w.tasksChan <- msg:
		w.logger.Debug("Task dispatched",
			slog.String("type", string(msg.Task.Type)),
			slog.String("application_id", msg.Task.ApplicationID),
			slog.Int("attempt", msg.Task.Attempt),
			slog.Bool("redelivered", msg.Redelivered),
		)
		return true
	case <-ctx.Done():
		w.logger.Info("Returning task to queue on shutdown")
		w.nack(msg, true, []any{
			slog.String("application_id", msg.Task.ApplicationID),
			slog.String("message_id", msg.MessageID),
		})
		return false
	}
}
