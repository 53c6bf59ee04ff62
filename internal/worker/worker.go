package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/recruitment-be/internal/domain"
	wdomain "github.com/cuongbtq/recruitment-be/internal/worker/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue is the broker surface the worker consumes from and republishes to
type Queue interface {
	SetQos(prefetchCount int) error
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
	Ack(deliveryTag uint64) error
	Nack(deliveryTag uint64, requeue bool) error
	PublishJSON(ctx context.Context, v any) error
}

// BoostGranter persists a paid boost
type BoostGranter interface {
	GrantBoost(ctx context.Context, id string, days int) (*domain.Application, error)
}

// EmailResender sends the submission emails of a stored application again
type EmailResender interface {
	ResendSubmissionEmails(ctx context.Context, applicationID, jobTitle string, recipients []domain.EmailRecipient) error
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Queue         Queue
	Boosts        BoostGranter
	Emails        EmailResender
	WorkerID      string
	QueueName     string
	Concurrency   int
	PrefetchCount int
	TaskTimeout   time.Duration
	MaxAttempts   int
	RetryDelay    time.Duration
}

// Worker consumes deferred tasks and runs them on a bounded pool
type Worker struct {
	logger        *slog.Logger
	queue         Queue
	boosts        BoostGranter
	emails        EmailResender
	workerID      string
	queueName     string
	concurrency   int
	prefetchCount int
	taskTimeout   time.Duration
	maxAttempts   int
	retryDelay    time.Duration

	tasksChan chan *wdomain.TaskMessage
	wg        sync.WaitGroup
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) (*Worker, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("worker queue is required")
	}
	if cfg.Boosts == nil || cfg.Emails == nil {
		return nil, fmt.Errorf("worker task handlers are required")
	}
	if cfg.Concurrency <= 0 {
		return nil, fmt.Errorf("worker concurrency must be greater than 0")
	}

	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = cfg.Concurrency
	}

	return &Worker{
		logger:        cfg.Logger,
		queue:         cfg.Queue,
		boosts:        cfg.Boosts,
		emails:        cfg.Emails,
		workerID:      cfg.WorkerID,
		queueName:     cfg.QueueName,
		concurrency:   cfg.Concurrency,
		prefetchCount: prefetch,
		taskTimeout:   cfg.TaskTimeout,
		maxAttempts:   cfg.MaxAttempts,
		retryDelay:    cfg.RetryDelay,
		tasksChan:     make(chan *wdomain.TaskMessage, cfg.Concurrency),
		stopChan:      make(chan struct{}),
	}, nil
}

// Start consumes tasks until ctx is canceled or the delivery channel closes
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("task_timeout", w.taskTimeout),
		slog.Int("max_attempts", w.maxAttempts),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)
	close(w.tasksChan)

	return nil
}

// Stop signals the pool and waits for in-flight tasks
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
