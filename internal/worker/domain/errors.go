package domain

import "errors"

var (
	// ErrInvalidTask marks a message that cannot be decoded into a task
	ErrInvalidTask = errors.New("invalid task")

	// ErrTaskRejected marks a task that can never succeed, e.g. its application was deleted
	ErrTaskRejected = errors.New("task rejected")

	// ErrMaxAttemptsExceeded marks a retryable task that used up its attempts
	ErrMaxAttemptsExceeded = errors.New("max attempts exceeded")
)

// RetryableError wraps a transient failure worth another attempt
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}

// Disposition is what happens to a delivery once its task ran
type Disposition int

const (
	// Complete acks the delivery
	Complete Disposition = iota
	// Retry publishes the next attempt, then acks the delivery
	Retry
	// Drop dead-letters the delivery
	Drop
)

func (d Disposition) String() string {
	switch d {
	case Complete:
		return "complete"
	case Retry:
		return "retry"
	default:
		return "drop"
	}
}

// Classify decides the disposition of a task that finished with err on the
// given attempt. Only retryable failures below maxAttempts are retried.
func Classify(err error, attempt, maxAttempts int) Disposition {
	if err == nil {
		return Complete
	}

	var retryable *RetryableError
	if !errors.As(err, &retryable) {
		return Drop
	}
	if errors.Is(err, ErrInvalidTask) || errors.Is(err, ErrTaskRejected) {
		return Drop
	}
	if attempt >= maxAttempts {
		return Drop
	}
	return Retry
}
