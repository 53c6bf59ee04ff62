package domain

import (
	"encoding/json"
	"fmt"

	appdomain "github.com/cuongbtq/recruitment-be/internal/domain"
	"github.com/google/uuid"
)

// TaskMessage is a decoded task with the delivery it arrived on
type TaskMessage struct {
	Task        appdomain.Task
	DeliveryTag uint64
	MessageID   string
	Redelivered bool
}

// ParseTask decodes and validates a queued message body
func ParseTask(body []byte) (appdomain.Task, error) {
	var task appdomain.Task
	if err := json.Unmarshal(body, &task); err != nil {
		return task, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}

	if _, err := uuid.Parse(task.ApplicationID); err != nil {
		return task, fmt.Errorf("%w: application_id %q is not a UUID", ErrInvalidTask, task.ApplicationID)
	}

	switch task.Type {
	case appdomain.TaskBoostGrant:
		if !appdomain.ValidBoostDays(task.BoostDays) {
			return task, fmt.Errorf("%w: boost_days must be between 1 and %d", ErrInvalidTask, appdomain.MaxBoostDays)
		}
	case appdomain.TaskApplicationEmail:
		for _, r := range task.Recipients {
			if !r.Valid() {
				return task, fmt.Errorf("%w: unknown recipient %q", ErrInvalidTask, r)
			}
		}
	default:
		return task, fmt.Errorf("%w: unknown type %q", ErrInvalidTask, task.Type)
	}

	if task.Attempt < 1 {
		task.Attempt = 1
	}
	return task, nil
}
