package domain

import (
	"encoding/json"
	"fmt"
)

// TaskType identifies deferred work handled by the worker service
type TaskType string

const (
	// TaskBoostGrant retries a boost grant the webhook could not persist
	TaskBoostGrant TaskType = "boost_grant"
	// TaskApplicationEmail retries the submission emails of an application
	TaskApplicationEmail TaskType = "application_email"
)

// EmailRecipient selects one of the two submission emails
type EmailRecipient string

const (
	RecipientRecruiter EmailRecipient = "recruiter"
	RecipientCandidate EmailRecipient = "candidate"
)

// Valid reports whether r is a known recipient
func (r EmailRecipient) Valid() bool {
	return r == RecipientRecruiter || r == RecipientCandidate
}

// IncludesRecipient reports whether recipients selects r. An empty selection
// means every recipient.
func IncludesRecipient(recipients []EmailRecipient, r EmailRecipient) bool {
	if len(recipients) == 0 {
		return true
	}
	for _, candidate := range recipients {
		if candidate == r {
			return true
		}
	}
	return false
}

// Task is the message body published to the task queue
type Task struct {
	Type          TaskType         `json:"type"`
	ApplicationID string           `json:"application_id"`
	BoostDays     int              `json:"boost_days,omitempty"`
	Reference     string           `json:"reference,omitempty"`
	JobTitle      string           `json:"job_title,omitempty"`
	Recipients    []EmailRecipient `json:"recipients,omitempty"`
	Attempt       int              `json:"attempt"`
}

// Encode serializes the task for publishing
func (t Task) Encode() ([]byte, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}
	return body, nil
}

// NextAttempt returns a copy of t with the attempt counter incremented
func (t Task) NextAttempt() Task {
	t.Attempt++
	return t
}

// MessageType names the task on the queue
func (t Task) MessageType() string {
	return string(t.Type)
}
