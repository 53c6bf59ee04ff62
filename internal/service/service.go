package service

import (
	"context"
	"time"

	"github.com/cuongbtq/recruitment-be/internal/domain"
	"github.com/cuongbtq/recruitment-be/internal/notify"
	"github.com/cuongbtq/recruitment-be/internal/storage"
	"github.com/cuongbtq/recruitment-be/shared/paystack"
)

// ApplicationStore is the persistence the services depend on
type ApplicationStore interface {
	CreateApplication(ctx context.Context, app *domain.Application) error
	GetApplication(ctx context.Context, id string) (*domain.Application, error)
	GetApplicationCV(ctx context.Context, id string) (*domain.CV, error)
	UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus) (*domain.Application, error)
	GrantBoost(ctx context.Context, id string, days int) (*domain.Application, error)
	ListApplications(ctx context.Context, filter storage.ListFilter) ([]domain.Application, int, error)
	DeleteApplication(ctx context.Context, id string) error
}

// TaskPublisher queues deferred work for the worker service
type TaskPublisher interface {
	PublishJSON(ctx context.Context, v any) error
}

// SubmissionNotifier sends the emails of a new application
type SubmissionNotifier interface {
	NotifySubmission(ctx context.Context, sub *notify.Submission) notify.Result
}

// PaymentProvider creates hosted checkout sessions
type PaymentProvider interface {
	InitializeTransaction(ctx context.Context, req *paystack.InitializeRequest) (*paystack.InitializeResult, error)
}

// Clock returns the current time
type Clock func() time.Time

func defaultClock() time.Time {
	return time.Now()
}
