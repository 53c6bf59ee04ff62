package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/cuongbtq/recruitment-be/internal/service"
)

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ListingLimits bounds the page size of admin listings
type ListingLimits struct {
	DefaultLimit int
	MaxLimit     int
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger         *slog.Logger
	DB             HealthChecker
	Applications   *service.ApplicationService
	Checkout       *service.CheckoutService
	Webhook        *service.WebhookService
	AdminToken     string
	AllowedOrigins []string
	StrictTiers    bool
	Listing        ListingLimits
	Clock          func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}
