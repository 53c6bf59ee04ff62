package service

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/recruitment-be/internal/domain"
	"github.com/cuongbtq/recruitment-be/shared/apperr"
	"github.com/cuongbtq/recruitment-be/shared/ledger"
	"github.com/cuongbtq/recruitment-be/shared/paystack"
	"github.com/cuongbtq/recruitment-be/shared/telemetry"
)

// DefaultBoostDays applies when a charge carries no boostDays metadata
const DefaultBoostDays = 7

// WebhookOutcome is what happened to a verified event
type WebhookOutcome string

const (
	OutcomeGranted   WebhookOutcome = "granted"
	OutcomeIgnored   WebhookOutcome = "ignored"
	OutcomeDuplicate WebhookOutcome = "duplicate"
	OutcomeMalformed WebhookOutcome = "malformed"
	OutcomeDeferred  WebhookOutcome = "deferred"
	OutcomeDropped   WebhookOutcome = "dropped"

	OutcomeUnknownApplication WebhookOutcome = "unknown_application"
)

// WebhookService verifies payment notifications and grants boosts
type WebhookService struct {
	secret    string
	store     ApplicationStore
	ledger    ledger.Ledger
	publisher TaskPublisher
	logger    *slog.Logger
}

// WebhookServiceConfig wires a WebhookService. Ledger and Publisher may be nil.
type WebhookServiceConfig struct {
	Secret    string
	Store     ApplicationStore
	Ledger    ledger.Ledger
	Publisher TaskPublisher
	Logger    *slog.Logger
}

// NewWebhookService creates a WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	l := cfg.Ledger
	if l == nil {
		l = ledger.Nop{}
	}
	return &WebhookService{
		secret:    cfg.Secret,
		store:     cfg.Store,
		ledger:    l,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
	}
}

// Handle verifies the signature over the raw body before anything is parsed.
// Only an invalid signature returns an error; every verified event is acknowledged.
func (s *WebhookService) Handle(ctx context.Context, body []byte, signature, remoteIP string) (WebhookOutcome, error) {
	ctx, span := telemetry.GetTracer("webhook").Start(ctx, "webhook.process")
	defer span.End()

	if !paystack.VerifySignature(s.secret, body, signature) {
		s.logger.Warn("Invalid Paystack signature",
			slog.String("remote_ip", remoteIP),
			slog.Bool("signature_present", signature != ""),
			slog.Int("body_size", len(body)),
		)
		err := apperr.Unauthorized("Invalid signature")
		telemetry.RecordError(span, err)
		return "", err
	}

	event, err := paystack.ParseEvent(body)
	if err != nil {
		s.logger.Error("Malformed webhook event",
			slog.Any("error", err),
		)
		return OutcomeMalformed, nil
	}

	span.SetAttributes(
		telemetry.String("event", event.Event),
		telemetry.String("reference", event.Data.Reference),
	)

	if event.Event != paystack.EventChargeSuccess {
		s.logger.Info("Ignoring webhook event",
			slog.String("event", event.Event),
			slog.String("reference", event.Data.Reference),
		)
		return OutcomeIgnored, nil
	}

	meta := event.Data.Metadata
	if meta.ApplicationID == "" {
		s.logger.Error("No applicationId in Paystack webhook metadata",
			slog.String("reference", event.Data.Reference),
		)
		return OutcomeMalformed, nil
	}

	days := DefaultBoostDays
	if meta.BoostDays.Valid {
		days, err = meta.BoostDays.Int()
		if err != nil || !domain.ValidBoostDays(days) {
			s.logger.Error("Invalid boostDays in Paystack webhook metadata",
				slog.String("reference", event.Data.Reference),
				slog.String("application_id", meta.ApplicationID),
				slog.String("boost_days", meta.BoostDays.Raw),
			)
			return OutcomeMalformed, nil
		}
	}

	claimed := false
	if ref := event.Data.Reference; ref != "" {
		first, err := s.ledger.Claim(ctx, ref)
		switch {
		case err != nil:
			s.logger.Warn("Reference ledger unavailable, processing without deduplication",
				slog.String("reference", ref),
				slog.Any("error", err),
			)
		case !first:
			s.logger.Info("Duplicate payment notification",
				slog.String("reference", ref),
				slog.String("application_id", meta.ApplicationID),
			)
			return OutcomeDuplicate, nil
		default:
			claimed = true
		}
	}

	outcome := s.grant(ctx, event.Data.Reference, meta.ApplicationID, days)
	if outcome == OutcomeDropped && claimed {
		if err := s.ledger.Release(ctx, event.Data.Reference); err != nil {
			s.logger.Warn("Failed to release reference",
				slog.String("reference", event.Data.Reference),
				slog.Any("error", err),
			)
		}
	}
	return outcome, nil
}

func (s *WebhookService) grant(ctx context.Context, reference, applicationID string, days int) WebhookOutcome {
	app, err := s.store.GrantBoost(ctx, applicationID, days)
	if err == nil {
		s.logger.Info("Application boosted",
			slog.String("application_id", applicationID),
			slog.String("reference", reference),
			slog.Int("boost_days", days),
			slog.Any("boost_expiry", app.BoostExpiry),
		)
		return OutcomeGranted
	}

	if apperr.Is(err, apperr.KindNotFound) {
		s.logger.Error("Paid boost for unknown application",
			slog.String("application_id", applicationID),
			slog.String("reference", reference),
		)
		return OutcomeUnknownApplication
	}

	if s.publisher == nil {
		s.logger.Error("Failed to grant boost, no task queue to defer to",
			slog.String("application_id", applicationID),
			slog.String("reference", reference),
			slog.Int("boost_days", days),
			slog.Any("error", err),
		)
		return OutcomeDropped
	}

	s.logger.Error("Failed to grant boost, deferring to worker",
		slog.String("application_id", applicationID),
		slog.String("reference", reference),
		slog.Any("error", err),
	)

	task := domain.Task{
		Type:          domain.TaskBoostGrant,
		ApplicationID: applicationID,
		BoostDays:     days,
		Reference:     reference,
		Attempt:       1,
	}
	if err := s.publisher.PublishJSON(ctx, task); err != nil {
		s.logger.Error("Failed to queue boost grant, paid boost not applied",
			slog.String("application_id", applicationID),
			slog.String("reference", reference),
			slog.Int("boost_days", days),
			slog.Any("error", err),
		)
		return OutcomeDropped
	}

	return OutcomeDeferred
}
