package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cuongbtq/recruitment-be/internal/domain"
	"github.com/cuongbtq/recruitment-be/shared/apperr"
	"github.com/cuongbtq/recruitment-be/shared/logger"
	"github.com/cuongbtq/recruitment-be/shared/paystack"
	"github.com/cuongbtq/recruitment-be/shared/telemetry"
	"github.com/google/uuid"
)

// BoostPaymentType tags boost transactions in provider metadata
const BoostPaymentType = "application_boost"

// CheckoutInput is a request to pay for an application boost
type CheckoutInput struct {
	ApplicationID string
	Email         string
	FullName      string
	JobTitle      string
	BoostTier     string
}

// CheckoutResult is the hosted checkout session to redirect to
type CheckoutResult struct {
	Reference   string
	RedirectURL string
	Plan        domain.TierPlan
}

// CheckoutService starts boost payments. It never writes to the store.
type CheckoutService struct {
	provider    PaymentProvider
	currency    string
	callbackURL string
	strictTiers bool
	logger      *slog.Logger
}

// CheckoutServiceConfig wires a CheckoutService
type CheckoutServiceConfig struct {
	Provider    PaymentProvider
	Currency    string
	CallbackURL string
	StrictTiers bool
	Logger      *slog.Logger
}

// NewCheckoutService creates a CheckoutService
func NewCheckoutService(cfg CheckoutServiceConfig) *CheckoutService {
	return &CheckoutService{
		provider:    cfg.Provider,
		currency:    cfg.Currency,
		callbackURL: cfg.CallbackURL,
		strictTiers: cfg.StrictTiers,
		logger:      cfg.Logger,
	}
}

// NewReference returns boost_<applicationId>_<uuid>
func NewReference(applicationID string) string {
	return fmt.Sprintf("boost_%s_%s", applicationID, uuid.NewString())
}

func (s *CheckoutService) resolveTier(value string) (domain.TierPlan, error) {
	if plan, ok := domain.LookupTier(value); ok {
		return plan, nil
	}
	if s.strictTiers {
		return domain.TierPlan{}, apperr.Validation(fmt.Sprintf("Unknown boost tier %q", value))
	}

	plan := domain.ResolveTier(value)
	if strings.TrimSpace(value) != "" {
		s.logger.Warn("Unknown boost tier, using default",
			slog.String("requested_tier", value),
			slog.String("tier", string(plan.Tier)),
		)
	}
	return plan, nil
}

// CreateCheckout resolves the tier and opens a provider checkout session
func (s *CheckoutService) CreateCheckout(ctx context.Context, in *CheckoutInput) (*CheckoutResult, error) {
	ctx, span := telemetry.GetTracer("checkout").Start(ctx, "checkout.create")
	defer span.End()

	if strings.TrimSpace(in.ApplicationID) == "" ||
		strings.TrimSpace(in.Email) == "" ||
		strings.TrimSpace(in.FullName) == "" ||
		strings.TrimSpace(in.JobTitle) == "" {
		return nil, apperr.Validation("Missing required fields")
	}

	plan, err := s.resolveTier(in.BoostTier)
	if err != nil {
		return nil, err
	}

	reference := NewReference(in.ApplicationID)
	days := strconv.Itoa(plan.Days)

	span.SetAttributes(
		telemetry.String("reference", reference),
		telemetry.String("tier", string(plan.Tier)),
		telemetry.Int("boost_days", plan.Days),
	)

	req := &paystack.InitializeRequest{
		Email:       strings.TrimSpace(in.Email),
		Amount:      plan.PriceMinorUnits,
		Currency:    s.currency,
		Reference:   reference,
		CallbackURL: s.callbackURL,
		Metadata: paystack.Metadata{
			ApplicationID: in.ApplicationID,
			FullName:      in.FullName,
			JobTitle:      in.JobTitle,
			BoostTier:     string(plan.Tier),
			BoostDays:     days,
			Type:          BoostPaymentType,
			CustomFields: []paystack.CustomField{
				{DisplayName: "Application ID", VariableName: "application_id", Value: in.ApplicationID},
				{DisplayName: "Boost Type", VariableName: "boost_type", Value: plan.DisplayName},
			},
		},
	}

	session, err := s.provider.InitializeTransaction(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, upstreamError(err)
	}

	s.logger.Info("Boost checkout created",
		slog.String("application_id", in.ApplicationID),
		slog.String("reference", reference),
		slog.String("tier", string(plan.Tier)),
		logger.Email("email", req.Email),
	)

	return &CheckoutResult{
		Reference:   reference,
		RedirectURL: session.AuthorizationURL,
		Plan:        plan,
	}, nil
}

// upstreamError keeps the provider's own message when it rejected the request
func upstreamError(err error) error {
	if errors.Is(err, paystack.ErrTimeout) {
		return apperr.Upstream(paystack.ErrTimeout.Error(), err)
	}
	var providerErr *paystack.ProviderError
	if errors.As(err, &providerErr) {
		return apperr.Upstream(providerErr.Message, err)
	}
	return apperr.Upstream("Failed to create checkout session", err)
}
