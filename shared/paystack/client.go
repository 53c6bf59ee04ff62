package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the production Paystack API
const DefaultBaseURL = "https://api.paystack.co"

// ErrTimeout is returned when the provider did not answer within the client timeout
var ErrTimeout = errors.New("payment provider timed out")

// Config holds Paystack client configuration
type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// Client talks to the Paystack transaction API
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Paystack client with a bounded HTTP timeout
func NewClient(config *Config, logger *slog.Logger) *Client {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		secretKey:  config.SecretKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// InitializeRequest is the body of POST /transaction/initialize
type InitializeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	Reference   string   `json:"reference"`
	CallbackURL string   `json:"callback_url"`
	Metadata    Metadata `json:"metadata"`
}

// Metadata travels with the transaction and comes back in the webhook
type Metadata struct {
	ApplicationID string        `json:"applicationId"`
	FullName      string        `json:"fullName"`
	JobTitle      string        `json:"jobTitle"`
	BoostTier     string        `json:"boostTier"`
	BoostDays     string        `json:"boostDays"`
	Type          string        `json:"type"`
	CustomFields  []CustomField `json:"custom_fields,omitempty"`
}

// CustomField is shown on the Paystack dashboard and receipt
type CustomField struct {
	DisplayName  string `json:"display_name"`
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

// InitializeResult carries the hosted checkout page of a new transaction
type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type initializeResponse struct {
	Status  bool             `json:"status"`
	Message string           `json:"message"`
	Data    InitializeResult `json:"data"`
}

// ProviderError is a rejection reported by Paystack itself
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// InitializeTransaction creates a hosted checkout session
func (c *Client) InitializeTransaction(ctx context.Context, req *InitializeRequest) (*InitializeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build initialize request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			c.logger.Error("Paystack initialize timed out",
				slog.String("reference", req.Reference),
			)
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("failed to call paystack: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("failed to read paystack response: %w", err)
	}

	var parsed initializeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected paystack response (HTTP %d)", resp.StatusCode),
		}
	}

	if resp.StatusCode >= http.StatusBadRequest || !parsed.Status {
		message := parsed.Message
		if message == "" {
			message = fmt.Sprintf("Paystack initialization failed (HTTP %d)", resp.StatusCode)
		}
		c.logger.Warn("Paystack rejected transaction",
			slog.Int("status_code", resp.StatusCode),
			slog.String("message", message),
			slog.String("reference", req.Reference),
		)
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: message}
	}

	c.logger.Info("Paystack transaction initialized",
		slog.String("reference", parsed.Data.Reference),
	)

	return &parsed.Data, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
