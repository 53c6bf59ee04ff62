package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SignatureHeader carries the hex HMAC-SHA512 of the raw webhook body
const SignatureHeader = "x-paystack-signature"

// EventChargeSuccess is the only event that grants entitlements
const EventChargeSuccess = "charge.success"

// Sign computes the signature Paystack sends for body
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares the received signature with the expected one in constant time.
// An empty secret or signature never verifies.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

// Event is a webhook notification
type Event struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

// EventData is the subset of the transaction object the backend reads
type EventData struct {
	Reference string        `json:"reference"`
	Amount    int64         `json:"amount"`
	Currency  string        `json:"currency"`
	Status    string        `json:"status"`
	Metadata  EventMetadata `json:"metadata"`
}

// EventMetadata is the metadata echoed back by Paystack.
// boostDays is sent as a string but tolerated as a number.
type EventMetadata struct {
	ApplicationID string    `json:"applicationId"`
	BoostTier     string    `json:"boostTier"`
	BoostDays     FlexValue `json:"boostDays"`
	Type          string    `json:"type"`
}

// FlexValue holds a JSON string or number as its raw textual form
type FlexValue struct {
	Raw   string
	Valid bool
}

// UnmarshalJSON accepts "7", 7 and null
func (v *FlexValue) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*v = FlexValue{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = FlexValue{Raw: strings.TrimSpace(s), Valid: true}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", text)
	}
	*v = FlexValue{Raw: n.String(), Valid: true}
	return nil
}

// Int parses the value as a base-10 integer
func (v FlexValue) Int() (int, error) {
	return strconv.Atoi(v.Raw)
}

// ParseEvent decodes a verified webhook body
func ParseEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook event: %w", err)
	}
	return &event, nil
}
