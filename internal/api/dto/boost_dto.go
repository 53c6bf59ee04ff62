package dto

type CheckoutRequest struct {
	ApplicationID string `json:"applicationId"`
	Email         string `json:"email"`
	FullName      string `json:"fullName"`
	JobTitle      string `json:"jobTitle"`
	BoostTier     string `json:"boostTier" binding:"omitempty,boost_tier"`
}

type CheckoutResponse struct {
	OK        bool   `json:"ok"`
	Reference string `json:"reference"`
	URL       string `json:"url"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}

type WebhookErrorResponse struct {
	Error string `json:"error"`
}
