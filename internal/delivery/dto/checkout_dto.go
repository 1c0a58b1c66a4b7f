package dto

type CheckoutSessionRequest struct {
	Service  string `json:"service" validate:"required"`
	Duration int    `json:"duration" validate:"required,gt=0"`
}

type CheckoutSessionResponse struct {
	URL string `json:"url"`
}
