package models

type CheckoutRequest struct {
	Tier  string `json:"tier" example:"professional"`
	Email string `json:"email,omitempty" example:"jane@example.com"`
}

type UpscaleRequest struct {
	// ImageURLs are generated-image URLs belonging to the order.
	ImageURLs []string `json:"image_urls"`
	// Scale is the enlargement factor; defaults to 4.
	Scale int `json:"scale,omitempty" example:"4"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
