package models

import "time"

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

type StatusResponse struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	Images    int       `json:"images"`
	Target    int       `json:"target"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TrainResponse struct {
	OrderID       string `json:"order_id"`
	TrainingJobID string `json:"training_job_id"`
	Status        string `json:"status"`
}

type UploadResponse struct {
	OrderID string     `json:"order_id"`
	Files   []FileInfo `json:"files"`
	Errors  []string   `json:"errors,omitempty"`
}

type FileInfo struct {
	Filename   string `json:"filename"`
	StorageURL string `json:"storage_url"`
	Size       int64  `json:"size"`
}

type GalleryResponse struct {
	OrderID  string              `json:"order_id"`
	Status   string              `json:"status"`
	Images   []GalleryImage      `json:"images"`
	Upscales []UpscaledImageInfo `json:"upscales,omitempty"`
}

type GalleryImage struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"image_url"`
	Style     string    `json:"style,omitempty"`
	Quality   string    `json:"quality"`
	CreatedAt time.Time `json:"created_at"`
}

type UpscaledImageInfo struct {
	ID          string    `json:"id"`
	OriginalURL string    `json:"original_url"`
	UpscaledURL string    `json:"upscaled_url"`
	Scale       int       `json:"scale"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	CreatedAt   time.Time `json:"created_at"`
}

type UpscaleResponse struct {
	OrderID  string              `json:"order_id"`
	Upscales []UpscaledImageInfo `json:"upscales"`
	Errors   []string            `json:"errors,omitempty"`
}

type OrderListResponse struct {
	Orders []OrderSummary `json:"orders"`
}

type OrderSummary struct {
	ID            string    `json:"order_id"`
	Email         string    `json:"email"`
	Tier          string    `json:"tier"`
	HeadshotCount int       `json:"headshot_count"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type OrderResponse struct {
	ID            string    `json:"order_id"`
	Email         string    `json:"email"`
	Tier          string    `json:"tier"`
	HeadshotCount int       `json:"headshot_count"`
	AmountCents   int64     `json:"amount_cents"`
	Status        string    `json:"status"`
	Progress      int       `json:"progress"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	Uploads       int       `json:"uploads"`
	Images        int       `json:"images"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
