package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"iheadshot-backend/internal/orders"
)

// Order is the aggregate root. One row per purchase; every other entity
// references it by foreign key. Tier and HeadshotCount are immutable after
// creation, and CheckoutSessionID is unique so replayed payment webhooks
// cannot create a second row for the same purchase.
type Order struct {
	ID                uuid.UUID
	Email             string
	CheckoutSessionID string
	AmountCents       int64
	Tier              string
	HeadshotCount     int
	Status            orders.Status
	ErrorMessage      sql.NullString
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TrainingJob tracks the external face-training job for an order. Zero or
// one per order; updated by the generation provider's callback, never
// deleted.
type TrainingJob struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProviderJobID string
	Status        string // pending, training, completed, failed
	ModelVersion  sql.NullString
	ErrorMessage  sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GeneratedImage is one delivered headshot. Rows arrive incrementally as the
// provider delivers results, possibly out of order and in batches.
type GeneratedImage struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	TrainingJobID uuid.NullUUID
	ImageURL      string
	Style         sql.NullString
	Prompt        sql.NullString
	Quality       string
	CreatedAt     time.Time
}

// Upload is one customer selfie stored in object storage.
type Upload struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	StoragePath string
	Filename    string
	CreatedAt   time.Time
}

// UpscaledImage is a non-destructive enhancement of a GeneratedImage; the
// original row and URL are retained.
type UpscaledImage struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	OriginalURL string
	UpscaledURL string
	Scale       int
	Width       int
	Height      int
	CreatedAt   time.Time
}
