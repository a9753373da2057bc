package services

import (
	"github.com/google/uuid"

	"iheadshot-backend/internal/models"
	"iheadshot-backend/internal/orders"
)

// Store is the persistence surface the pipeline and handlers depend on,
// implemented by supabase.DatabaseClient. All lifecycle transitions go
// through the compare-and-set methods; nothing writes order status
// unconditionally.
type Store interface {
	CreateOrderFromCheckout(order *models.Order) (bool, error)
	GetOrder(orderID uuid.UUID) (*models.Order, error)
	ListOrders() ([]models.Order, error)
	AdvanceOrderStatus(orderID uuid.UUID, from, to orders.Status) (bool, error)
	MarkOrderFailed(orderID uuid.UUID, from orders.Status, errorMsg string) (bool, error)

	CreateTrainingJob(job *models.TrainingJob) error
	GetTrainingJobByProviderID(providerJobID string) (*models.TrainingJob, error)
	GetTrainingJobByOrder(orderID uuid.UUID) (*models.TrainingJob, error)
	UpdateTrainingJob(jobID uuid.UUID, status, modelVersion, errorMsg string) error

	CreateGeneratedImage(img *models.GeneratedImage) error
	CountGeneratedImages(orderID uuid.UUID) (int, error)
	ListGeneratedImages(orderID uuid.UUID) ([]models.GeneratedImage, error)
	HasGeneratedImage(orderID uuid.UUID, url string) (bool, error)

	CreateUpload(upload *models.Upload) error
	ListUploads(orderID uuid.UUID) ([]models.Upload, error)
	CountUploads(orderID uuid.UUID) (int, error)

	CreateUpscaledImage(img *models.UpscaledImage) error
	ListUpscaledImages(orderID uuid.UUID) ([]models.UpscaledImage, error)

	ClaimNotification(orderID uuid.UUID, kind string) (bool, error)
}

// Storage is the object-storage surface, implemented by
// supabase.StorageClient.
type Storage interface {
	UploadFile(orderID uuid.UUID, filename, contentType string, data []byte) (path, url string, err error)
	GetPublicURL(storagePath string) string
}

// Notifier sends the four transactional emails, implemented by
// mailer.Mailer.
type Notifier interface {
	SendOrderConfirmed(email string, order *models.Order) error
	SendTrainingStarted(email string, order *models.Order) error
	SendHeadshotsReady(email string, order *models.Order) error
	SendGenerationFailed(email string, order *models.Order, reason string) error
}

// Publisher pushes order lifecycle events to realtime channels, implemented
// by supabase.RealtimeClient.
type Publisher interface {
	PublishOrderEvent(orderID uuid.UUID, event string, payload map[string]interface{}) error
}
