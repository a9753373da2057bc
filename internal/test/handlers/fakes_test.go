package handlers_test

import (
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"iheadshot-backend/internal/models"
	"iheadshot-backend/internal/orders"
	"iheadshot-backend/internal/providers"
	"iheadshot-backend/internal/services"
)

// memStore is a minimal in-memory Store for handler tests.
type memStore struct {
	mu            sync.Mutex
	orders        map[uuid.UUID]*models.Order
	sessions      map[string]uuid.UUID
	jobs          map[uuid.UUID]*models.TrainingJob
	images        map[uuid.UUID][]models.GeneratedImage
	uploads       map[uuid.UUID][]models.Upload
	upscales      map[uuid.UUID][]models.UpscaledImage
	notifications map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		orders:        make(map[uuid.UUID]*models.Order),
		sessions:      make(map[string]uuid.UUID),
		jobs:          make(map[uuid.UUID]*models.TrainingJob),
		images:        make(map[uuid.UUID][]models.GeneratedImage),
		uploads:       make(map[uuid.UUID][]models.Upload),
		upscales:      make(map[uuid.UUID][]models.UpscaledImage),
		notifications: make(map[string]bool),
	}
}

func (s *memStore) CreateOrderFromCheckout(order *models.Order) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[order.CheckoutSessionID]; exists {
		return false, nil
	}
	cp := *order
	s.orders[order.ID] = &cp
	s.sessions[order.CheckoutSessionID] = order.ID
	return true, nil
}

func (s *memStore) GetOrder(orderID uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *o
	return &cp, nil
}

func (s *memStore) ListOrders() ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *memStore) AdvanceOrderStatus(orderID uuid.UUID, from, to orders.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (s *memStore) MarkOrderFailed(orderID uuid.UUID, from orders.Status, errorMsg string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = orders.StatusFailed
	o.ErrorMessage = sql.NullString{String: errorMsg, Valid: true}
	return true, nil
}

func (s *memStore) CreateTrainingJob(job *models.TrainingJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *memStore) GetTrainingJobByProviderID(providerJobID string) (*models.TrainingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.ProviderJobID == providerJobID {
			cp := *j
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memStore) GetTrainingJobByOrder(orderID uuid.UUID) (*models.TrainingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.OrderID == orderID {
			cp := *j
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memStore) UpdateTrainingJob(jobID uuid.UUID, status, modelVersion, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return sql.ErrNoRows
	}
	j.Status = status
	return nil
}

func (s *memStore) CreateGeneratedImage(img *models.GeneratedImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[img.OrderID] = append(s.images[img.OrderID], *img)
	return nil
}

func (s *memStore) CountGeneratedImages(orderID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images[orderID]), nil
}

func (s *memStore) ListGeneratedImages(orderID uuid.UUID) ([]models.GeneratedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.GeneratedImage(nil), s.images[orderID]...), nil
}

func (s *memStore) HasGeneratedImage(orderID uuid.UUID, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, img := range s.images[orderID] {
		if img.ImageURL == url {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CreateUpload(upload *models.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[upload.OrderID] = append(s.uploads[upload.OrderID], *upload)
	return nil
}

func (s *memStore) ListUploads(orderID uuid.UUID) ([]models.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Upload(nil), s.uploads[orderID]...), nil
}

func (s *memStore) CountUploads(orderID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads[orderID]), nil
}

func (s *memStore) CreateUpscaledImage(img *models.UpscaledImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upscales[img.OrderID] = append(s.upscales[img.OrderID], *img)
	return nil
}

func (s *memStore) ListUpscaledImages(orderID uuid.UUID) ([]models.UpscaledImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.UpscaledImage(nil), s.upscales[orderID]...), nil
}

func (s *memStore) ClaimNotification(orderID uuid.UUID, kind string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := orderID.String() + "/" + kind
	if s.notifications[key] {
		return false, nil
	}
	s.notifications[key] = true
	return true, nil
}

type noopTrainer struct{}

func (noopTrainer) SubmitTraining(req providers.TrainingRequest) (string, error) {
	return "tune-1", nil
}

type noopGenerator struct{ name string }

func (g noopGenerator) Name() string { return g.name }

func (noopGenerator) SubmitGeneration(req providers.GenerationRequest) (*providers.GenerationResult, error) {
	return nil, nil
}

type noopUpscaler struct{}

func (noopUpscaler) Upscale(imageURL string, scale int) ([]byte, int, int, error) {
	return []byte("bytes"), 2048, 2048, nil
}

type noopStorage struct{}

func (noopStorage) UploadFile(orderID uuid.UUID, filename, contentType string, data []byte) (string, string, error) {
	path := "orders/" + orderID.String() + "/" + filename
	return path, "https://cdn.example.com/" + path, nil
}

func (noopStorage) GetPublicURL(storagePath string) string {
	return "https://cdn.example.com/" + storagePath
}

type noopNotifier struct{}

func (noopNotifier) SendOrderConfirmed(email string, order *models.Order) error  { return nil }
func (noopNotifier) SendTrainingStarted(email string, order *models.Order) error { return nil }
func (noopNotifier) SendHeadshotsReady(email string, order *models.Order) error  { return nil }
func (noopNotifier) SendGenerationFailed(email string, order *models.Order, reason string) error {
	return nil
}

type noopPublisher struct{}

func (noopPublisher) PublishOrderEvent(orderID uuid.UUID, event string, payload map[string]interface{}) error {
	return nil
}

func newTestPipelineWithStore() (*memStore, *services.Pipeline) {
	store := newMemStore()
	pipeline := services.NewPipeline(
		store,
		noopTrainer{},
		noopGenerator{name: "primary"},
		noopGenerator{name: "fallback"},
		noopUpscaler{},
		noopStorage{},
		noopNotifier{},
		noopPublisher{},
		"https://api.iheadshot.app",
	)
	return store, pipeline
}

func newTestPipeline() *services.Pipeline {
	_, pipeline := newTestPipelineWithStore()
	return pipeline
}
