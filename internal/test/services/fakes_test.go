package services_test

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"iheadshot-backend/internal/models"
	"iheadshot-backend/internal/orders"
	"iheadshot-backend/internal/providers"
)

// fakeStore is an in-memory Store with the same compare-and-set semantics as
// the real database client.
type fakeStore struct {
	mu sync.Mutex

	orders        map[uuid.UUID]*models.Order
	sessions      map[string]uuid.UUID
	jobs          map[uuid.UUID]*models.TrainingJob
	images        map[uuid.UUID][]models.GeneratedImage
	uploads       map[uuid.UUID][]models.Upload
	upscales      map[uuid.UUID][]models.UpscaledImage
	notifications map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:        make(map[uuid.UUID]*models.Order),
		sessions:      make(map[string]uuid.UUID),
		jobs:          make(map[uuid.UUID]*models.TrainingJob),
		images:        make(map[uuid.UUID][]models.GeneratedImage),
		uploads:       make(map[uuid.UUID][]models.Upload),
		upscales:      make(map[uuid.UUID][]models.UpscaledImage),
		notifications: make(map[string]bool),
	}
}

func (s *fakeStore) CreateOrderFromCheckout(order *models.Order) (bool, error) {
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

func (s *fakeStore) GetOrder(orderID uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *o
	return &cp, nil
}

func (s *fakeStore) ListOrders() ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *fakeStore) AdvanceOrderStatus(orderID uuid.UUID, from, to orders.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (s *fakeStore) MarkOrderFailed(orderID uuid.UUID, from orders.Status, errorMsg string) (bool, error) {
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

func (s *fakeStore) CreateTrainingJob(job *models.TrainingJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *fakeStore) GetTrainingJobByProviderID(providerJobID string) (*models.TrainingJob, error) {
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

func (s *fakeStore) GetTrainingJobByOrder(orderID uuid.UUID) (*models.TrainingJob, error) {
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

func (s *fakeStore) UpdateTrainingJob(jobID uuid.UUID, status, modelVersion, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return sql.ErrNoRows
	}
	j.Status = status
	if modelVersion != "" {
		j.ModelVersion = sql.NullString{String: modelVersion, Valid: true}
	}
	if errorMsg != "" {
		j.ErrorMessage = sql.NullString{String: errorMsg, Valid: true}
	}
	return nil
}

func (s *fakeStore) CreateGeneratedImage(img *models.GeneratedImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[img.OrderID] = append(s.images[img.OrderID], *img)
	return nil
}

func (s *fakeStore) CountGeneratedImages(orderID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images[orderID]), nil
}

func (s *fakeStore) ListGeneratedImages(orderID uuid.UUID) ([]models.GeneratedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.GeneratedImage(nil), s.images[orderID]...), nil
}

func (s *fakeStore) HasGeneratedImage(orderID uuid.UUID, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, img := range s.images[orderID] {
		if img.ImageURL == url {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateUpload(upload *models.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[upload.OrderID] = append(s.uploads[upload.OrderID], *upload)
	return nil
}

func (s *fakeStore) ListUploads(orderID uuid.UUID) ([]models.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Upload(nil), s.uploads[orderID]...), nil
}

func (s *fakeStore) CountUploads(orderID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads[orderID]), nil
}

func (s *fakeStore) CreateUpscaledImage(img *models.UpscaledImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upscales[img.OrderID] = append(s.upscales[img.OrderID], *img)
	return nil
}

func (s *fakeStore) ListUpscaledImages(orderID uuid.UUID) ([]models.UpscaledImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.UpscaledImage(nil), s.upscales[orderID]...), nil
}

func (s *fakeStore) ClaimNotification(orderID uuid.UUID, kind string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := orderID.String() + "/" + kind
	if s.notifications[key] {
		return false, nil
	}
	s.notifications[key] = true
	return true, nil
}

type fakeTrainer struct {
	jobID     string
	err       error
	submitted []providers.TrainingRequest
}

func (f *fakeTrainer) SubmitTraining(req providers.TrainingRequest) (string, error) {
	f.submitted = append(f.submitted, req)
	if f.err != nil {
		return "", f.err
	}
	if f.jobID == "" {
		return "tune-1", nil
	}
	return f.jobID, nil
}

type fakeGenerator struct {
	name      string
	err       error
	result    *providers.GenerationResult
	submitted []providers.GenerationRequest
}

func (f *fakeGenerator) Name() string { return f.name }

func (f *fakeGenerator) SubmitGeneration(req providers.GenerationRequest) (*providers.GenerationResult, error) {
	f.submitted = append(f.submitted, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeUpscaler struct {
	failOn map[string]bool
}

func (f *fakeUpscaler) Upscale(imageURL string, scale int) ([]byte, int, int, error) {
	if f.failOn[imageURL] {
		return nil, 0, 0, fmt.Errorf("upscale model crashed")
	}
	return []byte("upscaled-bytes"), 2048, 2048, nil
}

type fakeStorage struct {
	uploaded []string
}

func (f *fakeStorage) UploadFile(orderID uuid.UUID, filename, contentType string, data []byte) (string, string, error) {
	path := fmt.Sprintf("orders/%s/%s", orderID, filename)
	f.uploaded = append(f.uploaded, path)
	return path, "https://cdn.example.com/" + path, nil
}

func (f *fakeStorage) GetPublicURL(storagePath string) string {
	return "https://cdn.example.com/" + storagePath
}

type fakeNotifier struct {
	confirmed []string
	training  []string
	ready     []string
	failed    []string
}

func (f *fakeNotifier) SendOrderConfirmed(email string, order *models.Order) error {
	f.confirmed = append(f.confirmed, email)
	return nil
}

func (f *fakeNotifier) SendTrainingStarted(email string, order *models.Order) error {
	f.training = append(f.training, email)
	return nil
}

func (f *fakeNotifier) SendHeadshotsReady(email string, order *models.Order) error {
	f.ready = append(f.ready, email)
	return nil
}

func (f *fakeNotifier) SendGenerationFailed(email string, order *models.Order, reason string) error {
	f.failed = append(f.failed, email)
	return nil
}

type fakePublisher struct {
	events []string
}

func (f *fakePublisher) PublishOrderEvent(orderID uuid.UUID, event string, payload map[string]interface{}) error {
	f.events = append(f.events, event)
	return nil
}
