package services

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"iheadshot-backend/internal/logger"
	"iheadshot-backend/internal/models"
	"iheadshot-backend/internal/orders"
	"iheadshot-backend/internal/payments"
	"iheadshot-backend/internal/providers"
)

// Notification kinds. One email per (order, kind), enforced by the
// notifications ledger.
const (
	NotifyOrderConfirmed   = "order_confirmed"
	NotifyTrainingStarted  = "training_started"
	NotifyHeadshotsReady   = "headshots_ready"
	NotifyGenerationFailed = "generation_failed"
)

// Pipeline coordinates the order lifecycle across the payment webhook, the
// training endpoint and the generation provider's callbacks. Handlers stay
// thin; every transition and side effect lives here.
type Pipeline struct {
	store    Store
	training providers.TrainingProvider
	primary  providers.GenerationProvider
	fallback providers.GenerationProvider
	upscaler providers.Upscaler
	storage  Storage
	notifier Notifier
	publisher Publisher

	callbackURL string
}

func NewPipeline(
	store Store,
	training providers.TrainingProvider,
	primary, fallback providers.GenerationProvider,
	upscaler providers.Upscaler,
	storage Storage,
	notifier Notifier,
	publisher Publisher,
	callbackURL string,
) *Pipeline {
	return &Pipeline{
		store:       store,
		training:    training,
		primary:     primary,
		fallback:    fallback,
		upscaler:    upscaler,
		storage:     storage,
		notifier:    notifier,
		publisher:   publisher,
		callbackURL: callbackURL,
	}
}

func notFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// HandleCheckoutCompleted creates the order for a verified payment event.
// The checkout session reference is the dedup key: a replayed event finds
// the existing row and does nothing, including no second email.
func (p *Pipeline) HandleCheckoutCompleted(ev *payments.CheckoutEvent) (*models.Order, error) {
	tier, ok := orders.LookupTier(ev.Tier)
	if !ok {
		return nil, fmt.Errorf("unknown tier %q in checkout metadata", ev.Tier)
	}

	headshots := ev.HeadshotCount
	if headshots <= 0 {
		headshots = tier.HeadshotCount
	}

	order := &models.Order{
		ID:                uuid.New(),
		Email:             ev.Email,
		CheckoutSessionID: ev.SessionID,
		AmountCents:       ev.AmountCents,
		Tier:              tier.Name,
		HeadshotCount:     headshots,
		Status:            orders.StatusPaid,
	}

	created, err := p.store.CreateOrderFromCheckout(order)
	if err != nil {
		return nil, err
	}
	if !created {
		logger.Info("duplicate checkout event ignored", "session_id", ev.SessionID)
		return nil, nil
	}

	logger.Info("order created", "order_id", order.ID, "tier", order.Tier)

	p.notify(order, NotifyOrderConfirmed, func() error {
		return p.notifier.SendOrderConfirmed(order.Email, order)
	})
	p.publish(order.ID, "payment_received", map[string]interface{}{
		"order_id": order.ID.String(),
		"status":   string(orders.StatusPaid),
		"tier":     order.Tier,
	})

	return order, nil
}

// StartTraining submits the order's selfies to the training provider. The
// paid->training compare-and-set is taken before anything else, so a
// duplicate or racing request is rejected without creating a TrainingJob.
func (p *Pipeline) StartTraining(orderID uuid.UUID) (*models.TrainingJob, error) {
	order, err := p.store.GetOrder(orderID)
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	uploads, err := p.store.ListUploads(orderID)
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, ErrNoUploads
	}

	advanced, err := p.store.AdvanceOrderStatus(orderID, orders.StatusPaid, orders.StatusTraining)
	if err != nil {
		return nil, err
	}
	if !advanced {
		return nil, fmt.Errorf("%w: order is %s, expected %s", ErrInvalidState, order.Status, orders.StatusPaid)
	}

	imageURLs := make([]string, len(uploads))
	for i, u := range uploads {
		imageURLs[i] = p.storage.GetPublicURL(u.StoragePath)
	}

	providerJobID, err := p.training.SubmitTraining(providers.TrainingRequest{
		OrderID:     orderID,
		Subject:     "person",
		ImageURLs:   imageURLs,
		CallbackURL: p.generationCallbackURL(""),
	})
	if err != nil {
		// Don't leave the order stuck in training when nothing was
		// submitted.
		p.failOrder(order, orders.StatusTraining, fmt.Sprintf("training submission failed: %v", err))
		return nil, fmt.Errorf("failed to submit training: %w", err)
	}

	job := &models.TrainingJob{
		ID:            uuid.New(),
		OrderID:       orderID,
		ProviderJobID: providerJobID,
		Status:        "training",
	}
	if err := p.store.CreateTrainingJob(job); err != nil {
		p.failOrder(order, orders.StatusTraining, fmt.Sprintf("failed to record training job: %v", err))
		return nil, err
	}

	logger.Info("training started", "order_id", orderID, "provider_job_id", providerJobID)

	p.notify(order, NotifyTrainingStarted, func() error {
		return p.notifier.SendTrainingStarted(order.Email, order)
	})
	p.publish(orderID, "training_started", map[string]interface{}{
		"order_id": orderID.String(),
		"status":   string(orders.StatusTraining),
		"job_id":   providerJobID,
	})

	return job, nil
}

// HandleTrainingUpdate processes a training callback. The job is located
// only by the provider's job id. A "completed" update advances the order
// via compare-and-set before submitting generation, so a replayed callback
// cannot double-submit the batch.
func (p *Pipeline) HandleTrainingUpdate(providerJobID, status, modelVersion, errorMsg string) error {
	job, err := p.store.GetTrainingJobByProviderID(providerJobID)
	if err != nil {
		if notFound(err) {
			return ErrNotFound
		}
		return err
	}

	switch strings.ToLower(status) {
	case "completed", "succeeded", "trained":
		if err := p.store.UpdateTrainingJob(job.ID, "completed", modelVersion, ""); err != nil {
			return err
		}

		advanced, err := p.store.AdvanceOrderStatus(job.OrderID, orders.StatusTraining, orders.StatusGenerating)
		if err != nil {
			return err
		}
		if !advanced {
			// Duplicate callback; generation was already triggered.
			logger.Info("training callback ignored, generation already triggered", "provider_job_id", providerJobID)
			return nil
		}

		order, err := p.store.GetOrder(job.OrderID)
		if err != nil {
			return err
		}

		mv := modelVersion
		if mv == "" {
			mv = job.ProviderJobID
		}

		p.publish(order.ID, "generation_started", map[string]interface{}{
			"order_id": order.ID.String(),
			"status":   string(orders.StatusGenerating),
		})

		return p.submitGenerationBatch(order, job, mv)

	case "failed":
		if err := p.store.UpdateTrainingJob(job.ID, "failed", "", errorMsg); err != nil {
			return err
		}
		order, err := p.store.GetOrder(job.OrderID)
		if err != nil {
			return err
		}
		p.failOrder(order, orders.StatusTraining, fmt.Sprintf("training failed: %s", errorMsg))
		return nil

	default:
		// Late informational updates must not regress a job that already
		// reached a terminal state.
		if job.Status == "completed" || job.Status == "failed" {
			return nil
		}
		return p.store.UpdateTrainingJob(job.ID, "training", modelVersion, "")
	}
}

// submitGenerationBatch fans the order's target count out across its tier's
// styles. Each style is independent: a primary failure gets one fallback
// attempt, a style that fails both ways is logged and skipped, and only a
// batch with zero surviving styles fails the order.
func (p *Pipeline) submitGenerationBatch(order *models.Order, job *models.TrainingJob, modelVersion string) error {
	tier, ok := orders.LookupTier(order.Tier)
	styles := tier.Styles
	if !ok || len(styles) == 0 {
		styles = []string{"studio"}
	}

	faceURL := ""
	if uploads, err := p.store.ListUploads(order.ID); err == nil && len(uploads) > 0 {
		faceURL = p.storage.GetPublicURL(uploads[0].StoragePath)
	}

	counts := orders.SplitCount(order.HeadshotCount, len(styles))
	failed := 0
	var lastErr error

	for i, style := range styles {
		req := providers.GenerationRequest{
			OrderID:      order.ID,
			Reference:    order.ID.String(),
			ModelVersion: modelVersion,
			Style:        style,
			Prompt:       orders.PromptForStyle(style),
			Count:        counts[i],
			FaceImageURL: faceURL,
			CallbackURL:  p.generationCallbackURL(style),
		}

		result, err := p.primary.SubmitGeneration(req)
		if err != nil && p.fallback != nil {
			logger.Warn("primary generation failed, trying fallback",
				"order_id", order.ID, "style", style, "provider", p.primary.Name(), "error", err)
			result, err = p.fallback.SubmitGeneration(req)
		}
		if err != nil {
			logger.Error("generation failed for style",
				"order_id", order.ID, "style", style, "error", err)
			failed++
			lastErr = err
			continue
		}

		if result != nil && len(result.ImageURLs) > 0 {
			if err := p.RecordGeneratedImages(order.ID, style, req.Prompt, result.ImageURLs); err != nil {
				logger.Error("failed to record inline generation results",
					"order_id", order.ID, "style", style, "error", err)
			}
		}
	}

	if failed == len(styles) {
		p.failOrder(order, orders.StatusGenerating, fmt.Sprintf("all generation requests failed: %v", lastErr))
		return fmt.Errorf("all generation requests failed: %w", lastErr)
	}

	return nil
}

// RecordGeneratedImages appends delivered images and completes the order
// when the count reaches the target. The generating->completed
// compare-and-set plus the notification ledger make completion and the
// ready email exactly-once no matter how many callbacks land past the
// threshold.
func (p *Pipeline) RecordGeneratedImages(orderID uuid.UUID, style, prompt string, imageURLs []string) error {
	order, err := p.store.GetOrder(orderID)
	if err != nil {
		if notFound(err) {
			return ErrNotFound
		}
		return err
	}

	var jobID uuid.NullUUID
	if job, err := p.store.GetTrainingJobByOrder(orderID); err == nil {
		jobID = uuid.NullUUID{UUID: job.ID, Valid: true}
	}

	for _, imageURL := range imageURLs {
		img := &models.GeneratedImage{
			ID:            uuid.New(),
			OrderID:       orderID,
			TrainingJobID: jobID,
			ImageURL:      imageURL,
			Style:         sql.NullString{String: style, Valid: style != ""},
			Prompt:        sql.NullString{String: prompt, Valid: prompt != ""},
			Quality:       "standard",
		}
		if err := p.store.CreateGeneratedImage(img); err != nil {
			return err
		}
	}

	count, err := p.store.CountGeneratedImages(orderID)
	if err != nil {
		return err
	}

	p.publish(orderID, "generation_progress", map[string]interface{}{
		"order_id": orderID.String(),
		"images":   count,
		"target":   order.HeadshotCount,
	})

	if count < order.HeadshotCount {
		return nil
	}

	advanced, err := p.store.AdvanceOrderStatus(orderID, orders.StatusGenerating, orders.StatusCompleted)
	if err != nil {
		return err
	}
	if !advanced {
		return nil
	}

	logger.Info("order completed", "order_id", orderID, "images", count)

	p.notify(order, NotifyHeadshotsReady, func() error {
		return p.notifier.SendHeadshotsReady(order.Email, order)
	})
	p.publish(orderID, "headshots_ready", map[string]interface{}{
		"order_id": orderID.String(),
		"status":   string(orders.StatusCompleted),
		"images":   count,
	})

	return nil
}

// UpscaleBatch enhances the given gallery images synchronously. Failures are
// per-image: N requested with one failure still persists the N-1 successes,
// and originals are never touched.
func (p *Pipeline) UpscaleBatch(orderID uuid.UUID, imageURLs []string, scale int) ([]models.UpscaledImage, []string, error) {
	_, err := p.store.GetOrder(orderID)
	if err != nil {
		if notFound(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	if scale <= 0 {
		scale = 4
	}

	var results []models.UpscaledImage
	var failures []string

	for _, imageURL := range imageURLs {
		owned, err := p.store.HasGeneratedImage(orderID, imageURL)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", imageURL, err))
			continue
		}
		if !owned {
			failures = append(failures, fmt.Sprintf("%s: not part of this order", imageURL))
			continue
		}

		data, width, height, err := p.upscaler.Upscale(imageURL, scale)
		if err != nil {
			logger.Error("upscale failed", "order_id", orderID, "image_url", imageURL, "error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", imageURL, err))
			continue
		}

		filename := fmt.Sprintf("upscaled_%dx_%s.jpg", scale, uuid.New().String()[:8])
		_, publicURL, err := p.storage.UploadFile(orderID, filename, "image/jpeg", data)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", imageURL, err))
			continue
		}

		img := &models.UpscaledImage{
			ID:          uuid.New(),
			OrderID:     orderID,
			OriginalURL: imageURL,
			UpscaledURL: publicURL,
			Scale:       scale,
			Width:       width,
			Height:      height,
		}
		if err := p.store.CreateUpscaledImage(img); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", imageURL, err))
			continue
		}

		results = append(results, *img)
	}

	return results, failures, nil
}

// failOrder moves the order to failed (guarded by the compare-and-set) and
// fires the failure notification once.
func (p *Pipeline) failOrder(order *models.Order, from orders.Status, reason string) {
	advanced, err := p.store.MarkOrderFailed(order.ID, from, reason)
	if err != nil {
		logger.Error("failed to mark order failed", "order_id", order.ID, "error", err)
		return
	}
	if !advanced {
		return
	}

	logger.Error("order failed", "order_id", order.ID, "reason", reason)

	p.notify(order, NotifyGenerationFailed, func() error {
		return p.notifier.SendGenerationFailed(order.Email, order, reason)
	})
	p.publish(order.ID, "generation_failed", map[string]interface{}{
		"order_id": order.ID.String(),
		"status":   string(orders.StatusFailed),
		"error":    reason,
	})
}

// notify sends one email per (order, kind). The ledger claim is the
// idempotency gate; a lost claim means another delivery already sent it.
func (p *Pipeline) notify(order *models.Order, kind string, send func() error) {
	claimed, err := p.store.ClaimNotification(order.ID, kind)
	if err != nil {
		logger.Error("failed to claim notification", "order_id", order.ID, "kind", kind, "error", err)
		return
	}
	if !claimed {
		return
	}
	if err := send(); err != nil {
		logger.Error("failed to send notification", "order_id", order.ID, "kind", kind, "error", err)
	}
}

func (p *Pipeline) publish(orderID uuid.UUID, event string, payload map[string]interface{}) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishOrderEvent(orderID, event, payload); err != nil {
		logger.Warn("failed to publish event", "order_id", orderID, "event", event, "error", err)
	}
}

func (p *Pipeline) generationCallbackURL(style string) string {
	u := strings.TrimSuffix(p.callbackURL, "/") + "/api/v1/webhooks/generation"
	if style != "" {
		u += "?style=" + url.QueryEscape(style)
	}
	return u
}
