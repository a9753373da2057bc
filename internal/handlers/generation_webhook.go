package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"iheadshot-backend/internal/logger"
	"iheadshot-backend/internal/models"
	"iheadshot-backend/internal/services"
)

type GenerationWebhookHandler struct {
	pipeline *services.Pipeline
}

func NewGenerationWebhookHandler(pipeline *services.Pipeline) *GenerationWebhookHandler {
	return &GenerationWebhookHandler{
		pipeline: pipeline,
	}
}

// generationWebhookEvent is the provider's loosely-typed callback: a tune
// object for training updates, a prompt object for generation results.
type generationWebhookEvent struct {
	Tune *struct {
		ID           int64  `json:"id"`
		Status       string `json:"status"`
		ModelVersion string `json:"model_version"`
		Error        string `json:"error"`
	} `json:"tune"`
	Prompt *struct {
		ID     int64    `json:"id"`
		Title  string   `json:"title"`
		Text   string   `json:"text"`
		Images []string `json:"images"`
	} `json:"prompt"`
}

// HandleWebhook godoc
// @Summary     Generation provider webhook endpoint
// @Description Receives training and generation updates. Training updates are looked up by the provider job id; generation results are attributed only by the order reference echoed back in the prompt title — never by guessing from recent jobs.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Success     200 {object} map[string]string "status"
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /webhooks/generation [post]
func (h *GenerationWebhookHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read request body",
			Message: err.Error(),
		})
		return
	}

	var event generationWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse event",
			Message: err.Error(),
		})
		return
	}

	switch {
	case event.Tune != nil:
		providerJobID := strconv.FormatInt(event.Tune.ID, 10)
		err := h.pipeline.HandleTrainingUpdate(providerJobID, event.Tune.Status, event.Tune.ModelVersion, event.Tune.Error)
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "training job not found"})
			return
		}
		if err != nil {
			// Structurally accepted; ack and log rather than trigger the
			// provider's retry loop.
			logger.Error("failed to process training update", "provider_job_id", providerJobID, "error", err)
		}

	case event.Prompt != nil:
		// The prompt title carries the order id we set at submission. It is
		// the only correlation key; there is no fallback lookup.
		orderID, err := uuid.Parse(event.Prompt.Title)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "missing order reference",
				Message: "prompt title must carry the order id",
			})
			return
		}

		style := c.Query("style")
		err = h.pipeline.RecordGeneratedImages(orderID, style, event.Prompt.Text, event.Prompt.Images)
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
			return
		}
		if err != nil {
			logger.Error("failed to record generation results", "order_id", orderID, "error", err)
		}

	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unrecognized event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
