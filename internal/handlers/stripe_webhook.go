package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"iheadshot-backend/internal/logger"
	"iheadshot-backend/internal/models"
	"iheadshot-backend/internal/payments"
	"iheadshot-backend/internal/services"
)

type StripeWebhookHandler struct {
	verifier payments.EventVerifier
	pipeline *services.Pipeline
}

func NewStripeWebhookHandler(verifier payments.EventVerifier, pipeline *services.Pipeline) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		verifier: verifier,
		pipeline: pipeline,
	}
}

// HandleWebhook godoc
// @Summary     Stripe webhook endpoint
// @Description Receives payment events. The signature is verified before anything else; a forged or missing signature is rejected with no side effects. Replayed checkout events are deduplicated by session id.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Success     200 {object} map[string]string "status"
// @Failure     400 {object} models.ErrorResponse
// @Router      /webhooks/stripe [post]
func (h *StripeWebhookHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read request body",
			Message: err.Error(),
		})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing signature header"})
		return
	}

	// Nothing is written before this check passes.
	event, err := h.verifier.VerifyEvent(body, signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid webhook payload",
			Message: err.Error(),
		})
		return
	}

	if event == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	// The payload is structurally accepted from here on: acknowledge with
	// 200 even if processing fails, so the provider's retries don't storm
	// us. Failures are logged for manual follow-up.
	if _, err := h.pipeline.HandleCheckoutCompleted(event); err != nil {
		logger.Error("failed to process checkout event", "session_id", event.SessionID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
