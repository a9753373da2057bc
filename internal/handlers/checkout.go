package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"iheadshot-backend/internal/models"
	"iheadshot-backend/internal/orders"
	"iheadshot-backend/internal/payments"
)

type CheckoutHandler struct {
	sessions payments.SessionCreator
}

func NewCheckoutHandler(sessions payments.SessionCreator) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
	}
}

// CreateCheckout godoc
// @Summary     Start a checkout
// @Description Creates a hosted checkout session for the selected tier and returns the redirect URL. The tier and headshot count ride in the session metadata.
// @Tags        checkout
// @Accept      json
// @Produce     json
// @Param       request body models.CheckoutRequest true "Tier selection"
// @Success     200 {object} models.CheckoutResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /checkout [post]
func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	tier, ok := orders.LookupTier(req.Tier)
	if !ok {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "unknown tier",
			Message: "tier must be one of the published plans",
		})
		return
	}

	checkoutURL, sessionID, err := h.sessions.CreateCheckoutSession(req.Email, tier)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "failed to create checkout session",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.CheckoutResponse{
		CheckoutURL: checkoutURL,
		SessionID:   sessionID,
	})
}
