package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iheadshot-backend/internal/handlers"
	"iheadshot-backend/internal/models"
	"iheadshot-backend/internal/orders"
)

type fakeSessionCreator struct {
	email string
	tier  orders.Tier
	err   error
}

func (f *fakeSessionCreator) CreateCheckoutSession(email string, tier orders.Tier) (string, string, error) {
	f.email = email
	f.tier = tier
	if f.err != nil {
		return "", "", f.err
	}
	return "https://checkout.stripe.com/pay/cs_123", "cs_123", nil
}

func TestCreateCheckout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions := &fakeSessionCreator{}
	router := gin.New()
	router.POST("/checkout", handlers.NewCheckoutHandler(sessions).CreateCheckout)

	w := postJSON(router, "/checkout", `{"tier":"professional","email":"jordan@example.com"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.CheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_123", resp.CheckoutURL)
	assert.Equal(t, "cs_123", resp.SessionID)

	// the full tier definition reaches the session, so its name and headshot
	// count end up in the session metadata
	assert.Equal(t, "jordan@example.com", sessions.email)
	assert.Equal(t, "professional", sessions.tier.Name)
	assert.Equal(t, 30, sessions.tier.HeadshotCount)
}

func TestCreateCheckoutUnknownTier(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions := &fakeSessionCreator{}
	router := gin.New()
	router.POST("/checkout", handlers.NewCheckoutHandler(sessions).CreateCheckout)

	w := postJSON(router, "/checkout", `{"tier":"platinum"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, sessions.tier.Name)
}

func TestCreateCheckoutProviderError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions := &fakeSessionCreator{err: errors.New("stripe unavailable")}
	router := gin.New()
	router.POST("/checkout", handlers.NewCheckoutHandler(sessions).CreateCheckout)

	w := postJSON(router, "/checkout", `{"tier":"starter"}`, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
