// Package payments wraps the Stripe hosted-checkout surface behind small
// interfaces so handlers and the pipeline can be tested against fakes.
package payments

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"

	"iheadshot-backend/internal/orders"
)

// CheckoutEvent is the domain view of a verified "checkout completed"
// webhook event. SessionID is the natural dedup key for order creation.
type CheckoutEvent struct {
	SessionID     string
	Email         string
	AmountCents   int64
	Tier          string
	HeadshotCount int
}

type SessionCreator interface {
	CreateCheckoutSession(email string, tier orders.Tier) (checkoutURL, sessionID string, err error)
}

// EventVerifier checks the webhook signature and parses the payload. A bad
// signature or malformed payload returns an error; a valid event of an
// uninteresting type returns (nil, nil).
type EventVerifier interface {
	VerifyEvent(payload []byte, signature string) (*CheckoutEvent, error)
}

type Client struct {
	webhookSecret string
	successURL    string
	cancelURL     string
}

func NewClient(secretKey, webhookSecret, successURL, cancelURL string) *Client {
	stripe.Key = secretKey
	return &Client{
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
	}
}

// CreateCheckoutSession opens a hosted checkout for the tier. The tier name
// and headshot count ride along in session metadata so the completion
// webhook can create the order without another lookup.
func (c *Client) CreateCheckoutSession(email string, tier orders.Tier) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(tier.PriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("iHeadshot %s (%d headshots)", tier.DisplayName, tier.HeadshotCount)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	params.AddMetadata("tier", tier.Name)
	params.AddMetadata("headshot_count", strconv.Itoa(tier.HeadshotCount))

	sess, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return sess.URL, sess.ID, nil
}

func (c *Client) VerifyEvent(payload []byte, signature string) (*CheckoutEvent, error) {
	// Accounts pin their own API version, so don't reject on a version that
	// differs from the SDK's.
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify webhook signature: %w", err)
	}

	if event.Type != "checkout.session.completed" {
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session: %w", err)
	}

	ev := &CheckoutEvent{
		SessionID:   sess.ID,
		AmountCents: sess.AmountTotal,
		Tier:        sess.Metadata["tier"],
	}
	if sess.CustomerDetails != nil {
		ev.Email = sess.CustomerDetails.Email
	}
	if ev.Email == "" {
		ev.Email = sess.CustomerEmail
	}
	if n, err := strconv.Atoi(sess.Metadata["headshot_count"]); err == nil {
		ev.HeadshotCount = n
	}

	return ev, nil
}
