package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/omeshapasan2/e-commerce-platform/circuitbreaker"
	"github.com/omeshapasan2/e-commerce-platform/models"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
	"go.uber.org/zap"
)

// Session status values reported to the UI confirmation page.
const (
	SessionOpen     = "OPEN"
	SessionComplete = "COMPLETE"
)

// SessionStatus is the provider-side view of a checkout session.
type SessionStatus struct {
	ID            string
	Status        string
	CustomerEmail string
}

// Webhook event types that drive payment state transitions.
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
	EventCheckoutExpired       = "checkout.session.expired"
)

// Event is a verified webhook notification. SessionID is empty for event
// types that do not carry a checkout session.
type Event struct {
	Type      string
	SessionID string
}

// Client wraps the Stripe API for checkout session management, product
// registration and webhook verification. Outbound calls share a bounded
// HTTP timeout and a circuit breaker so a degraded provider fails fast
// instead of tying up request handlers.
type Client struct {
	api           *client.API
	breaker       *circuitbreaker.CircuitBreaker
	webhookSecret string
	frontendURL   string
	logger        *zap.Logger
}

func NewClient(logger *zap.Logger) (*Client, error) {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is not set")
	}
	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET is not set")
	}
	frontendURL := getEnv("FRONTEND_URL", "http://localhost:5173")

	api := &client.API{}
	api.Init(key, stripe.NewBackends(&http.Client{Timeout: 10 * time.Second}))

	logger.Info("Stripe client initialized")
	return &Client{
		api:           api,
		breaker:       circuitbreaker.New(5, 30*time.Second),
		webhookSecret: secret,
		frontendURL:   frontendURL,
		logger:        logger,
	}, nil
}

// CreateCheckoutSession registers a payment session for the order. Line
// items reference the product's registered Stripe price when one exists and
// fall back to ad-hoc price data priced from the order's frozen unit prices.
// Returns the session id and the hosted payment page URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, o *models.Order, products map[string]models.Product) (string, string, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(o.Items))
	for _, it := range o.Items {
		li := &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(it.Quantity)),
		}
		p, ok := products[it.ProductID.Hex()]
		if ok && p.StripePriceID != "" {
			li.Price = stripe.String(p.StripePriceID)
		} else {
			name := p.Name
			if name == "" {
				name = "Item " + it.ProductID.Hex()
			}
			li.PriceData = &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(toCents(it.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(name),
				},
			}
		}
		lineItems = append(lineItems, li)
	}

	params := &stripe.CheckoutSessionParams{
		Params:            stripe.Params{Context: ctx},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:         lineItems,
		ClientReferenceID: stripe.String(o.ID.Hex()),
		SuccessURL:        stripe.String(c.frontendURL + "/shop/complete?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(c.frontendURL + "/shop/cart"),
	}
	params.AddMetadata("orderId", o.ID.Hex())

	var sess *stripe.CheckoutSession
	err := c.breaker.Execute(func() error {
		var err error
		sess, err = c.api.CheckoutSessions.New(params)
		return err
	})
	if err != nil {
		return "", "", &models.UpstreamError{Message: "failed to create checkout session", Err: err}
	}
	return sess.ID, sess.URL, nil
}

func (c *Client) SessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}}

	var sess *stripe.CheckoutSession
	err := c.breaker.Execute(func() error {
		var err error
		sess, err = c.api.CheckoutSessions.Get(sessionID, params)
		return err
	})
	if err != nil {
		return nil, &models.UpstreamError{Message: "failed to fetch checkout session", Err: err}
	}

	status := SessionOpen
	if sess.Status == stripe.CheckoutSessionStatusComplete {
		status = SessionComplete
	}
	email := ""
	if sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}
	return &SessionStatus{ID: sess.ID, Status: status, CustomerEmail: email}, nil
}

// RegisterProduct creates the Stripe product with a default price and
// returns the price id to store on the catalog document.
func (c *Client) RegisterProduct(ctx context.Context, name, description string, price float64) (string, error) {
	params := &stripe.ProductParams{
		Params: stripe.Params{Context: ctx},
		Name:   stripe.String(name),
		DefaultPriceData: &stripe.ProductDefaultPriceDataParams{
			Currency:   stripe.String(string(stripe.CurrencyUSD)),
			UnitAmount: stripe.Int64(toCents(price)),
		},
	}
	if description != "" {
		params.Description = stripe.String(description)
	}

	var prod *stripe.Product
	err := c.breaker.Execute(func() error {
		var err error
		prod, err = c.api.Products.New(params)
		return err
	})
	if err != nil {
		return "", &models.UpstreamError{Message: "failed to register product with payment provider", Err: err}
	}
	if prod.DefaultPrice == nil {
		return "", &models.UpstreamError{Message: "payment provider returned product without default price"}
	}
	return prod.DefaultPrice.ID, nil
}

// VerifyEvent checks the webhook signature and extracts the checkout
// session id. A signature mismatch is a SecurityError; the caller must not
// change any state.
func (c *Client) VerifyEvent(payload []byte, sigHeader string) (Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, sigHeader, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return Event{}, &models.SecurityError{Message: "webhook signature verification failed"}
	}

	out := Event{Type: string(ev.Type)}
	switch string(ev.Type) {
	case EventCheckoutCompleted,
		EventAsyncPaymentSucceeded,
		EventAsyncPaymentFailed,
		EventCheckoutExpired:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &sess); err != nil {
			return Event{}, &models.ValidationError{Message: "malformed webhook event payload"}
		}
		out.SessionID = sess.ID
	}
	return out, nil
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
