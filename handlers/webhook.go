package handlers

import (
	"context"
	"net/http"

	"github.com/omeshapasan2/e-commerce-platform/middleware"
	"github.com/omeshapasan2/e-commerce-platform/models"
	"github.com/omeshapasan2/e-commerce-platform/payments"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

type WebhookHandler struct {
	orders   OrderStore
	verifier WebhookVerifier
	events   EventPublisher
	logger   *zap.Logger
}

func NewWebhookHandler(orders OrderStore, verifier WebhookVerifier, events EventPublisher, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		orders:   orders,
		verifier: verifier,
		events:   events,
		logger:   logger,
	}
}

// HandleWebhook ingests payment provider events. Signature verification runs
// on the raw body before any parsing; transitions are idempotent, so the
// provider may deliver any event any number of times, in any order.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "HandleWebhook")
	defer span.End()

	payload, err := c.GetRawData()
	if err != nil {
		respondError(c, h.logger, &models.ValidationError{Message: "Unreadable request body"})
		return
	}

	event, err := h.verifier.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		middleware.RecordWebhookEvent("unknown", "rejected")
		respondError(c, h.logger, err)
		return
	}

	switch event.Type {
	case payments.EventCheckoutCompleted, payments.EventAsyncPaymentSucceeded:
		h.applyTransition(c, ctx, event, true)
	case payments.EventAsyncPaymentFailed, payments.EventCheckoutExpired:
		h.applyTransition(c, ctx, event, false)
	default:
		middleware.RecordWebhookEvent(event.Type, "ignored")
		h.logger.Info("Ignoring webhook event", zap.String("type", event.Type))
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *WebhookHandler) applyTransition(c *gin.Context, ctx context.Context, event payments.Event, success bool) {
	if event.SessionID == "" {
		middleware.RecordWebhookEvent(event.Type, "ignored")
		h.logger.Warn("Webhook event without session id", zap.String("type", event.Type))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var found, changed bool
	var err error
	if success {
		found, changed, err = h.orders.MarkPaymentCompleted(ctx, event.SessionID)
	} else {
		found, changed, err = h.orders.MarkPaymentFailed(ctx, event.SessionID)
	}
	if err != nil {
		// Non-2xx makes the provider redeliver; the transition is
		// idempotent so the retry is safe.
		respondError(c, h.logger, err)
		return
	}

	switch {
	case !found:
		middleware.RecordWebhookEvent(event.Type, "unknown_session")
		h.logger.Warn("Webhook for unknown checkout session",
			zap.String("session_id", event.SessionID),
			zap.String("type", event.Type))
	case !changed:
		middleware.RecordWebhookEvent(event.Type, "duplicate")
		h.logger.Info("Duplicate or superseded webhook event",
			zap.String("session_id", event.SessionID),
			zap.String("type", event.Type))
	default:
		middleware.RecordWebhookEvent(event.Type, "applied")
		h.logger.Info("Payment status updated",
			zap.String("session_id", event.SessionID),
			zap.Bool("success", success))
		h.publishPaymentEvent(ctx, event.SessionID, success)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) publishPaymentEvent(ctx context.Context, sessionID string, success bool) {
	if h.events == nil {
		return
	}
	order, err := h.orders.GetByCheckoutSession(ctx, sessionID)
	if err != nil {
		h.logger.Error("Failed to load order for payment event", zap.Error(err))
		return
	}

	eventType := models.EventPaymentCompleted
	if !success {
		eventType = models.EventPaymentFailed
	}
	event := models.OrderEvent{
		OrderID:       order.ID.Hex(),
		UserID:        order.UserID,
		Amount:        order.Amount,
		PaymentStatus: order.PaymentStatus,
		OrderStatus:   order.OrderStatus,
		EventType:     eventType,
	}
	if err := h.events.PublishOrderEvent(ctx, event); err != nil {
		h.logger.Error("Failed to publish payment event",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}
}
