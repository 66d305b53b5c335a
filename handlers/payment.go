package handlers

import (
	"net/http"

	"github.com/omeshapasan2/e-commerce-platform/middleware"
	"github.com/omeshapasan2/e-commerce-platform/models"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	orders   OrderStore
	products ProductStore
	checkout CheckoutClient
	logger   *zap.Logger
}

func NewPaymentHandler(orders OrderStore, products ProductStore, checkout CheckoutClient, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		orders:   orders,
		products: products,
		checkout: checkout,
		logger:   logger,
	}
}

type createCheckoutSessionRequest struct {
	OrderID string `json:"orderId"`
}

// CreateCheckoutSession creates a payment session for an order. At most one
// session is ever bound to an order: the binding is claimed with a
// compare-and-set on the order document, and retries (or the loser of a
// concurrent race) get the already-bound session back.
func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "CreateCheckoutSession")
	defer span.End()

	var req createCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" {
		respondError(c, h.logger, &models.ValidationError{Message: "orderId is required"})
		return
	}
	span.SetAttributes(attribute.String("order.id", req.OrderID))

	order, err := h.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if order.UserID != middleware.UserID(c) && middleware.Role(c) != middleware.RoleAdmin {
		respondError(c, h.logger, &models.AuthorizationError{Message: "Not allowed to pay for this order"})
		return
	}
	if order.PaymentStatus == models.PaymentStatusCompleted {
		respondError(c, h.logger, &models.ConflictError{Message: "Order is already paid"})
		return
	}
	if order.CheckoutSessionID != "" {
		c.JSON(http.StatusOK, gin.H{"id": order.CheckoutSessionID})
		return
	}

	ids := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID.Hex())
	}
	products, err := h.products.GetMany(ctx, ids)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	sessionID, sessionURL, err := h.checkout.CreateCheckoutSession(ctx, order, products)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	claimed, err := h.orders.ClaimCheckoutSession(ctx, order.ID.Hex(), sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !claimed {
		// A concurrent request bound its session first. Ours is orphaned
		// and simply expires at the provider.
		h.logger.Warn("Lost checkout session claim, returning winner",
			zap.String("order_id", order.ID.Hex()),
			zap.String("orphaned_session_id", sessionID))
		current, err := h.orders.GetByID(ctx, order.ID.Hex())
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": current.CheckoutSessionID})
		return
	}

	middleware.RecordCheckoutSessionCreated()
	h.logger.Info("Checkout session created",
		zap.String("order_id", order.ID.Hex()),
		zap.String("session_id", sessionID))

	c.JSON(http.StatusCreated, gin.H{"id": sessionID, "url": sessionURL})
}

// SessionStatus reports the provider-side state of a checkout session along
// with the local order it is bound to. The frontend polls this after redirect.
func (h *PaymentHandler) SessionStatus(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID := c.Query("session_id")
	if sessionID == "" {
		respondError(c, h.logger, &models.ValidationError{Message: "session_id is required"})
		return
	}

	order, err := h.orders.GetByCheckoutSession(ctx, sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status, err := h.checkout.SessionStatus(ctx, sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        status.Status,
		"customerEmail": status.CustomerEmail,
		"orderId":       order.ID.Hex(),
		"paymentStatus": order.PaymentStatus,
		"orderStatus":   order.OrderStatus,
	})
}
