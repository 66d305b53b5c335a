package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/omeshapasan2/e-commerce-platform/middleware"
	"github.com/omeshapasan2/e-commerce-platform/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders   OrderStore
	products ProductStore
	events   EventPublisher
	logger   *zap.Logger

	// reportingLoc fixes the day boundary for daily sales buckets.
	reportingLoc *time.Location
	now          func() time.Time
}

func NewOrderHandler(orders OrderStore, products ProductStore, events EventPublisher, logger *zap.Logger) *OrderHandler {
	tz := os.Getenv("REPORTING_TIMEZONE")
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logger.Warn("Invalid REPORTING_TIMEZONE, using UTC", zap.String("tz", tz), zap.Error(err))
		loc = time.UTC
	}

	return &OrderHandler{
		orders:       orders,
		products:     products,
		events:       events,
		logger:       logger,
		reportingLoc: loc,
		now:          time.Now,
	}
}

// CreateOrder validates the requested items, freezes their unit prices and
// persists the order in PENDING/PENDING state.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "CreateOrder")
	defer span.End()

	userID := middleware.UserID(c)

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, &models.ValidationError{Message: "Invalid request body"})
		return
	}
	if len(req.Items) == 0 {
		respondError(c, h.logger, &models.ValidationError{Message: "Order must contain at least one item"})
		return
	}

	ids := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			respondError(c, h.logger, &models.ValidationError{Message: "Item quantity must be at least 1"})
			return
		}
		if _, err := primitive.ObjectIDFromHex(item.ProductID); err != nil {
			respondError(c, h.logger, &models.NotFoundError{Message: "Product not found: " + item.ProductID})
			return
		}
		ids = append(ids, item.ProductID)
	}

	products, err := h.products.GetMany(ctx, ids)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	amount := 0.0
	for _, item := range req.Items {
		product, ok := products[item.ProductID]
		if !ok {
			respondError(c, h.logger, &models.NotFoundError{Message: "Product not found: " + item.ProductID})
			return
		}
		productID, _ := primitive.ObjectIDFromHex(item.ProductID)
		items = append(items, models.OrderItem{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Name:      product.Name,
			Image:     product.Image,
		})
		amount += float64(item.Quantity) * product.Price
	}

	order := &models.Order{
		UserID:        userID,
		Items:         items,
		AddressID:     req.AddressID,
		Amount:        amount,
		PaymentStatus: models.PaymentStatusPending,
		OrderStatus:   models.OrderStatusPending,
	}
	if err := h.orders.Create(ctx, order); err != nil {
		respondError(c, h.logger, err)
		return
	}

	span.SetAttributes(attribute.String("order.id", order.ID.Hex()))
	h.publish(ctx, order, models.EventOrderCreated)
	h.logger.Info("Order created",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", userID),
		zap.Float64("amount", order.Amount))

	c.JSON(http.StatusCreated, order)
}

// GetOrder returns a single order to its owner or an admin.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	ctx := c.Request.Context()

	order, err := h.orders.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if order.UserID != middleware.UserID(c) && middleware.Role(c) != middleware.RoleAdmin {
		respondError(c, h.logger, &models.AuthorizationError{Message: "Not allowed to view this order"})
		return
	}

	orders := []models.Order{*order}
	h.attachProductDetails(ctx, orders)
	c.JSON(http.StatusOK, orders[0])
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	ctx := c.Request.Context()

	orders, err := h.orders.ListByUser(ctx, middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.attachProductDetails(ctx, orders)
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	ctx := c.Request.Context()

	orders, err := h.orders.ListAll(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.attachProductDetails(ctx, orders)
	c.JSON(http.StatusOK, orders)
}

// attachProductDetails fills in the display-only name and image of each order
// item from the current catalog. Lookup failures degrade the response rather
// than failing it.
func (h *OrderHandler) attachProductDetails(ctx context.Context, orders []models.Order) {
	seen := map[string]struct{}{}
	ids := make([]string, 0)
	for i := range orders {
		for j := range orders[i].Items {
			id := orders[i].Items[j].ProductID.Hex()
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return
	}

	products, err := h.products.GetMany(ctx, ids)
	if err != nil {
		h.logger.Warn("Failed to resolve product details for orders", zap.Error(err))
		return
	}
	for i := range orders {
		for j := range orders[i].Items {
			if product, ok := products[orders[i].Items[j].ProductID.Hex()]; ok {
				orders[i].Items[j].Name = product.Name
				orders[i].Items[j].Image = product.Image
			}
		}
	}
}

func (h *OrderHandler) publish(ctx context.Context, order *models.Order, eventType string) {
	if h.events == nil {
		return
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
		h.logger.Error("Failed to publish order event",
			zap.String("order_id", event.OrderID),
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}
