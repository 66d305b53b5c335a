package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderItem is a line item inside an order document. UnitPrice is frozen at
// order creation so historical totals do not drift when products are repriced.
// Name and Image are resolved from the catalog at read time and never persisted.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	UnitPrice float64            `bson:"unit_price" json:"unitPrice"`
	Name      string             `bson:"-" json:"name,omitempty"`
	Image     string             `bson:"-" json:"image,omitempty"`
}

type Order struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            string             `bson:"user_id" json:"userId"`
	Items             []OrderItem        `bson:"items" json:"items"`
	AddressID         string             `bson:"address_id,omitempty" json:"addressId,omitempty"`
	Amount            float64            `bson:"amount" json:"amount"`
	PaymentStatus     PaymentStatus      `bson:"payment_status" json:"paymentStatus"`
	OrderStatus       OrderStatus        `bson:"order_status" json:"orderStatus"`
	CheckoutSessionID string             `bson:"checkout_session_id" json:"checkoutSessionId,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
}

type CreateOrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	Items     []CreateOrderItem `json:"items"`
	AddressID string            `json:"addressId"`
}

const (
	EventOrderCreated     = "order_created"
	EventPaymentCompleted = "payment_completed"
	EventPaymentFailed    = "payment_failed"
)

// OrderEvent is published to Kafka on order lifecycle changes.
type OrderEvent struct {
	OrderID       string        `json:"order_id"`
	UserID        string        `json:"user_id"`
	Amount        float64       `json:"amount"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	OrderStatus   OrderStatus   `json:"order_status"`
	EventType     string        `json:"event_type"`
}

// DailySalesBucket is one calendar day of the sales report, in the reporting
// timezone. Days without orders are present with Total zero.
type DailySalesBucket struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}
