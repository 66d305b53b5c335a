package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omeshapasan2/e-commerce-platform/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// OrderStore persists orders. The collection is the sole synchronization
// point for the checkout and webhook flows: session claiming and payment
// transitions are conditional updates, so concurrent requests and duplicated
// or reordered webhook deliveries converge on the same document state.
type OrderStore struct {
	col    *mongo.Collection
	logger *zap.Logger
}

func NewOrderStore(db *mongo.Database, logger *zap.Logger) *OrderStore {
	return &OrderStore{col: db.Collection("orders"), logger: logger}
}

func (s *OrderStore) Create(ctx context.Context, o *models.Order) error {
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now().UTC()
	if _, err := s.col.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &models.NotFoundError{Message: "order not found"}
	}
	var o models.Order
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &models.NotFoundError{Message: "order not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return &o, nil
}

func (s *OrderStore) GetByCheckoutSession(ctx context.Context, sessionID string) (*models.Order, error) {
	var o models.Order
	err := s.col.FindOne(ctx, bson.M{"checkout_session_id": sessionID}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &models.NotFoundError{Message: "order not found for session"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order by session: %w", err)
	}
	return &o, nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

func (s *OrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, bson.M{})
}

func (s *OrderStore) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Order, error) {
	return s.list(ctx, bson.M{"created_at": bson.M{"$gte": since}})
}

func (s *OrderStore) list(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cur.Close(ctx)

	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// ClaimCheckoutSession sets the order's checkout session id if and only if
// none is recorded yet. The conditional filter makes the claim atomic across
// processes; a naive read-then-write would race.
func (s *OrderStore) ClaimCheckoutSession(ctx context.Context, orderID, sessionID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return false, &models.NotFoundError{Message: "order not found"}
	}
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": oid, "checkout_session_id": ""},
		bson.M{"$set": bson.M{"checkout_session_id": sessionID}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim checkout session: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// MarkPaymentCompleted transitions payment_status to COMPLETED and advances
// order_status PENDING -> PROCESSING. Both steps are conditional, so
// redelivered events are no-ops and a crash between the two steps is healed
// by the next delivery.
func (s *OrderStore) MarkPaymentCompleted(ctx context.Context, sessionID string) (found, changed bool, err error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"checkout_session_id": sessionID, "payment_status": bson.M{"$ne": models.PaymentStatusCompleted}},
		bson.M{"$set": bson.M{"payment_status": models.PaymentStatusCompleted}},
	)
	if err != nil {
		return false, false, fmt.Errorf("failed to mark payment completed: %w", err)
	}

	res2, err := s.col.UpdateOne(ctx,
		bson.M{
			"checkout_session_id": sessionID,
			"payment_status":      models.PaymentStatusCompleted,
			"order_status":        models.OrderStatusPending,
		},
		bson.M{"$set": bson.M{"order_status": models.OrderStatusProcessing}},
	)
	if err != nil {
		return false, false, fmt.Errorf("failed to advance order status: %w", err)
	}

	changed = res.ModifiedCount+res2.ModifiedCount > 0
	found = res.MatchedCount > 0 || res2.MatchedCount > 0
	if !found {
		found, err = s.sessionExists(ctx, sessionID)
	}
	return found, changed, err
}

// MarkPaymentFailed transitions payment_status PENDING -> FAILED. A failure
// arriving after success is stale and leaves the order untouched.
func (s *OrderStore) MarkPaymentFailed(ctx context.Context, sessionID string) (found, changed bool, err error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"checkout_session_id": sessionID, "payment_status": models.PaymentStatusPending},
		bson.M{"$set": bson.M{"payment_status": models.PaymentStatusFailed}},
	)
	if err != nil {
		return false, false, fmt.Errorf("failed to mark payment failed: %w", err)
	}

	changed = res.ModifiedCount > 0
	found = res.MatchedCount > 0
	if !found {
		found, err = s.sessionExists(ctx, sessionID)
	}
	return found, changed, err
}

func (s *OrderStore) sessionExists(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"checkout_session_id": sessionID})
	if err != nil {
		return false, fmt.Errorf("failed to look up session: %w", err)
	}
	return n > 0, nil
}
