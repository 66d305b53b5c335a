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

type ReviewStore struct {
	col    *mongo.Collection
	logger *zap.Logger
}

func NewReviewStore(db *mongo.Database, logger *zap.Logger) *ReviewStore {
	return &ReviewStore{col: db.Collection("reviews"), logger: logger}
}

func (s *ReviewStore) GetByID(ctx context.Context, id string) (*models.Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &models.NotFoundError{Message: "review not found"}
	}
	var r models.Review
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &models.NotFoundError{Message: "review not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review: %w", err)
	}
	return &r, nil
}

// FindByUserAndProduct returns nil, nil when the user has not reviewed the
// product yet.
func (s *ReviewStore) FindByUserAndProduct(ctx context.Context, userID string, productID primitive.ObjectID) (*models.Review, error) {
	var r models.Review
	err := s.col.FindOne(ctx, bson.M{"user_id": userID, "product_id": productID}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up review: %w", err)
	}
	return &r, nil
}

func (s *ReviewStore) Insert(ctx context.Context, r *models.Review) error {
	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := s.col.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

func (s *ReviewStore) Update(ctx context.Context, r *models.Review) error {
	r.UpdatedAt = time.Now().UTC()
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": r.ID},
		bson.M{"$set": bson.M{
			"rating":     r.Rating,
			"review":     r.Review,
			"user_name":  r.UserName,
			"user_image": r.UserImage,
			"updated_at": r.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

func (s *ReviewStore) ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"product_id": productID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cur.Close(ctx)

	reviews := []models.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}
