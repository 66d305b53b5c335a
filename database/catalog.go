package database

import (
	"context"
	"fmt"

	"github.com/omeshapasan2/e-commerce-platform/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CatalogStore serves the read-only category and color lists.
type CatalogStore struct {
	categories *mongo.Collection
	colors     *mongo.Collection
	logger     *zap.Logger
}

func NewCatalogStore(db *mongo.Database, logger *zap.Logger) *CatalogStore {
	return &CatalogStore{
		categories: db.Collection("categories"),
		colors:     db.Collection("colors"),
		logger:     logger,
	}
}

func (s *CatalogStore) Categories(ctx context.Context) ([]models.Category, error) {
	cur, err := s.categories.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cur.Close(ctx)

	categories := []models.Category{}
	if err := cur.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogStore) Colors(ctx context.Context) ([]models.Color, error) {
	cur, err := s.colors.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list colors: %w", err)
	}
	defer cur.Close(ctx)

	colors := []models.Color{}
	if err := cur.All(ctx, &colors); err != nil {
		return nil, fmt.Errorf("failed to decode colors: %w", err)
	}
	return colors, nil
}
