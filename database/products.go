package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omeshapasan2/e-commerce-platform/cache"
	"github.com/omeshapasan2/e-commerce-platform/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ProductStore persists the catalog. Single-product reads go through the
// Redis cache when one is configured; a nil cache disables caching.
type ProductStore struct {
	col    *mongo.Collection
	cache  *cache.ProductCache
	logger *zap.Logger
}

func NewProductStore(db *mongo.Database, pc *cache.ProductCache, logger *zap.Logger) *ProductStore {
	return &ProductStore{col: db.Collection("products"), cache: pc, logger: logger}
}

func (s *ProductStore) List(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	filter := bson.M{}
	if f.CategoryID != "" {
		if oid, err := primitive.ObjectIDFromHex(f.CategoryID); err == nil {
			filter["category_id"] = oid
		}
	}
	if f.ColorID != "" {
		if oid, err := primitive.ObjectIDFromHex(f.ColorID); err == nil {
			filter["color_id"] = oid
		}
	}

	opts := options.Find()
	switch f.Sort {
	case "price_asc":
		opts.SetSort(bson.D{{Key: "price", Value: 1}})
	case "price_desc":
		opts.SetSort(bson.D{{Key: "price", Value: -1}})
	}

	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (s *ProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &models.NotFoundError{Message: "product not found"}
	}

	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, id); ok {
			return p, nil
		}
	}

	var p models.Product
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &models.NotFoundError{Message: "product not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, &p)
	}
	return &p, nil
}

// GetMany returns the products for the given hex ids, keyed by hex id.
// Unknown ids are simply absent from the result; callers decide whether that
// is an error (order creation) or tolerable (display of historical orders).
func (s *ProductStore) GetMany(ctx context.Context, ids []string) (map[string]models.Product, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return map[string]models.Product{}, nil
	}

	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	defer cur.Close(ctx)

	out := make(map[string]models.Product, len(oids))
	for cur.Next(ctx) {
		var p models.Product
		if err := cur.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		out[p.ID.Hex()] = p
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return out, nil
}

func (s *ProductStore) Create(ctx context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	if p.Reviews == nil {
		p.Reviews = []primitive.ObjectID{}
	}
	if _, err := s.col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (s *ProductStore) Update(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &models.NotFoundError{Message: "product not found"}
	}

	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.Image != nil {
		set["image"] = *req.Image
	}
	if req.Stock != nil {
		set["stock"] = *req.Stock
	}
	if req.CategoryID != nil {
		if coid, err := primitive.ObjectIDFromHex(*req.CategoryID); err == nil {
			set["category_id"] = coid
		}
	}
	if req.ColorID != nil {
		if coid, err := primitive.ObjectIDFromHex(*req.ColorID); err == nil {
			set["color_id"] = coid
		}
	}
	if len(set) == 0 {
		return s.GetByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Product
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &models.NotFoundError{Message: "product not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if s.cache != nil {
		s.cache.Delete(ctx, id)
	}
	return &p, nil
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.NotFoundError{Message: "product not found"}
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return &models.NotFoundError{Message: "product not found"}
	}
	if s.cache != nil {
		s.cache.Delete(ctx, id)
	}
	return nil
}

func (s *ProductStore) LinkReview(ctx context.Context, productID, reviewID primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$push": bson.M{"reviews": reviewID}},
	)
	if err != nil {
		return fmt.Errorf("failed to link review: %w", err)
	}
	if s.cache != nil {
		s.cache.Delete(ctx, productID.Hex())
	}
	return nil
}

// UnlinkReview removes the review id from every product referencing it.
// Idempotent: a retried unlink matches nothing and succeeds. Cached product
// documents may carry the stale reference until the TTL expires; review
// listings read the reviews collection directly, so nothing user-facing
// depends on it.
func (s *ProductStore) UnlinkReview(ctx context.Context, reviewID primitive.ObjectID) error {
	_, err := s.col.UpdateMany(ctx,
		bson.M{"reviews": reviewID},
		bson.M{"$pull": bson.M{"reviews": reviewID}},
	)
	if err != nil {
		return fmt.Errorf("failed to unlink review: %w", err)
	}
	return nil
}
