package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/omeshapasan2/e-commerce-platform/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const productTTL = 5 * time.Minute

func InitRedis(logger *zap.Logger) (*redis.Client, error) {
	host := getEnv("REDIS_HOST", "localhost")
	port := getEnv("REDIS_PORT", "6379")
	password := getEnv("REDIS_PASSWORD", "")

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established")
	return rdb, nil
}

// ProductCache is a read-through cache for product documents. Misses and
// Redis errors are treated the same: the caller falls back to the store.
type ProductCache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewProductCache(rdb *redis.Client, logger *zap.Logger) *ProductCache {
	return &ProductCache{rdb: rdb, logger: logger}
}

func (c *ProductCache) Get(ctx context.Context, id string) (*models.Product, bool) {
	data, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var p models.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *ProductCache) Set(ctx context.Context, p *models.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, productKey(p.ID.Hex()), data, productTTL).Err(); err != nil {
		c.logger.Warn("Failed to cache product", zap.String("product_id", p.ID.Hex()), zap.Error(err))
	}
}

func (c *ProductCache) Delete(ctx context.Context, id string) {
	if err := c.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate product cache", zap.String("product_id", id), zap.Error(err))
	}
}

func productKey(id string) string {
	return "product:" + id
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
