package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"heladeria-backend/internal/models"

	"github.com/go-redis/redis/v8"
)

const catalogKey = "catalog:products"

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SetCatalogProduct caches one product in the catalog hash
func (c *Client) SetCatalogProduct(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.rdb.HSet(ctx, catalogKey, fmt.Sprintf("%d", product.ID), data).Err()
}

// RemoveCatalogProduct evicts one product from the catalog hash
func (c *Client) RemoveCatalogProduct(ctx context.Context, productID int64) error {
	return c.rdb.HDel(ctx, catalogKey, fmt.Sprintf("%d", productID)).Err()
}

// GetCatalog retrieves all cached catalog products. Returns an empty slice
// when the cache is cold.
func (c *Client) GetCatalog(ctx context.Context) ([]models.Product, error) {
	entries, err := c.rdb.HGetAll(ctx, catalogKey).Result()
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(entries))
	for _, raw := range entries {
		var p models.Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("corrupt catalog entry: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}

// AdjustCachedStock applies a relative stock change to a cached product.
// A cache miss is not an error; the next sync repopulates it.
func (c *Client) AdjustCachedStock(ctx context.Context, productID int64, delta int) error {
	field := fmt.Sprintf("%d", productID)
	raw, err := c.rdb.HGet(ctx, catalogKey, field).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	var p models.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return fmt.Errorf("corrupt catalog entry: %w", err)
	}
	p.Stock += delta

	data, err := json.Marshal(&p)
	if err != nil {
		return err
	}
	return c.rdb.HSet(ctx, catalogKey, field, data).Err()
}

// ClaimIdempotencyKey claims a checkout idempotency key with a TTL. Returns
// false when the key was already claimed.
func (c *Client) ClaimIdempotencyKey(ctx context.Context, key string, orderID int64, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("idempotency:%s", key), orderID, ttl).Result()
}

// GetIdempotentOrderID returns the order id a key was claimed with, or 0
func (c *Client) GetIdempotentOrderID(ctx context.Context, key string) (int64, error) {
	id, err := c.rdb.Get(ctx, fmt.Sprintf("idempotency:%s", key)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return id, err
}
