package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/denzelpenzel/skillswap/internal/config"
	"github.com/redis/go-redis/v9"
)

const categoriesKey = "skillswap:categories"

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// RedisCategoryCache stores the category list as a JSON array under one key
type RedisCategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCategoryCache creates a category cache with the given entry TTL
func NewRedisCategoryCache(client *redis.Client, ttl time.Duration) *RedisCategoryCache {
	return &RedisCategoryCache{
		client: client,
		ttl:    ttl,
	}
}

// GetCategories returns the cached list and whether it was present
func (c *RedisCategoryCache) GetCategories(ctx context.Context) ([]string, bool, error) {
	b, err := c.client.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read categories: %w", err)
	}

	var categories []string
	if err := json.Unmarshal(b, &categories); err != nil {
		return nil, false, fmt.Errorf("failed to decode categories: %w", err)
	}

	return categories, true, nil
}

// SetCategories caches the list
func (c *RedisCategoryCache) SetCategories(ctx context.Context, categories []string) error {
	if categories == nil {
		categories = []string{}
	}

	b, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	if err := c.client.Set(ctx, categoriesKey, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write categories: %w", err)
	}

	return nil
}

// InvalidateCategories drops the cached list
func (c *RedisCategoryCache) InvalidateCategories(ctx context.Context) error {
	if err := c.client.Del(ctx, categoriesKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate categories: %w", err)
	}
	return nil
}
