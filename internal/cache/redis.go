// Package cache stores decoded enumeration responses in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisCache is a JSON value cache on top of a Redis client
type RedisCache struct {
	client *redis.Client
	prefix string
}

// New connects to Redis and verifies the connection
func New(ctx context.Context, cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	return NewWithClient(client, cfg.Prefix), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "nbacap:"
	}
	return &RedisCache{client: client, prefix: prefix}
}

// GetJSON decodes the value stored at key into out. The boolean is false on a miss.
func (c *RedisCache) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode cached value for %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores value at key for ttl. A non-positive ttl stores nothing.
func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", key, err)
	}

	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
