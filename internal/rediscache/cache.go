// Package rediscache provides a small JSON cache on top of redis.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a redis client with JSON marshaling and TTL handling.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a Cache writing entries with the given TTL.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
	}
}

// AccountKey returns the cache key for an account snapshot.
func AccountKey(accountID string) string {
	return "account:" + accountID
}

// Get unmarshals the value stored under key into dest. The boolean reports
// whether the key existed.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, err
	}

	return true, json.Unmarshal([]byte(val), dest)
}

// Set stores the JSON encoding of value under key.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, b, c.ttl).Err()
}

// Del removes the key.
func (c *Cache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
