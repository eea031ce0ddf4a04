package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides typed JSON caching. Values live in Redis when the client is
// enabled and in process memory otherwise.
// ⭐ SSOT: cache helpers live only here
type Cache struct {
	client *Client
	prefix string
	memory *memoryStore
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	c := &Cache{
		client: client,
		prefix: prefix,
	}
	if !client.Enabled() {
		c.memory = newMemoryStore()
	}
	return c
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value. A miss returns (false, nil).
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	var data []byte

	if c.memory != nil {
		var ok bool
		data, ok = c.memory.get(c.fullKey(key))
		if !ok {
			return false, nil
		}
	} else {
		var err error
		data, err = c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("cache get failed: %w", err)
		}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL (0 = no expiry)
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	if c.memory != nil {
		c.memory.set(c.fullKey(key), data, ttl)
		return nil
	}

	return c.client.Redis().Set(ctx, c.fullKey(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c.memory != nil {
		c.memory.del(c.fullKey(key))
		return nil
	}

	return c.client.Redis().Del(ctx, c.fullKey(key)).Err()
}

// GetOrSet retrieves from cache or calls fn to populate it
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	found, err := c.Get(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	value, err := fn()
	if err != nil {
		return err
	}

	// A failed store still hands the fresh value back
	_ = c.Set(ctx, key, value, ttl)

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return json.Unmarshal(data, dest)
}

// Sweep drops expired in-memory entries and returns the number left.
// Redis expires keys on its own, so Sweep is a no-op there.
func (c *Cache) Sweep() int {
	if c.memory == nil {
		return 0
	}
	return c.memory.sweep()
}

// Predefined TTLs
const (
	TTLSnapshot      = 10 * time.Minute // rankings snapshot, outlives two poll ticks
	TTLCustomDomains = 30 * time.Minute // per-session custom domain list
)

// Common cache key generators
func SnapshotKey() string {
	return "rankings:snapshot"
}

func CustomDomainsKey(sessionID string) string {
	return fmt.Sprintf("custom_domains:%s", sessionID)
}
