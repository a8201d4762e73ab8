package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/shelfswap/shelfswap/pkg/errors"
)

// ttlJitterFraction spreads expirations so hot keys don't stampede together.
const ttlJitterFraction = 0.1

// Cache is a JSON value cache with a key prefix. It satisfies the cache
// ports of the valuation and analytics services.
type Cache struct {
	rdb    *redis.Client
	prefix string
	group  singleflight.Group
}

// NewCache constructs a Cache over an established client. The prefix
// namespaces every key (e.g. "shelfswap:").
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{rdb: client.Raw(), prefix: prefix}
}

// Get reads and decodes a cached value into dest. Returns false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "cache get")
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, errors.Wrap(err, errors.ErrCodeSerialization, "decode cached value")
	}
	return true, nil
}

// Set encodes and stores a value with the given TTL, jittered to avoid
// synchronized expiry.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode cache value")
	}
	if err := c.rdb.Set(ctx, c.prefix+key, raw, jitterTTL(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache set")
	}
	return nil
}

// Delete removes the given keys. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.prefix + k
	}
	if err := c.rdb.Del(ctx, prefixed...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache delete")
	}
	return nil
}

// GetOrSet reads a cached value, or computes and stores it on a miss.
// Concurrent misses for the same key are collapsed into a single load.
func (c *Cache) GetOrSet(ctx context.Context, key string, ttl time.Duration, dest any, load func(ctx context.Context) (any, error)) error {
	if hit, err := c.Get(ctx, key, dest); err == nil && hit {
		return nil
	}

	raw, err, _ := c.group.Do(key, func() (any, error) {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encode cache value")
		}
		if err := c.rdb.Set(ctx, c.prefix+key, encoded, jitterTTL(ttl)).Err(); err != nil {
			// A failed write-back still serves the loaded value.
			return encoded, nil
		}
		return encoded, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw.([]byte), dest)
}

// jitterTTL extends ttl by up to ttlJitterFraction of itself.
func jitterTTL(ttl time.Duration) time.Duration {
	span := int64(float64(ttl) * ttlJitterFraction)
	if span <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(span))
}
