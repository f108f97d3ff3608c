package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisx "github.com/kirinyoku/railgo/internal/redis"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache is a JSON read-through cache. Concurrent misses on one key share a
// single loader call.
type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{rdb: client}
}

// GetJSON decodes the value at key into T. A missing key reports ok=false.
func GetJSON[T any](ctx context.Context, c *Cache, key string) (v T, ok bool, err error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}

	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("cache %s: %w", key, err)
	}

	return v, true, nil
}

func SetJSON(ctx context.Context, c *Cache, key string, val any, ttl time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("cache %s: %w", key, err)
	}

	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// GetOrSetJSON returns the cached value for key or loads and caches it.
// A failing redis degrades to calling loader directly.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	if v, ok, err := GetJSON[T](ctx, c, key); err == nil && ok {
		return v, nil
	}

	shared, err, _ := c.sf.Do(key, func() (any, error) {
		v, err := loader(ctx)
		if err != nil {
			return v, err
		}

		// a write failure only costs a future miss
		_ = SetJSON(ctx, c, key, v, ttl)

		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return shared.(T), nil
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return c.rdb.Del(ctx, keys...).Err()
}

// InvalidateStations drops the cached station catalogue.
func (c *Cache) InvalidateStations(ctx context.Context) error {
	return c.Del(ctx, redisx.KeyStations())
}
