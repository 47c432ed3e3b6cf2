package settings

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKey    = "sprints:settings"
	loadedField = "__loaded"
	cacheTTL    = 5 * time.Minute
)

// hashStore is the slice of the redis client the cache needs.
type hashStore interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// cache keeps the whole settings table in one redis hash. A nil cache
// always misses.
type cache struct {
	store hashStore
}

func newCache(store hashStore) *cache {
	if store == nil {
		return nil
	}
	return &cache{store: store}
}

// get returns the cached values and whether the hash was populated.
func (c *cache) get(ctx context.Context) (map[string]string, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	m, err := c.store.HGetAll(ctx, cacheKey).Result()
	if err != nil {
		return nil, false, err
	}
	if m[loadedField] == "" {
		return nil, false, nil
	}
	delete(m, loadedField)
	return m, true, nil
}

func (c *cache) put(ctx context.Context, values map[string]string) error {
	if c == nil {
		return nil
	}
	args := make([]any, 0, 2*len(values)+2)
	args = append(args, loadedField, "1")
	for k, v := range values {
		args = append(args, k, v)
	}
	if err := c.store.HSet(ctx, cacheKey, args...).Err(); err != nil {
		return err
	}
	return c.store.Expire(ctx, cacheKey, cacheTTL).Err()
}

func (c *cache) invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.store.Del(ctx, cacheKey).Err()
}
