package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// setNXer is the subset of redis.Cmdable used by Cooldown.
type setNXer interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// Cooldown grants at most one action per key within a window.
// A zero window disables it: every call to Acquire succeeds.
type Cooldown struct {
	client setNXer
	prefix string
	window time.Duration
}

// NewCooldown returns a Redis-backed cooldown. Keys are namespaced with prefix.
func NewCooldown(client setNXer, prefix string, window time.Duration) *Cooldown {
	return &Cooldown{client: client, prefix: prefix, window: window}
}

// Acquire reports whether the caller may act for key now. It returns false
// while a previous acquisition for the same key is still within the window.
func (c *Cooldown) Acquire(ctx context.Context, key string) (bool, error) {
	if c == nil || c.client == nil || c.window <= 0 {
		return true, nil
	}
	return c.client.SetNX(ctx, c.prefix+key, 1, c.window).Result()
}
