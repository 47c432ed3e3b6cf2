package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSetNX keeps keys in memory and ignores expiry.
type fakeSetNX struct {
	keys map[string]time.Duration
	err  error
}

func (f *fakeSetNX) SetNX(_ context.Context, key string, _ any, expiration time.Duration) *redis.BoolCmd {
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func TestCooldown_Acquire(t *testing.T) {
	fake := &fakeSetNX{keys: map[string]time.Duration{}}
	c := NewCooldown(fake, "signin:", time.Minute)
	ctx := context.Background()

	ok, err := c.Acquire(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Acquire(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, ok, "second acquisition inside the window must be refused")

	ok, err = c.Acquire(ctx, "b@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, time.Minute, fake.keys["signin:a@example.com"])
}

func TestCooldown_DisabledWindow(t *testing.T) {
	fake := &fakeSetNX{keys: map[string]time.Duration{}}
	c := NewCooldown(fake, "signin:", 0)

	for i := 0; i < 3; i++ {
		ok, err := c.Acquire(context.Background(), "a@example.com")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Empty(t, fake.keys)
}

func TestCooldown_NilIsOpen(t *testing.T) {
	var c *Cooldown
	ok, err := c.Acquire(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCooldown_Error(t *testing.T) {
	c := NewCooldown(&fakeSetNX{err: errors.New("down")}, "signin:", time.Minute)
	_, err := c.Acquire(context.Background(), "a@example.com")
	assert.Error(t, err)
}
