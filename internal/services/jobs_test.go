package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SigNoz/storefront-go-app/internal/cache"
)

func TestNewScheduler_Jobs(t *testing.T) {
	env := newTestEnv(t)

	local, err := NewScheduler(env.carts, env.cache)
	require.NoError(t, err)
	assert.Len(t, local.cron.Entries(), 2)

	remote, err := NewScheduler(env.carts, &cache.Redis{})
	require.NoError(t, err)
	assert.Len(t, remote.cron.Entries(), 1, "redis expires keys itself")
}

func TestScheduler_RunsJobs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addProduct(t, "p1", "10.00", 5)
	_, err := env.carts.AddItem(ctx, "u1", "p1", 1)
	require.NoError(t, err)
	_, err = env.carts.GetOrCreateCart(ctx, "u2")
	require.NoError(t, err)

	n, err := env.carts.RecordActiveCarts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, env.cache.Set(ctx, "stale", []byte("x"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	s, err := NewScheduler(env.carts, env.cache)
	require.NoError(t, err)
	s.recordActiveCarts()
	s.sweepCache()
	assert.Equal(t, 0, env.cache.Sweep())
}
