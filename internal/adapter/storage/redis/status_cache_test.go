package redis

import (
	"context"
	"testing"
	"time"

	"klikjasa-wallet/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStatusCache(t *testing.T) (*StatusCache, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStatusCache(client), s
}

func TestStatusCache_SetAndGet(t *testing.T) {
	cache, s := newTestStatusCache(t)
	ctx := context.Background()
	orderID := "TOPUP-user-001-1718000000000"

	status, ok, err := cache.Get(ctx, orderID)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, status)

	require.NoError(t, cache.Set(ctx, orderID, domain.TransactionStatusCompleted, time.Hour))

	status, ok, err = cache.Get(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.TransactionStatusCompleted, status)

	got, err := s.Get("topup:status:" + orderID)
	require.NoError(t, err)
	assert.Equal(t, "completed", got)
}

func TestStatusCache_TTLExpiry(t *testing.T) {
	cache, s := newTestStatusCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "TOPUP-a-1", domain.TransactionStatusFailed, time.Second))

	s.FastForward(2 * time.Second)

	_, ok, err := cache.Get(ctx, "TOPUP-a-1")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestStatusCache_RejectsPending(t *testing.T) {
	cache, s := newTestStatusCache(t)

	err := cache.Set(context.Background(), "TOPUP-a-2", domain.TransactionStatusPending, time.Hour)
	assert.ErrorContains(t, err, "non-terminal")
	assert.False(t, s.Exists("topup:status:TOPUP-a-2"))
}

func TestStatusCache_RedisDown(t *testing.T) {
	cache, s := newTestStatusCache(t)
	s.Close()

	_, _, err := cache.Get(context.Background(), "TOPUP-a-3")
	assert.ErrorContains(t, err, "redis status get")
}
