package ratelimit

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only when BOOKSUM_TEST_REDIS_URL points at a disposable server.
func newTestRedisLedger(t *testing.T, clock func() time.Time) *RedisLedger {
	t.Helper()

	url := os.Getenv("BOOKSUM_TEST_REDIS_URL")
	if url == "" {
		t.Skip("BOOKSUM_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLedger(client, "test:"+uuid.NewString()+":", window, clock)
}

func TestRedisLedger_ReserveCountReset(t *testing.T) {
	ctx := context.Background()
	ledger := newTestRedisLedger(t, nil)

	for range 3 {
		_, allowed, err := ledger.Reserve(ctx, "alice@example.com", 5)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	first, err := ledger.Count(ctx, "alice@example.com")
	require.NoError(t, err)
	second, err := ledger.Count(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 3, first)
	assert.Equal(t, first, second)

	require.NoError(t, ledger.Reset(ctx, "alice@example.com"))
	count, err := ledger.Count(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRedisLedger_WindowExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	ledger := newTestRedisLedger(t, clock.Now)

	_, allowed, err := ledger.Reserve(ctx, "k", 5)
	require.NoError(t, err)
	require.True(t, allowed)

	clock.Advance(window)
	count, err := ledger.Count(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "an attempt exactly one window old is kept")

	clock.Advance(time.Microsecond)
	count, err = ledger.Count(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRedisLedger_ReserveStopsAtLimitAndRelease(t *testing.T) {
	ctx := context.Background()
	ledger := newTestRedisLedger(t, nil)

	var tokens []string
	for range 5 {
		token, allowed, err := ledger.Reserve(ctx, "k", 5)
		require.NoError(t, err)
		require.True(t, allowed)
		tokens = append(tokens, token)
	}

	_, allowed, err := ledger.Reserve(ctx, "k", 5)
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, ledger.Release(ctx, "k", tokens[0]))
	count, err := ledger.Count(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestRedisLedger_ConcurrentReservesRespectLimit(t *testing.T) {
	ctx := context.Background()
	ledger := newTestRedisLedger(t, nil)

	const workers = 30
	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
	)
	start := make(chan struct{})
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			<-start
			_, ok, err := ledger.Reserve(ctx, "shared", 5)
			assert.NoError(t, err)
			if ok {
				allowed.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(5), allowed.Load())
}
