package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/fulfillment/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClockedStore(t *testing.T) (*InMemoryIdempotencyStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := newInMemoryIdempotencyStore(time.Hour, clock.Now)
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("first claim wins", func(t *testing.T) {
		store, _ := newClockedStore(t)

		isNew, err := store.MarkProcessed(ctx, "key-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "key-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("expired claim can be taken again", func(t *testing.T) {
		store, clock := newClockedStore(t)

		_, err := store.MarkProcessed(ctx, "key-1", time.Minute)
		require.NoError(t, err)
		clock.Advance(2 * time.Minute)

		isNew, err := store.MarkProcessed(ctx, "key-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("keys are independent", func(t *testing.T) {
		store, _ := newClockedStore(t)

		a, _ := store.MarkProcessed(ctx, "a", time.Hour)
		b, _ := store.MarkProcessed(ctx, "b", time.Hour)
		assert.True(t, a)
		assert.True(t, b)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore(t)

	ok, err := store.IsProcessed(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _ = store.MarkProcessed(ctx, "key-1", time.Minute)
	ok, _ = store.IsProcessed(ctx, "key-1")
	assert.True(t, ok)

	clock.Advance(time.Minute)
	ok, _ = store.IsProcessed(ctx, "key-1")
	assert.False(t, ok)
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	ctx := context.Background()
	store, _ := newClockedStore(t)

	_, _ = store.MarkProcessed(ctx, "key-1", time.Hour)
	require.NoError(t, store.Release(ctx, "key-1"))

	ok, _ := store.IsProcessed(ctx, "key-1")
	assert.False(t, ok)
	isNew, _ := store.MarkProcessed(ctx, "key-1", time.Hour)
	assert.True(t, isNew)

	// releasing an unknown key is a no-op
	assert.NoError(t, store.Release(ctx, "missing"))
}

func TestInMemoryIdempotencyStore_RemoveExpired(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore(t)

	_, _ = store.MarkProcessed(ctx, "short", time.Minute)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	assert.Equal(t, 2, store.Size())

	clock.Advance(5 * time.Minute)
	store.removeExpired()
	assert.Equal(t, 1, store.Size())

	ok, _ := store.IsProcessed(ctx, "long")
	assert.True(t, ok)
}

func TestInMemoryIdempotencyStore_ConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.MarkProcessed(ctx, "contended", time.Hour); ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), winners.Load())

	for i := 0; i < 10; i++ {
		_, _ = store.MarkProcessed(ctx, fmt.Sprintf("key-%d", i), time.Hour)
	}
	assert.Equal(t, 11, store.Size())
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestIdempotencyStoreFactory_CreateStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory store by default", func(t *testing.T) {
		f := NewIdempotencyStoreFactory(config.EventConfig{}, config.RedisConfig{})
		store, err := f.CreateStore(ctx)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("unreachable redis falls back when allowed", func(t *testing.T) {
		f := NewIdempotencyStoreFactory(
			config.EventConfig{IdempotencyStore: config.IdempotencyStoreRedis},
			config.RedisConfig{Host: "127.0.0.1", Port: 1},
			WithInMemoryFallback(true),
		)
		store, err := f.CreateStore(ctx)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("unreachable redis fails without fallback", func(t *testing.T) {
		f := NewIdempotencyStoreFactory(
			config.EventConfig{IdempotencyStore: config.IdempotencyStoreRedis},
			config.RedisConfig{Host: "127.0.0.1", Port: 1},
		)
		_, err := f.CreateStore(ctx)
		assert.Error(t, err)
	})

	t.Run("unknown store", func(t *testing.T) {
		f := NewIdempotencyStoreFactory(config.EventConfig{IdempotencyStore: "memcached"}, config.RedisConfig{})
		_, err := f.CreateStore(ctx)
		assert.Error(t, err)
	})
}
