package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLocker(t *testing.T) {
	t.Run("serializes holders of the same key", func(t *testing.T) {
		l := NewKeyedLocker()
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			inside  int
			maxSeen int
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := l.Lock(context.Background(), "stock:a")
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				inside++
				maxSeen = max(maxSeen, inside)
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
				unlock()
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxSeen)
		assert.Equal(t, 0, l.Len())
	})

	t.Run("different keys do not block each other", func(t *testing.T) {
		l := NewKeyedLocker()
		unlockA, err := l.Lock(context.Background(), "a")
		require.NoError(t, err)
		defer unlockA()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		unlockB, err := l.Lock(ctx, "b")
		require.NoError(t, err)
		unlockB()
	})

	t.Run("gives up when the context ends", func(t *testing.T) {
		l := NewKeyedLocker()
		unlock, err := l.Lock(context.Background(), "a")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err = l.Lock(ctx, "a")
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		unlock()
		assert.Equal(t, 0, l.Len())
	})

	t.Run("lock all dedupes and releases everything", func(t *testing.T) {
		l := NewKeyedLocker()
		unlock, err := l.LockAll(context.Background(), "b", "a", "b")
		require.NoError(t, err)
		assert.Equal(t, 2, l.Len())
		unlock()
		assert.Equal(t, 0, l.Len())
	})
}
