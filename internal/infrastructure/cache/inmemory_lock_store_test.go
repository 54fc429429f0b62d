package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLockStore_Acquire(t *testing.T) {
	store := NewInMemoryLockStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("grants a free key", func(t *testing.T) {
		token, ok, err := store.Acquire(ctx, "match:item:1", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NotEmpty(t, token)
	})

	t.Run("refuses a held key", func(t *testing.T) {
		_, ok, err := store.Acquire(ctx, "match:item:2", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		token, ok, err := store.Acquire(ctx, "match:item:2", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, token)
	})

	t.Run("regrants after expiry", func(t *testing.T) {
		_, ok, err := store.Acquire(ctx, "match:item:3", 10*time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok)

		time.Sleep(20 * time.Millisecond)

		_, ok, err = store.Acquire(ctx, "match:item:3", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok, "expired lease should be reclaimable")
	})
}

func TestInMemoryLockStore_Release(t *testing.T) {
	store := NewInMemoryLockStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("owner releases", func(t *testing.T) {
		token, _, _ := store.Acquire(ctx, "k1", time.Hour)
		require.NoError(t, store.Release(ctx, "k1", token))

		_, ok, err := store.Acquire(ctx, "k1", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("stale token is a no-op", func(t *testing.T) {
		stale, _, _ := store.Acquire(ctx, "k2", 10*time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		_, ok, _ := store.Acquire(ctx, "k2", time.Hour)
		require.True(t, ok)

		require.NoError(t, store.Release(ctx, "k2", stale))

		_, ok, err := store.Acquire(ctx, "k2", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok, "new holder must keep the lease")
	})

	t.Run("unknown key", func(t *testing.T) {
		assert.NoError(t, store.Release(ctx, "never-held", "token"))
	})
}

func TestInMemoryLockStore_SingleWinner(t *testing.T) {
	store := NewInMemoryLockStore()
	defer store.Close()

	var winners atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, _ := store.Acquire(context.Background(), "contended", time.Hour); ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestInMemoryLockStore_Cleanup(t *testing.T) {
	store := newInMemoryLockStore(10 * time.Millisecond)
	defer store.Close()

	ctx := context.Background()
	_, _, _ = store.Acquire(ctx, "short", 5*time.Millisecond)
	_, _, _ = store.Acquire(ctx, "long", time.Hour)
	assert.Equal(t, 2, store.Size())

	assert.Eventually(t, func() bool { return store.Size() == 1 }, time.Second, 10*time.Millisecond)
}

func TestInMemoryLockStore_CloseTwice(t *testing.T) {
	store := NewInMemoryLockStore()
	require.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
