package server

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/membuf"
)

func newSessionPool(t *testing.T) *membuf.Pool {
	t.Helper()

	pool, err := membuf.New(membuf.WithDefaultSize(8))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

func TestSessionStore_RemoveClosesHandle(t *testing.T) {
	pool := newSessionPool(t)
	store := newSessionStore(time.Minute, time.Minute)
	defer store.closeAll()

	h, err := pool.Open(0)
	require.NoError(t, err)

	id := store.add(h)
	got, err := store.get(id)
	require.NoError(t, err)
	assert.Same(t, h, got)

	require.NoError(t, store.remove(id))
	assert.Equal(t, 0, pool.Stats().OpenHandles)

	_, err = store.get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, store.remove(id), ErrSessionNotFound)
}

func TestSessionStore_GetDoesNotRevive(t *testing.T) {
	pool := newSessionPool(t)
	store := newSessionStore(time.Minute, time.Minute)
	defer store.closeAll()

	for range 200 {
		h, err := pool.Open(0)
		require.NoError(t, err)
		id := store.add(h)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.get(id)
		}()
		go func() {
			defer wg.Done()
			_ = store.remove(id)
		}()
		wg.Wait()

		_, err = store.get(id)
		require.ErrorIs(t, err, ErrSessionNotFound)
		require.Equal(t, 0, store.count())
	}
	assert.Equal(t, 0, pool.Stats().OpenHandles)
}

func TestSessionStore_JanitorEvicts(t *testing.T) {
	pool := newSessionPool(t)
	store := newSessionStore(20*time.Millisecond, 10*time.Millisecond)
	defer store.closeAll()

	h, err := pool.Open(0)
	require.NoError(t, err)
	store.add(h)

	assert.Eventually(t, func() bool {
		return store.count() == 0 && pool.Stats().OpenHandles == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSessionStore_CloseAll(t *testing.T) {
	pool := newSessionPool(t)
	store := newSessionStore(time.Minute, 0)

	for range 3 {
		h, err := pool.Open(0)
		require.NoError(t, err)
		store.add(h)
	}
	require.Equal(t, 3, store.count())

	store.closeAll()
	store.closeAll()

	assert.Equal(t, 0, store.count())
	assert.Equal(t, 0, pool.Stats().OpenHandles)
}
