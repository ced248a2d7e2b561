package membuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	p := newTestPool(t)

	assert.Equal(t, DefaultMaxResources, p.MaxResources())
	assert.Equal(t, DefaultSize, p.DefaultSize())
	assert.Equal(t, DefaultInitialCount, p.ActiveCount())
	assert.Equal(t, BackendHeap, p.Backend())
	assert.NotNil(t, p.IOPort())
	assert.NotNil(t, p.ConfigPort())
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"zero resources", []Option{WithMaxResources(0)}},
		{"zero default size", []Option{WithDefaultSize(0)}},
		{"default above max size", []Option{WithDefaultSize(100), WithMaxResourceSize(50)}},
		{"negative initial count", []Option{WithInitialCount(-1)}},
		{"initial count above max", []Option{WithMaxResources(2), WithInitialCount(3)}},
		{"negative memory limit", []Option{WithMemoryLimit(-1)}},
		{"negative io limit", []Option{WithIOLimit(-1)}},
		{"negative handle bound", []Option{WithMaxOpenHandles(-1)}},
		{"unknown backend", []Option{WithBackend(Backend(42))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.opts...)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Nil(t, p)
		})
	}
}

func TestNew_InitialGrowthFailure(t *testing.T) {
	p, err := New(WithDefaultSize(64), WithInitialCount(3), WithMemoryLimit(100))
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.Nil(t, p)
}

func TestNew_ZeroInitialCount(t *testing.T) {
	p := newTestPool(t, WithInitialCount(0))
	assert.Equal(t, 0, p.ActiveCount())

	_, err := p.Open(0)
	assert.ErrorIs(t, err, ErrNotAllocated)
}

func TestPool_SetActiveCountGrowShrink(t *testing.T) {
	p := newTestPool(t, WithDefaultSize(32))

	require.NoError(t, p.SetActiveCount(4))
	assert.Equal(t, 4, p.ActiveCount())
	for id := range 4 {
		r, _ := p.Resource(id)
		assert.Equal(t, 32, r.Size(), "resource %d", id)
	}
	assert.Equal(t, int64(4*32), p.Stats().BytesAllocated)

	require.NoError(t, p.SetActiveCount(1))
	assert.Equal(t, 1, p.ActiveCount())

	r0, _ := p.Resource(0)
	assert.Equal(t, 32, r0.Size())
	for id := 1; id < 4; id++ {
		r, _ := p.Resource(id)
		assert.Equal(t, 0, r.Size(), "resource %d", id)
	}
	assert.Equal(t, int64(32), p.Stats().BytesAllocated)

	require.NoError(t, p.SetActiveCount(0))
	assert.Equal(t, 0, p.ActiveCount())
	assert.Equal(t, int64(0), p.Stats().BytesAllocated)
}

func TestPool_SetActiveCountIdempotent(t *testing.T) {
	p := newTestPool(t)

	require.NoError(t, p.SetActiveCount(3))
	before := p.Stats()

	require.NoError(t, p.SetActiveCount(3))
	after := p.Stats()

	assert.Equal(t, before, after)
}

func TestPool_SetActiveCountOutOfRange(t *testing.T) {
	p := newTestPool(t)

	for _, target := range []int{-1, DefaultMaxResources + 1} {
		err := p.SetActiveCount(target)
		require.ErrorIs(t, err, ErrOutOfRange)

		var re *RangeError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "count", re.Name)
		assert.Equal(t, target, re.Value)
	}
	assert.Equal(t, DefaultInitialCount, p.ActiveCount())
}

func TestPool_PartialGrowth(t *testing.T) {
	p := newTestPool(t, WithDefaultSize(256), WithMemoryLimit(2*256))

	err := p.SetActiveCount(4)
	require.ErrorIs(t, err, ErrOutOfMemory)

	var ge *GrowthError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, 4, ge.Target)
	assert.Equal(t, 2, ge.Active)

	// Resources created before the failure are kept.
	assert.Equal(t, 2, p.ActiveCount())
	r1, _ := p.Resource(1)
	assert.Equal(t, 256, r1.Size())
	r2, _ := p.Resource(2)
	assert.Equal(t, 0, r2.Size())
	assert.Equal(t, uint64(0), r2.Generation())

	// Freeing memory lets a retry continue from where it stopped.
	r0, _ := p.Resource(0)
	require.NoError(t, r0.Resize(1))
	require.NoError(t, r1.Resize(1))
	require.NoError(t, p.SetActiveCount(3))
	assert.Equal(t, 3, p.ActiveCount())
}

func TestPool_ResourceOutOfRange(t *testing.T) {
	p := newTestPool(t)

	for _, id := range []int{-1, DefaultMaxResources} {
		_, err := p.Resource(id)
		assert.ErrorIs(t, err, ErrOutOfRange)

		_, err = p.Open(id)
		assert.ErrorIs(t, err, ErrOutOfRange)
	}
}

func TestPool_DestroyAdvancesGeneration(t *testing.T) {
	p := newTestPool(t, WithInitialCount(2))
	r1, _ := p.Resource(1)
	assert.Equal(t, uint64(1), r1.Generation())

	require.NoError(t, p.SetActiveCount(1))
	assert.Equal(t, uint64(2), r1.Generation())

	require.NoError(t, p.SetActiveCount(2))
	assert.Equal(t, uint64(3), r1.Generation())
	assert.Equal(t, DefaultSize, r1.Size())
}

func TestPool_RecreateIsZeroFilled(t *testing.T) {
	p := newTestPool(t, WithDefaultSize(8), WithInitialCount(2))
	r1, _ := p.Resource(1)

	_, _, err := r1.Write(0, []byte("leftover"))
	require.NoError(t, err)

	require.NoError(t, p.SetActiveCount(1))
	require.NoError(t, p.SetActiveCount(2))

	assert.Equal(t, make([]byte, 8), contents(t, r1))
}

func TestPool_Close(t *testing.T) {
	p, err := New(WithInitialCount(3))
	require.NoError(t, err)

	h, err := p.Open(2)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.Equal(t, 0, p.ActiveCount())
	assert.Equal(t, int64(0), p.Stats().BytesAllocated)

	_, err = h.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrStaleHandle)
	assert.NoError(t, h.Close())

	assert.ErrorIs(t, p.SetActiveCount(1), ErrClosed)
	_, err = p.Open(0)
	assert.ErrorIs(t, err, ErrClosed)

	assert.NoError(t, p.Close())

	var nilPool *Pool
	assert.NoError(t, nilPool.Close())
}

func TestPool_Stats(t *testing.T) {
	p := newTestPool(t, WithMaxResources(3), WithDefaultSize(10), WithInitialCount(2), WithMemoryLimit(1000))

	h, err := p.Open(0)
	require.NoError(t, err)
	defer h.Close()

	s := p.Stats()
	assert.Equal(t, 2, s.ActiveCount)
	assert.Equal(t, 3, s.MaxResources)
	assert.Equal(t, 10, s.DefaultSize)
	assert.Equal(t, "heap", s.Backend)
	assert.Equal(t, 1, s.OpenHandles)
	assert.Equal(t, int64(20), s.BytesAllocated)
	assert.Equal(t, int64(1000), s.MemoryLimit)
	assert.Equal(t, []ResourceStats{
		{ID: 0, Name: "membuf0", Size: 10, Generation: 1},
		{ID: 1, Name: "membuf1", Size: 10, Generation: 1},
		{ID: 2, Name: "membuf2", Size: 0, Generation: 0},
	}, s.Resources)

	assert.Equal(t, "membuf.Pool{active: 2, max: 3, default_size: 10}", p.String())
}
