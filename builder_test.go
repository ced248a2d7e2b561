package membuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	metrics := &BasicMetricsCollector{}

	p, err := Builder().
		MaxResources(8).
		DefaultSize(64).
		Count(3).
		MaxResourceSize(1024).
		MemoryLimit(4096).
		IOLimit(1 << 20).
		MaxOpenHandles(16).
		Mmap().
		Metrics(metrics).
		Logger(nil).
		Build()
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 8, p.MaxResources())
	assert.Equal(t, 64, p.DefaultSize())
	assert.Equal(t, 3, p.ActiveCount())
	assert.Equal(t, BackendMmap, p.Backend())
	assert.Equal(t, int64(4096), p.Stats().MemoryLimit)
	assert.Equal(t, int64(3), metrics.GetStats().ActiveCount)

	r, _ := p.Resource(0)
	assert.ErrorIs(t, r.Resize(1025), ErrOutOfRange)
}

func TestBuilder_Immutable(t *testing.T) {
	base := Builder().MaxResources(2)

	// Both branches share a base with spare capacity in its slice.
	small := base.DefaultSize(8)
	large := base.DefaultSize(16)

	ps, err := small.Build()
	require.NoError(t, err)
	defer ps.Close()

	pl, err := large.Build()
	require.NoError(t, err)
	defer pl.Close()

	assert.Equal(t, 8, ps.DefaultSize())
	assert.Equal(t, 16, pl.DefaultSize())
	assert.Len(t, base.Options(), 1)
}

func TestBuilder_Invalid(t *testing.T) {
	_, err := Builder().MaxResources(0).Heap().Build()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
