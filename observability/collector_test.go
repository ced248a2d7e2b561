package observability

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/membuf"
)

func newPool(t *testing.T, opts ...membuf.Option) (*membuf.Pool, *Collector, *prometheus.Registry) {
	t.Helper()

	registry := prometheus.NewRegistry()
	c, err := NewCollector(registry)
	require.NoError(t, err)

	p, err := membuf.New(append(opts, membuf.WithMetricsCollector(c))...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	return p, c, registry
}

func TestCollector_IO(t *testing.T) {
	p, c, _ := newPool(t, membuf.WithDefaultSize(8))

	h, err := p.Open(0)
	require.NoError(t, err)

	_, err = h.Write([]byte("abcdefghij"))
	require.NoError(t, err)
	_, err = h.Write([]byte("x"))
	require.ErrorIs(t, err, membuf.ErrNoSpace)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.operationsTotal.WithLabelValues("write", "0", statusSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.operationsTotal.WithLabelValues("write", "0", statusError)))
	assert.Equal(t, float64(8), testutil.ToFloat64(c.bytesTotal.WithLabelValues("write", "0")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.operationErrors.WithLabelValues("write", "no_space")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.openHandles))

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.Equal(t, float64(0), testutil.ToFloat64(c.openHandles))
}

func TestCollector_ResizeAndCount(t *testing.T) {
	p, c, _ := newPool(t, membuf.WithMemoryLimit(600))

	r, err := p.Resource(0)
	require.NoError(t, err)
	require.NoError(t, r.Resize(100))
	require.Error(t, r.Resize(0))

	assert.Equal(t, float64(100), testutil.ToFloat64(c.resourceSizeBytes.WithLabelValues("0")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.operationErrors.WithLabelValues("resize", "out_of_range")))

	err = p.SetActiveCount(4)
	require.ErrorIs(t, err, membuf.ErrOutOfMemory)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.activeResources))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.countChangesTotal.WithLabelValues(statusError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.operationErrors.WithLabelValues("count", "out_of_memory")))
}

func TestCollector_Exposition(t *testing.T) {
	p, _, registry := newPool(t)
	require.NoError(t, RegisterPool(registry, p))

	expected := `
# HELP membuf_active_resources Number of allocated resources
# TYPE membuf_active_resources gauge
membuf_active_resources 1
# HELP membuf_allocated_bytes Bytes held by all buffers
# TYPE membuf_allocated_bytes gauge
membuf_allocated_bytes 256
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"membuf_active_resources", "membuf_allocated_bytes")
	assert.NoError(t, err)
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewCollector(registry)
	require.NoError(t, err)

	_, err = NewCollector(registry)
	assert.Error(t, err)
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{membuf.ErrInvalidArgument, "invalid_argument"},
		{&membuf.RangeError{Name: "size"}, "out_of_range"},
		{fmt.Errorf("wrapped: %w", membuf.ErrOutOfMemory), "out_of_memory"},
		{&membuf.StaleHandleError{}, "stale_handle"},
		{membuf.ErrNoSpace, "no_space"},
		{membuf.ErrNotAllocated, "not_allocated"},
		{membuf.ErrClosed, "closed"},
		{errors.New("boom"), "other"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorType(tt.err), "%v", tt.err)
	}
}
