package membuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicMetricsCollector(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	p, err := New(WithDefaultSize(8), WithMetricsCollector(metrics))
	require.NoError(t, err)

	h, err := p.Open(0)
	require.NoError(t, err)
	_, err = p.Open(3)
	require.Error(t, err)

	_, err = h.Write([]byte("abcdef"))
	require.NoError(t, err)
	_, err = h.Write([]byte("ghijkl"))
	require.NoError(t, err)
	_, err = h.Write([]byte("x"))
	require.ErrorIs(t, err, ErrNoSpace)

	_, err = h.Read(make([]byte, 4))
	require.NoError(t, err)
	_, err = h.Read(make([]byte, 4))
	require.NoError(t, err)

	r, _ := p.Resource(0)
	require.NoError(t, r.Resize(16))
	require.Error(t, r.Resize(0))

	require.NoError(t, p.SetActiveCount(2))
	require.Error(t, p.SetActiveCount(9))

	require.NoError(t, h.Close())

	stats := metrics.GetStats()
	assert.Equal(t, int64(3), stats.WriteCount)
	assert.Equal(t, int64(8), stats.WriteBytes)
	assert.Equal(t, int64(1), stats.WriteErrors)
	assert.Equal(t, int64(2), stats.ReadCount)
	assert.Equal(t, int64(4), stats.ReadBytes)
	assert.Equal(t, int64(0), stats.ReadErrors)
	assert.Equal(t, int64(2), stats.ResizeCount)
	assert.Equal(t, int64(1), stats.ResizeErrors)
	assert.Equal(t, int64(2), stats.OpenCount)
	assert.Equal(t, int64(1), stats.OpenErrors)
	assert.Equal(t, int64(1), stats.CloseCount)
	assert.Equal(t, int64(2), stats.ActiveCount)

	// New's initial growth plus the two explicit calls.
	assert.Equal(t, int64(3), stats.CountChanges)
	assert.Equal(t, int64(1), stats.CountErrors)

	require.NoError(t, p.Close())
	stats = metrics.GetStats()
	assert.Equal(t, int64(0), stats.ActiveCount)
	assert.Equal(t, int64(4), stats.CountChanges)
}

func TestBasicMetricsCollector_Averages(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	assert.Equal(t, int64(0), metrics.GetStats().ReadAvgNanos)

	metrics.RecordRead(0, 1, 100, nil)
	metrics.RecordRead(0, 1, 300, nil)
	metrics.RecordWrite(0, 1, 50, nil)

	stats := metrics.GetStats()
	assert.Equal(t, int64(200), stats.ReadAvgNanos)
	assert.Equal(t, int64(50), stats.WriteAvgNanos)
}

func TestNoopMetricsCollector(t *testing.T) {
	p := newTestPool(t, WithMetricsCollector(nil))

	h, err := p.Open(0)
	require.NoError(t, err)
	_, err = h.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, h.Close())
}
