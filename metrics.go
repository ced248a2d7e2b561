package membuf

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// observability package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordRead is called after each read through a handle.
	// n is the number of bytes copied, err is nil if successful.
	RecordRead(id, n int, duration time.Duration, err error)

	// RecordWrite is called after each write through a handle.
	RecordWrite(id, n int, duration time.Duration, err error)

	// RecordResize is called after each resize. size is the size in effect
	// afterwards, which is the old size when err is non-nil.
	RecordResize(id, size int, duration time.Duration, err error)

	// RecordActiveCount is called after each SetActiveCount with the count
	// the pool actually reached.
	RecordActiveCount(active int, duration time.Duration, err error)

	// RecordOpen is called after each open attempt.
	RecordOpen(id int, err error)

	// RecordClose is called once per closed handle.
	RecordClose(id int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRead(int, int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordWrite(int, int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordResize(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordActiveCount(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordOpen(int, error)                       {}
func (NoopMetricsCollector) RecordClose(int)                             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ReadCount       atomic.Int64
	ReadBytes       atomic.Int64
	ReadErrors      atomic.Int64
	ReadTotalNanos  atomic.Int64
	WriteCount      atomic.Int64
	WriteBytes      atomic.Int64
	WriteErrors     atomic.Int64
	WriteTotalNanos atomic.Int64
	ResizeCount     atomic.Int64
	ResizeErrors    atomic.Int64
	CountChanges    atomic.Int64
	CountErrors     atomic.Int64
	ActiveCount     atomic.Int64
	OpenCount       atomic.Int64
	OpenErrors      atomic.Int64
	CloseCount      atomic.Int64
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(_ int, n int, duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadBytes.Add(int64(n))
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
	}
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(_ int, n int, duration time.Duration, err error) {
	b.WriteCount.Add(1)
	b.WriteBytes.Add(int64(n))
	b.WriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.WriteErrors.Add(1)
	}
}

// RecordResize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResize(_ int, _ int, _ time.Duration, err error) {
	b.ResizeCount.Add(1)
	if err != nil {
		b.ResizeErrors.Add(1)
	}
}

// RecordActiveCount implements MetricsCollector.
func (b *BasicMetricsCollector) RecordActiveCount(active int, _ time.Duration, err error) {
	b.CountChanges.Add(1)
	b.ActiveCount.Store(int64(active))
	if err != nil {
		b.CountErrors.Add(1)
	}
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(_ int, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordClose implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClose(int) {
	b.CloseCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ReadCount:     b.ReadCount.Load(),
		ReadBytes:     b.ReadBytes.Load(),
		ReadErrors:    b.ReadErrors.Load(),
		ReadAvgNanos:  avgNanos(b.ReadTotalNanos.Load(), b.ReadCount.Load()),
		WriteCount:    b.WriteCount.Load(),
		WriteBytes:    b.WriteBytes.Load(),
		WriteErrors:   b.WriteErrors.Load(),
		WriteAvgNanos: avgNanos(b.WriteTotalNanos.Load(), b.WriteCount.Load()),
		ResizeCount:   b.ResizeCount.Load(),
		ResizeErrors:  b.ResizeErrors.Load(),
		CountChanges:  b.CountChanges.Load(),
		CountErrors:   b.CountErrors.Load(),
		ActiveCount:   b.ActiveCount.Load(),
		OpenCount:     b.OpenCount.Load(),
		OpenErrors:    b.OpenErrors.Load(),
		CloseCount:    b.CloseCount.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ReadCount     int64
	ReadBytes     int64
	ReadErrors    int64
	ReadAvgNanos  int64
	WriteCount    int64
	WriteBytes    int64
	WriteErrors   int64
	WriteAvgNanos int64
	ResizeCount   int64
	ResizeErrors  int64
	CountChanges  int64
	CountErrors   int64
	ActiveCount   int64
	OpenCount     int64
	OpenErrors    int64
	CloseCount    int64
}
