package observability

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/membuf"
)

const namespace = "membuf"

// Histogram buckets for in-memory operations, 1µs to ~0.5s.
const (
	bucketStart1us = 0.000001
	bucketFactor2  = 2
	bucketCount20  = 20
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Collector records pool operations as Prometheus metrics.
type Collector struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationErrors   *prometheus.CounterVec
	bytesTotal        *prometheus.CounterVec
	resourceSizeBytes *prometheus.GaugeVec
	activeResources   prometheus.Gauge
	openHandles       prometheus.Gauge
	handleOpensTotal  *prometheus.CounterVec
	countChangesTotal *prometheus.CounterVec

	collectors []prometheus.Collector
}

var (
	_ membuf.MetricsCollector = (*Collector)(nil)
	_ prometheus.Collector    = (*Collector)(nil)
)

// NewCollector creates a collector and registers it with registry.
func NewCollector(registry prometheus.Registerer) (*Collector, error) {
	c := newCollector()
	if err := registry.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}

func newCollector() *Collector {
	c := &Collector{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of resource operations",
			},
			[]string{"operation", "resource", "status"}, // operation: read, write, resize
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Time taken for resource operations",
				Buckets:   prometheus.ExponentialBuckets(bucketStart1us, bucketFactor2, bucketCount20),
			},
			[]string{"operation"},
		),
		operationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_errors_total",
				Help:      "Total number of failed operations by error class",
			},
			[]string{"operation", "error_type"},
		),
		bytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_total",
				Help:      "Total bytes transferred through handles",
			},
			[]string{"operation", "resource"},
		),
		resourceSizeBytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "resource_size_bytes",
				Help:      "Size of each resource after its last resize",
			},
			[]string{"resource"},
		),
		activeResources: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_resources",
			Help:      "Number of allocated resources",
		}),
		openHandles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_handles",
			Help:      "Number of open handles",
		}),
		handleOpensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handle_opens_total",
				Help:      "Total number of open attempts",
			},
			[]string{"resource", "status"},
		),
		countChangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "count_changes_total",
				Help:      "Total number of active count changes",
			},
			[]string{"status"},
		),
	}

	c.collectors = []prometheus.Collector{
		c.operationsTotal,
		c.operationDuration,
		c.operationErrors,
		c.bytesTotal,
		c.resourceSizeBytes,
		c.activeResources,
		c.openHandles,
		c.handleOpensTotal,
		c.countChangesTotal,
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range c.collectors {
		collector.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range c.collectors {
		collector.Collect(ch)
	}
}

// RecordRead implements membuf.MetricsCollector.
func (c *Collector) RecordRead(id, n int, d time.Duration, err error) {
	c.recordIO("read", id, n, d, err)
}

// RecordWrite implements membuf.MetricsCollector.
func (c *Collector) RecordWrite(id, n int, d time.Duration, err error) {
	c.recordIO("write", id, n, d, err)
}

func (c *Collector) recordIO(op string, id, n int, d time.Duration, err error) {
	c.recordOperation(op, id, d, err)
	if n > 0 {
		c.bytesTotal.WithLabelValues(op, strconv.Itoa(id)).Add(float64(n))
	}
}

// RecordResize implements membuf.MetricsCollector.
func (c *Collector) RecordResize(id, size int, d time.Duration, err error) {
	c.recordOperation("resize", id, d, err)
	if err == nil {
		c.resourceSizeBytes.WithLabelValues(strconv.Itoa(id)).Set(float64(size))
	}
}

// RecordActiveCount implements membuf.MetricsCollector.
func (c *Collector) RecordActiveCount(active int, _ time.Duration, err error) {
	c.activeResources.Set(float64(active))
	c.countChangesTotal.WithLabelValues(status(err)).Inc()
	if err != nil {
		c.operationErrors.WithLabelValues("count", ErrorType(err)).Inc()
	}
}

// RecordOpen implements membuf.MetricsCollector.
func (c *Collector) RecordOpen(id int, err error) {
	c.handleOpensTotal.WithLabelValues(strconv.Itoa(id), status(err)).Inc()
	if err != nil {
		c.operationErrors.WithLabelValues("open", ErrorType(err)).Inc()
		return
	}
	c.openHandles.Inc()
}

// RecordClose implements membuf.MetricsCollector.
func (c *Collector) RecordClose(int) {
	c.openHandles.Dec()
}

func (c *Collector) recordOperation(op string, id int, d time.Duration, err error) {
	c.operationsTotal.WithLabelValues(op, strconv.Itoa(id), status(err)).Inc()
	c.operationDuration.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		c.operationErrors.WithLabelValues(op, ErrorType(err)).Inc()
	}
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusSuccess
}

// ErrorType classifies err by the membuf sentinel it wraps.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, membuf.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, membuf.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, membuf.ErrOutOfMemory):
		return "out_of_memory"
	case errors.Is(err, membuf.ErrStaleHandle):
		return "stale_handle"
	case errors.Is(err, membuf.ErrNoSpace):
		return "no_space"
	case errors.Is(err, membuf.ErrNotAllocated):
		return "not_allocated"
	case errors.Is(err, membuf.ErrClosed):
		return "closed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
