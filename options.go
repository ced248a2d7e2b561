package membuf

import (
	"fmt"
	"log/slog"

	"github.com/hupe1980/membuf/internal/alloc"
)

const (
	// DefaultMaxResources is the default slot capacity of a Pool.
	DefaultMaxResources = 4
	// DefaultSize is the default byte size of a newly created resource.
	DefaultSize = 256
	// DefaultInitialCount is the number of resources created by New.
	DefaultInitialCount = 1
	// DefaultMaxResourceSize caps the size accepted by Resize.
	DefaultMaxResourceSize = 64 << 20
)

// Backend selects where resource buffers live.
type Backend int

const (
	// BackendHeap stores buffers as Go slices.
	BackendHeap Backend = iota
	// BackendMmap stores buffers in anonymous memory mappings outside the Go heap.
	BackendMmap
)

func (b Backend) String() string {
	switch b {
	case BackendHeap:
		return "heap"
	case BackendMmap:
		return "mmap"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend parses "heap" or "mmap".
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "heap", "":
		return BackendHeap, nil
	case "mmap":
		return BackendMmap, nil
	default:
		return 0, fmt.Errorf("%w: unknown backend %q", ErrInvalidArgument, s)
	}
}

type options struct {
	maxResources     int
	defaultSize      int
	initialCount     int
	maxResourceSize  int
	memoryLimit      int64
	ioLimit          int64
	backend          Backend
	maxOpenHandles   int
	metricsCollector MetricsCollector
	logger           *Logger

	// allocator replaces the backend; tests use it to inject faults.
	allocator alloc.Allocator
}

// Option configures a Pool.
type Option func(*options)

// WithMaxResources sets the number of slots in the pool.
func WithMaxResources(n int) Option {
	return func(o *options) {
		o.maxResources = n
	}
}

// WithDefaultSize sets the byte size given to newly created resources.
// It is fixed for the lifetime of the pool.
func WithDefaultSize(n int) Option {
	return func(o *options) {
		o.defaultSize = n
	}
}

// WithInitialCount sets how many resources New creates.
func WithInitialCount(n int) Option {
	return func(o *options) {
		o.initialCount = n
	}
}

// WithMaxResourceSize sets the largest size Resize accepts.
func WithMaxResourceSize(n int) Option {
	return func(o *options) {
		o.maxResourceSize = n
	}
}

// WithMemoryLimit caps the total bytes held by all buffers. Allocations that
// would exceed the cap fail with ErrOutOfMemory. Zero means unlimited.
//
// Example:
//
//	pool, _ := membuf.New(
//	    membuf.WithMaxResources(16),
//	    membuf.WithMemoryLimit(64<<20),
//	)
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit throttles reads and writes to bytesPerSec across the pool.
// Zero means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithBackend selects the buffer storage backend.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithMaxOpenHandles bounds the number of simultaneously open handles.
// Opening beyond the bound fails with ErrOutOfMemory. Zero means unbounded.
func WithMaxOpenHandles(n int) Option {
	return func(o *options) {
		o.maxOpenHandles = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &membuf.BasicMetricsCollector{}
//	pool, _ := membuf.New(membuf.WithMetricsCollector(metrics))
//	// ... use pool ...
//	stats := metrics.GetStats()
//	fmt.Printf("Reads: %d, bytes: %d\n", stats.ReadCount, stats.ReadBytes)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := membuf.NewJSONLogger(slog.LevelInfo)
//	pool, _ := membuf.New(membuf.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func withAllocator(a alloc.Allocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		maxResources:     DefaultMaxResources,
		defaultSize:      DefaultSize,
		initialCount:     DefaultInitialCount,
		maxResourceSize:  DefaultMaxResourceSize,
		backend:          BackendHeap,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o *options) validate() error {
	switch {
	case o.maxResources < 1:
		return fmt.Errorf("%w: max resources must be positive, got %d", ErrInvalidArgument, o.maxResources)
	case o.maxResourceSize < 1:
		return fmt.Errorf("%w: max resource size must be positive, got %d", ErrInvalidArgument, o.maxResourceSize)
	case o.defaultSize < 1 || o.defaultSize > o.maxResourceSize:
		return fmt.Errorf("%w: default size %d not in [1, %d]", ErrInvalidArgument, o.defaultSize, o.maxResourceSize)
	case o.initialCount < 0 || o.initialCount > o.maxResources:
		return fmt.Errorf("%w: initial count %d not in [0, %d]", ErrInvalidArgument, o.initialCount, o.maxResources)
	case o.memoryLimit < 0:
		return fmt.Errorf("%w: memory limit must not be negative", ErrInvalidArgument)
	case o.ioLimit < 0:
		return fmt.Errorf("%w: io limit must not be negative", ErrInvalidArgument)
	case o.maxOpenHandles < 0:
		return fmt.Errorf("%w: max open handles must not be negative", ErrInvalidArgument)
	case o.backend != BackendHeap && o.backend != BackendMmap:
		return fmt.Errorf("%w: unknown backend %v", ErrInvalidArgument, o.backend)
	}
	return nil
}
