package membuf

import "log/slog"

// PoolBuilder is an immutable fluent builder for pools. Each method returns
// a new builder with the updated configuration, so a partially configured
// builder can be shared and specialized safely.
//
// Example:
//
//	pool, err := membuf.Builder().
//	    MaxResources(4).
//	    DefaultSize(256).
//	    Count(1).
//	    Mmap().
//	    Build()
type PoolBuilder struct {
	opts []Option
}

// Builder returns a builder starting from the default configuration.
func Builder() PoolBuilder {
	return PoolBuilder{}
}

func (b PoolBuilder) with(o Option) PoolBuilder {
	opts := make([]Option, len(b.opts), len(b.opts)+1)
	copy(opts, b.opts)
	b.opts = append(opts, o)
	return b
}

// MaxResources sets the number of slots.
func (b PoolBuilder) MaxResources(n int) PoolBuilder { return b.with(WithMaxResources(n)) }

// DefaultSize sets the size of newly created resources.
func (b PoolBuilder) DefaultSize(n int) PoolBuilder { return b.with(WithDefaultSize(n)) }

// Count sets the number of resources created by Build.
func (b PoolBuilder) Count(n int) PoolBuilder { return b.with(WithInitialCount(n)) }

// MaxResourceSize bounds Resize.
func (b PoolBuilder) MaxResourceSize(n int) PoolBuilder { return b.with(WithMaxResourceSize(n)) }

// MemoryLimit caps the bytes held by all buffers.
func (b PoolBuilder) MemoryLimit(bytes int64) PoolBuilder { return b.with(WithMemoryLimit(bytes)) }

// IOLimit throttles reads and writes.
func (b PoolBuilder) IOLimit(bytesPerSec int64) PoolBuilder {
	return b.with(WithIOLimit(bytesPerSec))
}

// MaxOpenHandles bounds the number of open handles.
func (b PoolBuilder) MaxOpenHandles(n int) PoolBuilder { return b.with(WithMaxOpenHandles(n)) }

// Heap stores buffers on the Go heap. This is the default.
func (b PoolBuilder) Heap() PoolBuilder { return b.with(WithBackend(BackendHeap)) }

// Mmap stores buffers in anonymous memory mappings.
func (b PoolBuilder) Mmap() PoolBuilder { return b.with(WithBackend(BackendMmap)) }

// Logger sets the logger.
func (b PoolBuilder) Logger(l *Logger) PoolBuilder { return b.with(WithLogger(l)) }

// LogLevel logs as text at level to stderr.
func (b PoolBuilder) LogLevel(level slog.Level) PoolBuilder { return b.with(WithLogLevel(level)) }

// Metrics sets the metrics collector.
func (b PoolBuilder) Metrics(mc MetricsCollector) PoolBuilder {
	return b.with(WithMetricsCollector(mc))
}

// Options returns the accumulated options, e.g. to extend them before New.
func (b PoolBuilder) Options() []Option {
	return append([]Option(nil), b.opts...)
}

// Build creates the pool.
func (b PoolBuilder) Build() (*Pool, error) {
	return New(b.opts...)
}
