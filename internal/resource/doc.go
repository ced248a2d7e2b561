// Package resource implements the Controller for pool-wide limits.
//
// The Controller governs two resource types:
//
//   - Memory: Track and limit the bytes held by buffers (non-blocking, fail-fast)
//   - IO: Rate-limit byte-stream traffic through the IOPort
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and an atomic
// counter for usage tracking. AcquireMemory is non-blocking and returns
// immediately with ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20, // 64MB limit
//	})
//
//	if err := rc.AcquireMemory(4096); err != nil {
//	    // ErrMemoryLimitExceeded - surfaced to the caller as out of memory
//	}
//	defer rc.ReleaseMemory(4096)
//
// # IO Rate Limiting
//
// Token bucket rate limiter for reads and writes:
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 1 << 20, // 1MB/s
//	})
//
//	if err := rc.AcquireIO(ctx, len(p)); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
