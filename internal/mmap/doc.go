// Package mmap provides anonymous read/write memory mappings.
//
// # Overview
//
// Buffers placed in an anonymous mapping live outside the Go heap, so large
// resources do not add to garbage collector pressure and their memory is
// returned to the operating system as soon as the mapping is closed.
//
// # Usage
//
//	m, err := mmap.MapAnon(4096)
//	if err != nil { ... }
//	defer m.Close()
//
//	buf := m.Bytes() // zero-filled, len 4096
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE, madvise(2) for hints
//   - Windows: VirtualAlloc/VirtualFree (advice is a no-op)
//
// # Thread Safety
//
// Close is idempotent and protected by atomic operations. Callers must
// ensure no goroutines access Bytes() after Close() returns.
package mmap
