// Package membuf provides a pool of addressable, independently resizable
// in-memory byte buffers.
//
// Each buffer (a Resource) lives in a numbered slot of a Pool and is reached
// through two surfaces:
//
//   - IOPort: byte-stream reads and writes through an open Handle
//   - ConfigPort: textual get/set attributes for a resource's size and the
//     pool's active resource count
//
// # Quick Start
//
//	pool, err := membuf.New(
//	    membuf.WithMaxResources(4),
//	    membuf.WithDefaultSize(256),
//	    membuf.WithInitialCount(1),
//	)
//	if err != nil { ... }
//	defer pool.Close()
//
//	cfg := pool.ConfigPort()
//	_ = cfg.SetCount("3\n")     // create membuf1 and membuf2
//	_ = cfg.SetSize(1, "10\n")  // shrink membuf1 to 10 bytes
//
//	h, _ := pool.Open(1)
//	defer h.Close()
//	n, _ := h.Write([]byte("hello")) // n == 5
//
// # Lifecycle
//
// Slots [0, ActiveCount()) are allocated; growing creates resources at the
// low end and shrinking destroys them from the high end. Growth stops at the
// first failed allocation and keeps what was created; the returned
// *GrowthError and a later ActiveCount report how far it got.
//
// # Generations
//
// Every slot carries a generation that advances when its resource is created
// or destroyed. A Handle records the generation it was opened against, and
// every read, write and seek compares it with the slot's current value. After
// a destroy (and possibly a re-create at the same id) the handle fails with
// ErrStaleHandle instead of touching a different buffer. Resizing keeps the
// generation, so handles survive it.
//
// # End of Buffer
//
// Reads and writes treat the end of a buffer differently on purpose: a read
// at or past the end returns 0 bytes with no error and rewinds the cursor to
// 0, while a write at or past the end fails with ErrNoSpace.
//
// # Concurrency
//
// All methods are safe for concurrent use. Structural changes hold a
// pool-wide lock; I/O and resizes hold only the lock of their own slot, so
// different resources never block each other. Operations block until their
// locks are available; there are no timeouts.
//
// # Memory
//
// Buffers live on the Go heap (BackendHeap) or in anonymous memory mappings
// (BackendMmap). WithMemoryLimit bounds the bytes held by all buffers;
// allocations beyond it fail with ErrOutOfMemory.
package membuf
