package membuf

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/membuf/internal/alloc"
)

// ResourceName returns the device name of the resource in slot id.
func ResourceName(id int) string {
	return "membuf" + strconv.Itoa(id)
}

// Resource is one slot of a Pool: a resizable byte buffer and its generation.
//
// A slot is either allocated (size > 0) or unallocated (size == 0). The
// generation advances on every create and destroy of the slot, never on
// resize, so it identifies the buffer instance rather than its size.
type Resource struct {
	id   int
	pool *Pool

	mu  sync.RWMutex
	buf alloc.Buffer // nil while unallocated

	// gen is written only with mu held for writing; handles load it without
	// the lock to fail fast before queueing on mu.
	gen atomic.Uint64
}

// ID returns the slot index.
func (r *Resource) ID() int { return r.id }

// Name returns the device name, e.g. "membuf0".
func (r *Resource) Name() string { return ResourceName(r.id) }

// Generation returns the current generation of the slot.
func (r *Resource) Generation() uint64 { return r.gen.Load() }

// Size returns the buffer length in bytes, 0 while unallocated.
func (r *Resource) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return alloc.Len(r.buf)
}

// Allocated reports whether the slot currently holds a buffer.
func (r *Resource) Allocated() bool {
	return r.Size() > 0
}

// Resize reallocates the buffer to newSize bytes, keeping the first
// min(old, new) bytes and zero-filling any added bytes.
//
// A size of 0 is rejected with ErrOutOfRange; only destruction empties a
// slot. On ErrOutOfMemory the old buffer and size remain in effect. Open
// handles stay valid and see the new size on their next operation.
func (r *Resource) Resize(newSize int) (err error) {
	start := time.Now()
	oldSize := 0
	defer func() {
		size := newSize
		if err != nil {
			size = oldSize
		}
		r.pool.metrics.RecordResize(r.id, size, time.Since(start), err)
		r.pool.logger.LogResize(context.Background(), r.id, oldSize, newSize, err)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	oldSize = alloc.Len(r.buf)
	maxSize := r.pool.opts.maxResourceSize
	if newSize < 1 || newSize > maxSize {
		return &RangeError{Name: "size", Value: newSize, Min: 1, Max: maxSize}
	}
	if r.buf == nil {
		return fmt.Errorf("%w: %s", ErrNotAllocated, r.Name())
	}
	if oldSize == newSize {
		return nil
	}

	nb, err := r.pool.alloc.Realloc(r.buf, newSize)
	if err != nil {
		return translateError(err)
	}
	r.buf = nb
	return nil
}

// Read copies up to len(p) bytes starting at cursor and returns the count
// and the advanced cursor.
//
// A cursor at or past the end of the buffer yields (0, 0): the end of the
// buffer acts as end of stream and rewinds the cursor. Read never fails
// because of the buffer size; it fails only for a negative cursor.
func (r *Resource) Read(cursor int, p []byte) (n, next int, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.readLocked(cursor, p)
}

// Write copies up to len(p) bytes into the buffer starting at cursor and
// returns the count and the advanced cursor.
//
// A cursor at or past the end of the buffer fails with ErrNoSpace and leaves
// the buffer untouched. Bytes that do not fit are not written.
func (r *Resource) Write(cursor int, p []byte) (n, next int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writeLocked(cursor, p)
}

// readAt is Read for a handle that observed generation gen at open time.
func (r *Resource) readAt(gen uint64, cursor int, p []byte) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.checkGeneration(gen); err != nil {
		return 0, cursor, err
	}
	return r.readLocked(cursor, p)
}

// writeAt is Write for a handle that observed generation gen at open time.
func (r *Resource) writeAt(gen uint64, cursor int, p []byte) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkGeneration(gen); err != nil {
		return 0, cursor, err
	}
	return r.writeLocked(cursor, p)
}

// sizeAt returns the buffer size for a handle that observed generation gen.
func (r *Resource) sizeAt(gen uint64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.checkGeneration(gen); err != nil {
		return 0, err
	}
	return alloc.Len(r.buf), nil
}

func (r *Resource) checkGeneration(gen uint64) error {
	if cur := r.gen.Load(); cur != gen {
		return &StaleHandleError{ResourceID: r.id, Observed: gen, Current: cur}
	}
	return nil
}

func (r *Resource) readLocked(cursor int, p []byte) (int, int, error) {
	if cursor < 0 {
		return 0, cursor, fmt.Errorf("%w: negative cursor %d", ErrInvalidArgument, cursor)
	}
	data := r.bytes()
	if cursor >= len(data) {
		return 0, 0, nil
	}
	n := copy(p, data[cursor:])
	return n, cursor + n, nil
}

func (r *Resource) writeLocked(cursor int, p []byte) (int, int, error) {
	if cursor < 0 {
		return 0, cursor, fmt.Errorf("%w: negative cursor %d", ErrInvalidArgument, cursor)
	}
	data := r.bytes()
	if cursor >= len(data) {
		return 0, cursor, fmt.Errorf("%w: %s cursor %d, size %d", ErrNoSpace, r.Name(), cursor, len(data))
	}
	n := copy(data[cursor:], p)
	return n, cursor + n, nil
}

func (r *Resource) bytes() []byte {
	if r.buf == nil {
		return nil
	}
	return r.buf.Bytes()
}

// snapshot returns the generation of an allocated slot for a new handle.
func (r *Resource) snapshot() (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.buf == nil {
		return 0, fmt.Errorf("%w: %s", ErrNotAllocated, r.Name())
	}
	return r.gen.Load(), nil
}

// create allocates a zero-filled buffer of size bytes and advances the
// generation. On failure the slot stays unallocated and the generation is
// unchanged. The caller holds the pool's structural lock.
func (r *Resource) create(size int) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.buf != nil {
		return r.gen.Load(), fmt.Errorf("%s already allocated", r.Name())
	}
	b, err := r.pool.alloc.Alloc(size)
	if err != nil {
		return r.gen.Load(), translateError(err)
	}
	r.buf = b
	return r.gen.Add(1), nil
}

// destroy releases the buffer and advances the generation. It is a no-op
// for an unallocated slot. The slot ends up unallocated even when the
// backend reports an error releasing the memory. The caller holds the
// pool's structural lock.
func (r *Resource) destroy() (destroyed bool, gen uint64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.buf == nil {
		return false, r.gen.Load(), nil
	}
	err = r.pool.alloc.Free(r.buf)
	r.buf = nil
	return true, r.gen.Add(1), err
}
