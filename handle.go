package membuf

import (
	"fmt"
	"io"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/membuf/internal/conv"
)

// Handle is an open session on one resource: the slot id, the generation
// observed at open time and a cursor.
//
// A Handle does not own its resource. Destroying the resource makes the
// handle permanently stale; reads, writes and seeks then fail with
// ErrStaleHandle and the caller must open a new handle. Resizing does not.
//
// Operations on a single Handle are serialized; a Handle may be shared
// between goroutines.
type Handle struct {
	pool   *Pool
	res    *Resource
	serial uint32
	gen    uint64

	mu     sync.Mutex
	cursor int
	closed bool
}

var (
	_ io.Reader = (*Handle)(nil)
	_ io.Writer = (*Handle)(nil)
	_ io.Seeker = (*Handle)(nil)
	_ io.Closer = (*Handle)(nil)
)

// ResourceID returns the id of the slot the handle was opened on.
func (h *Handle) ResourceID() int { return h.res.id }

// Generation returns the slot generation observed at open time.
func (h *Handle) Generation() uint64 { return h.gen }

// Serial returns the pool-unique number of this handle among open handles.
func (h *Handle) Serial() uint32 { return h.serial }

// Cursor returns the current byte offset.
func (h *Handle) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.cursor
}

// Stale reports whether the resource behind the handle has been destroyed.
func (h *Handle) Stale() bool {
	return h.res.Generation() != h.gen
}

// Read reads from the cursor and advances it. At or past the end of the
// buffer it returns 0 with a nil error and rewinds the cursor to 0.
// Note that this differs from the usual io.Reader convention of io.EOF.
func (h *Handle) Read(p []byte) (int, error) {
	return h.pool.io.Read(h, p)
}

// Write writes at the cursor and advances it. At or past the end of the
// buffer it fails with ErrNoSpace. A write that does not fit is truncated
// to the space left, so n may be less than len(p) with a nil error.
func (h *Handle) Write(p []byte) (int, error) {
	return h.pool.io.Write(h, p)
}

// Seek sets the cursor for the next Read or Write. io.SeekEnd is relative to
// the current buffer size. Positions past the end are allowed; a negative
// position fails with ErrInvalidArgument.
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, ErrClosed
	}

	off, err := conv.Int64ToInt(offset)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	var base int
	switch whence {
	case io.SeekStart:
		if err := h.res.checkGeneration(h.gen); err != nil {
			return 0, err
		}
	case io.SeekCurrent:
		if err := h.res.checkGeneration(h.gen); err != nil {
			return 0, err
		}
		base = h.cursor
	case io.SeekEnd:
		size, err := h.res.sizeAt(h.gen)
		if err != nil {
			return 0, err
		}
		base = size
	default:
		return 0, fmt.Errorf("%w: whence %d", ErrInvalidArgument, whence)
	}

	pos := base + off
	if (off > 0 && pos < base) || pos < 0 {
		return 0, fmt.Errorf("%w: seek to negative or overflowing position", ErrInvalidArgument)
	}
	h.cursor = pos
	return int64(pos), nil
}

// Close releases the handle. It never fails and may be called more than
// once, also after the resource was destroyed.
func (h *Handle) Close() error {
	h.pool.io.Close(h)
	return nil
}

func (h *Handle) String() string {
	return fmt.Sprintf("%s#%d@%d", h.res.Name(), h.serial, h.gen)
}

// handleTable tracks the serials of open handles.
type handleTable struct {
	mu    sync.Mutex
	open  *roaring.Bitmap
	next  uint32
	limit int
}

func newHandleTable(limit int) *handleTable {
	return &handleTable{
		open:  roaring.New(),
		limit: limit,
	}
}

// register reserves a serial for a new handle.
func (t *handleTable) register() (uint32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.open.GetCardinality()
	if (t.limit > 0 && n >= uint64(t.limit)) || n == 1<<32-1 {
		return 0, fmt.Errorf("%w: %d handles open", ErrOutOfMemory, n)
	}

	// Serial 0 is never handed out; skip serials still in use after wrap-around.
	for {
		t.next++
		if t.next != 0 && !t.open.Contains(t.next) {
			break
		}
	}
	t.open.Add(t.next)
	return t.next, nil
}

// release frees serial and reports whether it was open.
func (t *handleTable) release(serial uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.open.CheckedRemove(serial)
}

func (t *handleTable) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return int(t.open.GetCardinality())
}
