package membuf

import (
	"context"
	"time"
)

// IOPort is the byte-stream surface of a Pool. It binds reads and writes to
// a Handle's cursor and validates the handle's generation before touching
// the buffer.
//
// Example:
//
//	io := pool.IOPort()
//	h, _ := io.Open(1)
//	defer io.Close(h)
//
//	n, err := io.Write(h, []byte("hello")) // n == 5, cursor 5
type IOPort struct {
	pool *Pool
}

// Open opens a handle on resource id. See Pool.Open.
func (p *IOPort) Open(id int) (*Handle, error) {
	return p.pool.Open(id)
}

// Close releases h. It never fails and is idempotent.
func (p *IOPort) Close(h *Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	if p.pool.handles.release(h.serial) {
		p.pool.metrics.RecordClose(h.res.id)
		p.pool.logger.LogClose(context.Background(), h.res.id, h.serial)
	}
}

// Read copies from the resource at h's cursor into buf.
//
// It returns 0 and a nil error when the cursor is at or past the end of the
// buffer, and rewinds the cursor to 0 in that case only. It fails with
// ErrStaleHandle if the resource was destroyed since h was opened.
func (p *IOPort) Read(h *Handle, buf []byte) (n int, err error) {
	start := time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	cursor := h.cursor
	defer func() {
		p.pool.metrics.RecordRead(h.res.id, n, time.Since(start), err)
		p.pool.logger.LogIO(context.Background(), "read", h.res.id, h.serial, cursor, len(buf), n, err)
	}()

	if err := p.prepare(h, len(buf)); err != nil {
		return 0, err
	}

	n, next, err := h.res.readAt(h.gen, h.cursor, buf)
	if err != nil {
		return 0, err
	}
	h.cursor = next
	return n, nil
}

// Write copies buf into the resource at h's cursor.
//
// It fails with ErrNoSpace when the cursor is at or past the end of the
// buffer and with ErrStaleHandle if the resource was destroyed since h was
// opened. Otherwise it writes as much of buf as fits.
func (p *IOPort) Write(h *Handle, buf []byte) (n int, err error) {
	start := time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	cursor := h.cursor
	defer func() {
		p.pool.metrics.RecordWrite(h.res.id, n, time.Since(start), err)
		p.pool.logger.LogIO(context.Background(), "write", h.res.id, h.serial, cursor, len(buf), n, err)
	}()

	if err := p.prepare(h, len(buf)); err != nil {
		return 0, err
	}

	n, next, err := h.res.writeAt(h.gen, h.cursor, buf)
	if err != nil {
		return 0, err
	}
	h.cursor = next
	return n, nil
}

// prepare rejects closed and stale handles and waits for IO budget covering
// the bytes a transfer of n bytes at h's cursor can move. The caller holds
// h.mu.
func (p *IOPort) prepare(h *Handle, n int) error {
	if h.closed {
		return ErrClosed
	}
	// Fail fast without queueing on the slot lock; readAt and writeAt check
	// again under the lock.
	if err := h.res.checkGeneration(h.gen); err != nil {
		return err
	}
	if p.pool.rc.IOLimit() == 0 {
		return nil
	}
	size, err := h.res.sizeAt(h.gen)
	if err != nil {
		return err
	}
	return p.pool.rc.AcquireIO(context.Background(), transferSpan(size, h.cursor, n))
}

// transferSpan is the number of bytes a transfer of n bytes at cursor moves
// in a buffer of size bytes. A concurrent resize may change the actual count.
func transferSpan(size, cursor, n int) int {
	if cursor < 0 || cursor >= size {
		return 0
	}
	return min(n, size-cursor)
}
