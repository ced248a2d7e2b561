package alloc

import (
	"errors"
	"fmt"

	"github.com/hupe1980/membuf/internal/resource"
)

// Budgeted accounts every buffer of an inner Allocator against a Controller.
type Budgeted struct {
	inner Allocator
	rc    *resource.Controller
}

// NewBudgeted wraps inner. A nil controller disables accounting.
func NewBudgeted(inner Allocator, rc *resource.Controller) *Budgeted {
	return &Budgeted{inner: inner, rc: rc}
}

// Alloc implements Allocator.
func (a *Budgeted) Alloc(size int) (Buffer, error) {
	if err := a.acquire(int64(size)); err != nil {
		return nil, err
	}
	b, err := a.inner.Alloc(size)
	if err != nil {
		a.rc.ReleaseMemory(int64(size))
		return nil, err
	}
	return b, nil
}

// Realloc implements Allocator. Only the growth is charged; a shrink returns
// the difference once the new buffer is in place.
func (a *Budgeted) Realloc(b Buffer, size int) (Buffer, error) {
	delta := int64(size) - int64(Len(b))
	if err := a.acquire(delta); err != nil {
		return nil, err
	}
	nb, err := a.inner.Realloc(b, size)
	if err != nil {
		a.rc.ReleaseMemory(delta)
		return nil, err
	}
	if delta < 0 {
		a.rc.ReleaseMemory(-delta)
	}
	return nb, nil
}

// Free implements Allocator. The buffer is uncharged even when the inner
// Free fails, since the caller drops it either way.
func (a *Budgeted) Free(b Buffer) error {
	n := int64(Len(b))
	err := a.inner.Free(b)
	a.rc.ReleaseMemory(n)
	return err
}

// Usage returns the number of bytes currently held by live buffers.
func (a *Budgeted) Usage() int64 {
	return a.rc.MemoryUsage()
}

func (a *Budgeted) acquire(bytes int64) error {
	if err := a.rc.AcquireMemory(bytes); err != nil {
		if errors.Is(err, resource.ErrMemoryLimitExceeded) {
			return fmt.Errorf("%w: %w (limit %d, in use %d, requested %d)",
				ErrOutOfMemory, err, a.rc.MemoryLimit(), a.rc.MemoryUsage(), bytes)
		}
		return err
	}
	return nil
}
