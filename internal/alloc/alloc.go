package alloc

import (
	"errors"
	"fmt"
)

// ErrOutOfMemory is returned when a buffer cannot be allocated.
var ErrOutOfMemory = errors.New("alloc: out of memory")

// Buffer is an allocated, fixed-length byte region.
type Buffer interface {
	// Bytes returns the backing slice. It is valid until the buffer is freed.
	Bytes() []byte
}

// Allocator allocates, resizes and frees buffers.
type Allocator interface {
	// Alloc returns a zero-filled buffer of size bytes.
	Alloc(size int) (Buffer, error)
	// Realloc returns a buffer of size bytes holding the first min(old, size)
	// bytes of b, zero-filled beyond. On success b is released; on failure b
	// is left intact.
	Realloc(b Buffer, size int) (Buffer, error)
	// Free releases b.
	Free(b Buffer) error
}

// sizer is implemented by buffers that track their own length.
type sizer interface {
	Size() int
}

// Len returns the length of b, treating nil as empty.
func Len(b Buffer) int {
	switch b := b.(type) {
	case nil:
		return 0
	case sizer:
		return b.Size()
	default:
		return len(b.Bytes())
	}
}

// reallocCopy implements Realloc for backends without an in-place resize.
func reallocCopy(a Allocator, b Buffer, size int) (Buffer, error) {
	nb, err := a.Alloc(size)
	if err != nil {
		return nil, err
	}
	if b != nil {
		copy(nb.Bytes(), b.Bytes())
		if err := a.Free(b); err != nil {
			_ = a.Free(nb)
			return nil, err
		}
	}
	return nb, nil
}

func invalidSize(size int) error {
	return fmt.Errorf("%w: invalid size %d", ErrOutOfMemory, size)
}
