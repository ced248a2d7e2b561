package alloc

import (
	"errors"
	"fmt"

	"github.com/hupe1980/membuf/internal/mmap"
)

// Mapped allocates buffers in anonymous memory mappings.
type Mapped struct{}

// NewMapped creates an mmap-backed allocator.
func NewMapped() *Mapped {
	return &Mapped{}
}

// Alloc implements Allocator.
func (m *Mapped) Alloc(size int) (Buffer, error) {
	if size <= 0 {
		return nil, invalidSize(size)
	}
	mapping, err := mmap.MapAnon(size)
	if err != nil {
		if errors.Is(err, mmap.ErrNoMemory) {
			return nil, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
		}
		return nil, err
	}
	// Reads and writes land at arbitrary cursors.
	if err := mapping.Advise(mmap.AccessRandom); err != nil {
		_ = mapping.Close()
		return nil, fmt.Errorf("alloc: advising mapping: %w", err)
	}
	return mapping, nil
}

// Realloc implements Allocator.
func (m *Mapped) Realloc(b Buffer, size int) (Buffer, error) {
	return reallocCopy(m, b, size)
}

// Free implements Allocator.
func (m *Mapped) Free(b Buffer) error {
	mapping, ok := b.(*mmap.Mapping)
	if !ok {
		return fmt.Errorf("alloc: buffer %T was not allocated by Mapped", b)
	}
	return mapping.Close()
}
