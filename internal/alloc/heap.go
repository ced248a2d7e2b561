package alloc

import (
	"fmt"
	"runtime"
)

type heapBuffer []byte

func (b heapBuffer) Bytes() []byte { return b }

// Heap allocates buffers on the Go heap.
type Heap struct{}

// NewHeap creates a heap allocator.
func NewHeap() *Heap {
	return &Heap{}
}

// Alloc implements Allocator.
func (h *Heap) Alloc(size int) (buf Buffer, err error) {
	if size <= 0 {
		return nil, invalidSize(size)
	}
	// make panics with a runtime error when the length cannot be satisfied.
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(runtime.Error); ok {
				buf, err = nil, fmt.Errorf("%w: %d bytes: %v", ErrOutOfMemory, size, re)
				return
			}
			panic(r)
		}
	}()
	return heapBuffer(make([]byte, size)), nil
}

// Realloc implements Allocator.
func (h *Heap) Realloc(b Buffer, size int) (Buffer, error) {
	return reallocCopy(h, b, size)
}

// Free implements Allocator. Heap memory is reclaimed by the garbage collector.
func (h *Heap) Free(Buffer) error {
	return nil
}
