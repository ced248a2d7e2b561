// Package alloc provides the buffer allocators behind resource storage.
//
// An Allocator hands out zero-filled buffers, reallocates them while keeping
// their prefix, and frees them. Two backends exist:
//
//   - Heap: ordinary Go slices
//   - Mapped: anonymous memory mappings outside the Go heap (see internal/mmap)
//
// Budgeted decorates either backend with a resource.Controller so that every
// byte held by a buffer is accounted against an optional hard limit. All
// allocation failures, whether from the budget or from the operating system,
// satisfy errors.Is(err, ErrOutOfMemory).
//
// Realloc gives the strong guarantee: when it fails, the buffer passed in is
// untouched and still owned by the caller.
package alloc
