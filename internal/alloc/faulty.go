package alloc

import (
	"errors"
	"sync"
)

// ErrInjected is the default error returned by Faulty.
var ErrInjected = errors.New("alloc: injected fault")

// Fault describes when a Faulty allocator fails.
type Fault struct {
	// FailAfter lets this many Alloc and Realloc calls succeed, then fails
	// the rest. -1 disables.
	FailAfter int
	// FailOnFree makes Free release the buffer and report Err.
	FailOnFree bool
	// Err is the injected error. Nil means ErrOutOfMemory for allocations
	// and ErrInjected for Free.
	Err error
}

// Faulty wraps an Allocator and injects failures.
type Faulty struct {
	inner Allocator

	mu    sync.Mutex
	fault Fault
	calls int
}

// NewFaulty wraps inner with no faults armed.
func NewFaulty(inner Allocator) *Faulty {
	return &Faulty{inner: inner, fault: Fault{FailAfter: -1}}
}

// Set arms fault and resets the call counter.
func (f *Faulty) Set(fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fault = fault
	f.calls = 0
}

func (f *Faulty) allocErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fault.FailAfter < 0 {
		return nil
	}
	if f.calls >= f.fault.FailAfter {
		if f.fault.Err != nil {
			return f.fault.Err
		}
		return ErrOutOfMemory
	}
	f.calls++
	return nil
}

// Alloc implements Allocator.
func (f *Faulty) Alloc(size int) (Buffer, error) {
	if err := f.allocErr(); err != nil {
		return nil, err
	}
	return f.inner.Alloc(size)
}

// Realloc implements Allocator.
func (f *Faulty) Realloc(b Buffer, size int) (Buffer, error) {
	if err := f.allocErr(); err != nil {
		return nil, err
	}
	return f.inner.Realloc(b, size)
}

// Free implements Allocator.
func (f *Faulty) Free(b Buffer) error {
	err := f.inner.Free(b)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err == nil && f.fault.FailOnFree {
		err = ErrInjected
		if f.fault.Err != nil {
			err = f.fault.Err
		}
	}
	return err
}
