package membuf

import (
	"errors"
	"fmt"

	"github.com/hupe1980/membuf/internal/alloc"
)

var (
	// ErrInvalidArgument is returned for configuration text that does not parse
	// as an unsigned decimal, and for invalid constructor options.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange is returned when a size or count lies outside its bounds.
	ErrOutOfRange = errors.New("value out of range")

	// ErrOutOfMemory is returned when a buffer or handle record cannot be allocated.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrStaleHandle is returned when the resource a handle was opened against
	// has been destroyed, even if a new resource now occupies the same id.
	ErrStaleHandle = errors.New("stale handle")

	// ErrNoSpace is returned when a write starts at or past the end of a buffer.
	ErrNoSpace = errors.New("no space left in buffer")

	// ErrNotAllocated is returned when opening or resizing a slot that holds no resource.
	ErrNotAllocated = errors.New("resource not allocated")

	// ErrClosed is returned when using a closed handle or a torn-down pool.
	ErrClosed = errors.New("closed")
)

// RangeError reports a value outside its permitted bounds.
//
// errors.Is(err, ErrOutOfRange) reports true for a *RangeError.
type RangeError struct {
	Name  string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Name, e.Value, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// StaleHandleError reports a generation mismatch between a handle and its slot.
//
// errors.Is(err, ErrStaleHandle) reports true for a *StaleHandleError.
type StaleHandleError struct {
	ResourceID int
	Observed   uint64
	Current    uint64
}

func (e *StaleHandleError) Error() string {
	return fmt.Sprintf("stale handle: resource %d opened at generation %d, now at generation %d",
		e.ResourceID, e.Observed, e.Current)
}

func (e *StaleHandleError) Unwrap() error { return ErrStaleHandle }

// GrowthError reports a pool growth that stopped at the first failed creation.
//
// Resources created before the failure are kept; Active is the count the
// pool reached. The original underlying error can be accessed via errors.Unwrap.
type GrowthError struct {
	Target int
	Active int
	cause  error
}

func (e *GrowthError) Error() string {
	return fmt.Sprintf("grow to %d resources stopped at %d: %v", e.Target, e.Active, e.cause)
}

func (e *GrowthError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, alloc.ErrOutOfMemory) {
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}

	return err
}
