package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is returned when a recorder buffer would have to grow
	// past its hard ceiling. It means the sample width or the run length is
	// misconfigured; the run cannot continue.
	ErrCapacityExceeded = errors.New("recorder capacity exceeded")

	// ErrInvalidQuantity is returned by Pool entry points for quantities <= 0.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidPoolSize is returned when a pool would end up with no bins.
	ErrInvalidPoolSize = errors.New("pool size must be at least 1")
)

// CapacityError reports which recorder buffer overflowed and how far.
type CapacityError struct {
	Buffer string // buffer name, e.g. "events"
	Index  int    // index that was requested
	Limit  int    // hard ceiling
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s buffer: index %d exceeds ceiling %d: %v", e.Buffer, e.Index, e.Limit, ErrCapacityExceeded)
}

// Unwrap lets errors.Is match ErrCapacityExceeded.
func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// ErrUnknownBin is returned when a caller names a bin id the pool does not have.
var ErrUnknownBin = errors.New("unknown bin id")
