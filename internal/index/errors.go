package index

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupt is matched by every CorruptError.
	ErrCorrupt = errors.New("index corrupt")

	// ErrDimensionMismatch is returned when a vector's length differs from
	// the index dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidVector is returned for empty, zero or non-finite vectors.
	ErrInvalidVector = errors.New("invalid vector")
)

// CorruptError describes why a persisted index could not be decoded.
type CorruptError struct {
	Name   string
	Reason string
	Err    error
}

func (e *CorruptError) Error() string {
	msg := fmt.Sprintf("index %q corrupt: %s", e.Name, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptError) Is(target error) bool { return target == ErrCorrupt }

func (e *CorruptError) Unwrap() error { return e.Err }

func corrupt(reason string, err error) *CorruptError {
	return &CorruptError{Reason: reason, Err: err}
}

func dimensionError(want, got int) error {
	return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, want, got)
}
