package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no booking matches the requested
	// reference ID. A normal outcome, not a fault.
	ErrNotFound = errors.New("booking not found")

	// ErrInvalidInput marks validation failures on caller-supplied data.
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidTransitionError reports a status change not permitted by the
// lifecycle table.
type InvalidTransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}
