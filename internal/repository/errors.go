// Package repository defines error values that are reused across
// repositories and services. These sentinels let handlers distinguish
// failure scenarios with errors.Is without inspecting message text.
// All of them describe client-addressable conditions; storage errors
// are propagated as-is.
package repository

import (
	"errors"
	"fmt"
)

// ErrScheduleNotFound is returned when a referenced schedule does not
// exist. Handlers should translate this into an HTTP 404 response.
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrScheduleNotBookable is returned when a schedule exists but is not
// in a state that accepts new holds (boarding, departed or cancelled).
// Handlers should translate this into an HTTP 409 response.
var ErrScheduleNotBookable = errors.New("schedule not bookable")

// ErrInsufficientSeats is returned when the requested quantity exceeds
// the seats remaining at the instant the schedule row was locked. Use
// errors.As with *InsufficientSeatsError to recover the counts.
var ErrInsufficientSeats = errors.New("insufficient seats")

// ErrHoldNotFound is returned when a referenced seat hold does not exist.
var ErrHoldNotFound = errors.New("seat hold not found")

// ErrHoldAlreadyReleased is returned when a confirmation is attempted
// against a hold that has already left the held state. The caller must
// treat this as a hard failure: the seats have returned to inventory
// and no ticket may be issued against them.
var ErrHoldAlreadyReleased = errors.New("seat hold already released")

// ErrBookingNotFound is returned when a referenced booking does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrTicketNotFound is returned when a referenced ticket does not exist.
var ErrTicketNotFound = errors.New("ticket not found")

// InsufficientSeatsError carries the remaining seat count alongside the
// ErrInsufficientSeats sentinel so clients can resubmit with a smaller
// quantity.
type InsufficientSeatsError struct {
	ScheduleID string
	Available  int
	Requested  int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("insufficient seats on schedule %s: %d available, %d requested",
		e.ScheduleID, e.Available, e.Requested)
}

// Unwrap makes errors.Is(err, ErrInsufficientSeats) hold for any
// InsufficientSeatsError.
func (e *InsufficientSeatsError) Unwrap() error { return ErrInsufficientSeats }
