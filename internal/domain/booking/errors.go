package booking

import "errors"

var (
	// ErrBookingActive indicates a booking is already in progress.
	ErrBookingActive = errors.New("a booking is already active, complete it first")
	// ErrBookingNotFound indicates the booking doesn't exist.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrInvalidState indicates the operation is not legal for the
	// booking's current status.
	ErrInvalidState = errors.New("operation not allowed in current booking state")
	// ErrInvalidInput indicates invalid booking input.
	ErrInvalidInput = errors.New("invalid booking input")
)
