package repository

import "errors"

var (
	ErrFlightNotFound  = errors.New("flight not found")
	ErrBookingNotFound = errors.New("booking not found")
	// ErrVersionConflict means the seat inventory changed since it was read.
	ErrVersionConflict = errors.New("seat inventory version conflict")
	// ErrStaleBooking means the stored booking already left the CONFIRMED state.
	ErrStaleBooking = errors.New("booking is no longer confirmed")
)
