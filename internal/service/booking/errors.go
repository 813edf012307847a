package booking

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrNotOnHold       = errors.New("booking is not on hold")
	ErrInvalidStatus   = errors.New("booking status does not allow this transition")
	ErrHoldConflict    = errors.New("conflict creating hold")
	ErrRateLimited     = errors.New("rate limited")
)
