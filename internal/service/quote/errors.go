package quote

import "errors"

var (
	ErrConfigMissing = errors.New("property has no pricing config")
	ErrInvalidRange  = errors.New("invalid date range")
	ErrInvalidGuests = errors.New("guest count must be positive")
)
