package repository

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrDatesUnavailable = errors.New("some dates unavailable")
	ErrInvalidStatus    = errors.New("invalid status for transition")
)
