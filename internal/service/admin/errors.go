package admin

import "errors"

var (
	ErrSeasonNotFound   = errors.New("season rule not found")
	ErrOverrideNotFound = errors.New("date override not found")
	ErrInvalidRange     = errors.New("invalid date range")
	ErrInvalidRank      = errors.New("invalid season rank")
)
