package calendar

import "errors"

var (
	ErrConfigMissing = errors.New("property has no pricing config")
	ErrMonthNotFound = errors.New("calendar month not materialized")
)
