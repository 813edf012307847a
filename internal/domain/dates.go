package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC. All calendar math in this package works
// on Day-normalized values.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate renders a time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return Day(t).Format(DateLayout)
}

// Nights is the number of nights between checkIn and checkOut, the
// check-out day itself excluded.
func Nights(checkIn, checkOut time.Time) int {
	return int(Day(checkOut).Sub(Day(checkIn)) / (24 * time.Hour))
}

// EachNight returns every stayed-on date in [checkIn, checkOut).
func EachNight(checkIn, checkOut time.Time) []time.Time {
	n := Nights(checkIn, checkOut)
	if n <= 0 {
		return nil
	}
	nights := make([]time.Time, 0, n)
	for d := Day(checkIn); d.Before(Day(checkOut)); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)
	}
	return nights
}

// YearMonth identifies a calendar month as YYYY-MM.
type YearMonth string

// MonthOf returns the YearMonth containing t.
func MonthOf(t time.Time) YearMonth {
	return YearMonth(t.UTC().Format("2006-01"))
}

// ParseYearMonth validates a YYYY-MM string.
func ParseYearMonth(s string) (YearMonth, error) {
	if _, err := time.ParseInLocation("2006-01", s, time.UTC); err != nil {
		return "", fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return YearMonth(s), nil
}

// First returns midnight UTC of the month's first day.
func (ym YearMonth) First() time.Time {
	t, _ := time.ParseInLocation("2006-01", string(ym), time.UTC)
	return t
}

// Next returns the following month.
func (ym YearMonth) Next() YearMonth {
	return MonthOf(ym.First().AddDate(0, 1, 0))
}

// Days is the number of days in the month.
func (ym YearMonth) Days() int {
	first := ym.First()
	return first.AddDate(0, 1, -1).Day()
}

// MonthsInRange lists every month touched by the inclusive date range.
func MonthsInRange(start, end time.Time) []YearMonth {
	if Day(end).Before(Day(start)) {
		return nil
	}
	var months []YearMonth
	for ym := MonthOf(start); ; ym = ym.Next() {
		months = append(months, ym)
		if ym == MonthOf(end) {
			return months
		}
	}
}

// ParseWeekday maps a lowercase English weekday name to time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	switch name {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// WeekdayName is the inverse of ParseWeekday.
func WeekdayName(d time.Weekday) string {
	switch d {
	case time.Sunday:
		return "sunday"
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	}
	return "saturday"
}
