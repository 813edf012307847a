package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d, err := ParseDate("2026-07-15")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("rejects other layouts", func(t *testing.T) {
		for _, s := range []string{"15-07-2026", "2026/07/15", "2026-7-15", "garbage"} {
			_, err := ParseDate(s)
			assert.Error(t, err, s)
		}
	})
}

func TestDay_TruncatesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	ts := time.Date(2026, 7, 15, 1, 30, 0, 0, loc) // 2026-07-14 22:30 UTC

	assert.Equal(t, time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC), Day(ts))
}

func TestNights(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  string
		checkOut string
		want     int
	}{
		{"two nights", "2026-07-01", "2026-07-03", 2},
		{"one night", "2026-07-01", "2026-07-02", 1},
		{"same day", "2026-07-01", "2026-07-01", 0},
		{"inverted", "2026-07-03", "2026-07-01", -2},
		{"across month boundary", "2026-07-30", "2026-08-02", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := ParseDate(tt.checkIn)
			out, _ := ParseDate(tt.checkOut)
			assert.Equal(t, tt.want, Nights(in, out))
		})
	}
}

func TestEachNight_ExcludesCheckOut(t *testing.T) {
	in, _ := ParseDate("2026-07-30")
	out, _ := ParseDate("2026-08-02")

	nights := EachNight(in, out)
	require.Len(t, nights, 3)
	assert.Equal(t, "2026-07-30", FormatDate(nights[0]))
	assert.Equal(t, "2026-07-31", FormatDate(nights[1]))
	assert.Equal(t, "2026-08-01", FormatDate(nights[2]))

	assert.Nil(t, EachNight(out, in))
}

func TestYearMonth(t *testing.T) {
	t.Run("parse and days", func(t *testing.T) {
		ym, err := ParseYearMonth("2026-02")
		require.NoError(t, err)
		assert.Equal(t, 28, ym.Days())

		leap, _ := ParseYearMonth("2028-02")
		assert.Equal(t, 29, leap.Days())
	})

	t.Run("parse rejects full dates", func(t *testing.T) {
		_, err := ParseYearMonth("2026-02-01")
		assert.Error(t, err)
	})

	t.Run("next wraps the year", func(t *testing.T) {
		assert.Equal(t, YearMonth("2027-01"), YearMonth("2026-12").Next())
	})
}

func TestMonthsInRange(t *testing.T) {
	from, _ := ParseDate("2026-11-15")
	to, _ := ParseDate("2027-01-10")

	months := MonthsInRange(from, to)
	assert.Equal(t, []YearMonth{"2026-11", "2026-12", "2027-01"}, months)

	assert.Equal(t, []YearMonth{"2026-11"}, MonthsInRange(from, from))
	assert.Nil(t, MonthsInRange(to, from))
}

func TestParseWeekday_RoundTrip(t *testing.T) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		got, err := ParseWeekday(WeekdayName(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	_, err := ParseWeekday("Froday")
	assert.Error(t, err)
}
