package pricing

import (
	"math"
	"time"

	"github.com/b-coman/prop-management-sub011/internal/domain"
)

// BuildMonth materializes one price calendar month from the pricing inputs
// and the ledger's availability view. blocked holds the day-of-month
// numbers the ledger reports as unavailable. The result is deterministic
// for fixed inputs apart from GeneratedAt, which makes re-materialization
// idempotent.
func BuildMonth(
	cfg domain.PricingConfig,
	seasons []domain.SeasonRule,
	overrides []domain.DateOverride,
	blocked map[int]bool,
	month domain.YearMonth,
	now time.Time,
) domain.PriceCalendarMonth {
	days := make(map[int]domain.DayPrice, month.Days())
	summary := domain.CalendarSummary{MinPrice: math.MaxFloat64}

	first := month.First()
	for d := 1; d <= month.Days(); d++ {
		date := first.AddDate(0, 0, d-1)
		res := Resolve(cfg, seasons, overrides, date)

		available := !blocked[d]
		if ov := findOverride(overrides, date); ov != nil && ov.Available != nil {
			// An explicit override block wins over an otherwise open ledger
			// day; an explicit unblock does not reopen a ledger-blocked one.
			if !*ov.Available {
				available = false
			}
		}

		days[d] = domain.DayPrice{
			Available:          available,
			BasePrice:          cfg.BasePricePerNight,
			AdjustedPrice:      res.Rate,
			BaseOccupancyPrice: res.Rate,
			MinimumStay:        res.MinimumStay,
			Source:             res.Source,
		}

		if res.Rate < summary.MinPrice {
			summary.MinPrice = res.Rate
		}
		if res.Rate > summary.MaxPrice {
			summary.MaxPrice = res.Rate
		}
		summary.AvgPrice += res.Rate
		if !available {
			summary.UnavailableDays++
		}
		switch res.Source {
		case domain.SourceSeason:
			summary.ModifiedDays++
			summary.HasSeasonalRates = true
		case domain.SourceOverride:
			summary.ModifiedDays++
			summary.HasCustomPrices = true
		case domain.SourceWeekend:
			summary.ModifiedDays++
		}
	}

	summary.AvgPrice = roundCents(summary.AvgPrice / float64(month.Days()))
	if summary.MinPrice == math.MaxFloat64 {
		summary.MinPrice = 0
	}

	return domain.PriceCalendarMonth{
		PropertyID:  cfg.PropertyID,
		Month:       month,
		Days:        days,
		Summary:     summary,
		GeneratedAt: now.UTC(),
	}
}

// roundCents rounds to two decimal places for presentation fields.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
