// Package pricing resolves the guest-facing nightly rate for a single
// calendar date from the layered pricing inputs: date override, season
// rule, weekend adjustment, base price.
package pricing

import (
	"time"

	"github.com/b-coman/prop-management-sub011/internal/domain"
)

// Resolved is the outcome of resolving one date. Rate is always the
// base-occupancy nightly rate; guest-count fees are applied by the quote
// engine, never here.
type Resolved struct {
	Rate        float64
	MinimumStay int
	Source      domain.PriceSource
}

// Resolve runs the precedence pipeline for date, highest tier first:
//
//  1. DateOverride for the date: flat rate, or multiplier on the base price.
//  2. The enabled SeasonRule covering the date with the highest rank; ties
//     go to the narrower range, then to the most recently created rule.
//  3. Weekend adjustment when the weekday is in the config's weekend set.
//  4. The base price unmodified.
//
// The minimum stay follows the same ordering: an override's minimum wins,
// then the selected season's, then the property default.
func Resolve(
	cfg domain.PricingConfig,
	seasons []domain.SeasonRule,
	overrides []domain.DateOverride,
	date time.Time,
) Resolved {
	day := domain.Day(date)
	season := pickSeason(seasons, day)

	minStay := cfg.DefaultMinimumStay
	if season != nil && season.MinimumStay != nil {
		minStay = *season.MinimumStay
	}

	if ov := findOverride(overrides, day); ov != nil {
		if ov.MinimumStay != nil {
			minStay = *ov.MinimumStay
		}
		rate := cfg.BasePricePerNight
		switch {
		case ov.FlatRate != nil:
			rate = *ov.FlatRate
		case ov.PriceMultiplier != nil:
			rate = cfg.BasePricePerNight * *ov.PriceMultiplier
		}
		return Resolved{Rate: rate, MinimumStay: minStay, Source: domain.SourceOverride}
	}

	if season != nil {
		return Resolved{
			Rate:        cfg.BasePricePerNight * season.PriceMultiplier,
			MinimumStay: minStay,
			Source:      domain.SourceSeason,
		}
	}

	if cfg.IsWeekend(day) {
		return Resolved{
			Rate:        cfg.BasePricePerNight * cfg.WeekendMultiplier,
			MinimumStay: minStay,
			Source:      domain.SourceWeekend,
		}
	}

	return Resolved{Rate: cfg.BasePricePerNight, MinimumStay: minStay, Source: domain.SourceBase}
}

// pickSeason selects the winning enabled rule covering day, or nil.
func pickSeason(seasons []domain.SeasonRule, day time.Time) *domain.SeasonRule {
	var winner *domain.SeasonRule
	for i := range seasons {
		r := &seasons[i]
		if !r.Enabled || !r.Covers(day) {
			continue
		}
		if winner == nil || beats(r, winner) {
			winner = r
		}
	}
	return winner
}

// beats reports whether a outranks b: higher rank, then narrower range,
// then most recently created.
func beats(a, b *domain.SeasonRule) bool {
	if a.Rank != b.Rank {
		return a.Rank > b.Rank
	}
	if a.Span() != b.Span() {
		return a.Span() < b.Span()
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func findOverride(overrides []domain.DateOverride, day time.Time) *domain.DateOverride {
	for i := range overrides {
		if domain.Day(overrides[i].Day).Equal(day) {
			return &overrides[i]
		}
	}
	return nil
}
