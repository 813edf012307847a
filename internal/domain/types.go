package domain

import (
	"time"

	"github.com/google/uuid"
)

// PriceSource records which pricing tier produced a resolved nightly rate.
type PriceSource string

const (
	SourceBase     PriceSource = "base"
	SourceWeekend  PriceSource = "weekend"
	SourceSeason   PriceSource = "season"
	SourceOverride PriceSource = "override"
)

// SeasonRank orders overlapping season rules; a higher rank wins.
type SeasonRank int

const (
	RankMinimum  SeasonRank = 1
	RankLow      SeasonRank = 2
	RankStandard SeasonRank = 3
	RankMedium   SeasonRank = 4
	RankHigh     SeasonRank = 5
)

// PricingConfig is the per-property pricing policy. It is mutated only
// through admin updates and is treated as immutable during a single
// resolution pass.
type PricingConfig struct {
	PropertyID            string
	BasePricePerNight     float64
	BaseOccupancy         int
	ExtraGuestFeePerNight float64
	CleaningFee           float64
	WeekendMultiplier     float64
	WeekendDays           []time.Weekday
	DefaultMinimumStay    int
	Currency              string
	HoldDurationHours     int
	LOSDiscountNights     int
	LOSDiscountPercent    float64
}

// Default length-of-stay discount policy, used when a property's config
// does not set its own threshold.
const (
	DefaultLOSDiscountNights  = 7
	DefaultLOSDiscountPercent = 5.0
)

// LOSDiscount returns the effective length-of-stay discount policy. A zero
// threshold means the property never configured one and gets the default
// policy; an explicit threshold with a zero percent disables the discount.
func (c PricingConfig) LOSDiscount() (nights int, percent float64) {
	if c.LOSDiscountNights <= 0 {
		return DefaultLOSDiscountNights, DefaultLOSDiscountPercent
	}
	return c.LOSDiscountNights, c.LOSDiscountPercent
}

// IsWeekend reports whether the date's weekday is one of the configured
// weekend days.
func (c PricingConfig) IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	for _, d := range c.WeekendDays {
		if d == wd {
			return true
		}
	}
	return false
}

// SeasonRule is a date-range price multiplier. StartDate and EndDate are
// inclusive calendar dates.
type SeasonRule struct {
	ID              int64
	PropertyID      string
	Name            string
	StartDate       time.Time
	EndDate         time.Time
	PriceMultiplier float64
	MinimumStay     *int
	Enabled         bool
	Rank            SeasonRank
	CreatedAt       time.Time
}

// Covers reports whether the rule's inclusive date range contains date.
func (r SeasonRule) Covers(date time.Time) bool {
	d := Day(date)
	return !d.Before(Day(r.StartDate)) && !d.After(Day(r.EndDate))
}

// Span is the number of days the rule covers, used to break rank ties in
// favor of the narrower rule.
func (r SeasonRule) Span() int {
	return int(Day(r.EndDate).Sub(Day(r.StartDate))/(24*time.Hour)) + 1
}

// DateOverride is a single-date pricing/availability exception. It has the
// highest precedence of all pricing inputs; at most one exists per
// (property, date).
type DateOverride struct {
	ID              int64
	PropertyID      string
	Day             time.Time
	FlatRate        *float64
	PriceMultiplier *float64
	Available       *bool
	MinimumStay     *int
}

// DayPrice is one resolved day inside a materialized price calendar.
type DayPrice struct {
	Available bool    `json:"available"`
	BasePrice float64 `json:"base_price"`
	// AdjustedPrice and BaseOccupancyPrice both carry the resolved
	// base-occupancy rate; they are separate fields in the persisted
	// document because calendar consumers read them for different
	// purposes (display price vs fee calculation input).
	AdjustedPrice      float64     `json:"adjusted_price"`
	BaseOccupancyPrice float64     `json:"base_occupancy_price"`
	MinimumStay        int         `json:"minimum_stay"`
	Source             PriceSource `json:"source"`
}

// CalendarSummary aggregates a materialized month for admin dashboards.
type CalendarSummary struct {
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	AvgPrice         float64 `json:"avg_price"`
	UnavailableDays  int     `json:"unavailable_days"`
	ModifiedDays     int     `json:"modified_days"`
	HasSeasonalRates bool    `json:"has_seasonal_rates"`
	HasCustomPrices  bool    `json:"has_custom_prices"`
}

// PriceCalendarMonth is the precomputed month of resolved rates. It is a
// derived cache over PricingConfig, SeasonRule, DateOverride and the
// availability ledger; it is disposable and regenerable at any time and is
// never authoritative for booking decisions.
type PriceCalendarMonth struct {
	PropertyID  string           `json:"property_id"`
	Month       YearMonth        `json:"month"`
	Days        map[int]DayPrice `json:"days"`
	Summary     CalendarSummary  `json:"summary"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// DayStatus is the ledger state of a single property day. Days without a
// ledger row are implicitly available.
type DayStatus struct {
	Day              time.Time
	Available        bool
	HoldRef          *uuid.UUID
	ExternalBlockRef *string
}

// Quote is the priced result of a successful quote request. DailyRates are
// per-night totals for the requested guest count (base-occupancy rate plus
// extra-guest fees), keyed by YYYY-MM-DD.
type Quote struct {
	DailyRates           map[string]float64 `json:"dailyRates"`
	NumberOfNights       int                `json:"numberOfNights"`
	AccommodationTotal   float64            `json:"accommodationTotal"`
	CleaningFee          float64            `json:"cleaningFee"`
	Subtotal             float64            `json:"subtotal"`
	LengthOfStayDiscount float64            `json:"lengthOfStayDiscount"`
	CouponDiscount       float64            `json:"couponDiscount"`
	Total                float64            `json:"total"`
	Currency             string             `json:"currency"`
}

// RefusalReason classifies the expected, recoverable ways a quote is turned
// down. Refusals are ordinary outcomes of the booking flow, not errors.
type RefusalReason string

const (
	RefusalUnavailableDates RefusalReason = "unavailable_dates"
	RefusalMinimumStay      RefusalReason = "minimum_stay"
)

// Refusal is a structured quote rejection.
type Refusal struct {
	Reason           RefusalReason `json:"reason"`
	UnavailableDates []string      `json:"unavailableDates,omitempty"`
	MinimumStay      int           `json:"minimumStay,omitempty"`
}

// QuoteResult is a tagged union: exactly one of Quote or Refusal is set.
type QuoteResult struct {
	Available bool
	Quote     *Quote
	Refusal   *Refusal
}

// Coupon is a percentage discount code with a validity window and excluded
// stay periods.
type Coupon struct {
	Code       string
	PropertyID string
	Percent    float64
	ValidFrom  time.Time
	ValidUntil time.Time
	Excluded   []DateRange
	Active     bool
}

// AppliesTo reports whether the coupon can discount a stay starting at
// checkIn, evaluated at time now.
func (c Coupon) AppliesTo(checkIn, now time.Time) bool {
	if !c.Active || c.Percent <= 0 {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return false
	}
	for _, r := range c.Excluded {
		if r.Contains(checkIn) {
			return false
		}
	}
	return true
}

// DateRange is an inclusive calendar date range.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether date falls inside the inclusive range.
func (r DateRange) Contains(date time.Time) bool {
	d := Day(date)
	return !d.Before(Day(r.Start)) && !d.After(Day(r.End))
}
