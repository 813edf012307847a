package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b-coman/prop-management-sub011/internal/domain"
)

func quoteConfig() domain.PricingConfig {
	return domain.PricingConfig{
		PropertyID:            "villa-aurora",
		BasePricePerNight:     523,
		BaseOccupancy:         4,
		ExtraGuestFeePerNight: 25,
		CleaningFee:           200,
		WeekendMultiplier:     1.3155,
		WeekendDays:           []time.Weekday{time.Friday, time.Saturday},
		DefaultMinimumStay:    1,
		Currency:              "EUR",
		LOSDiscountNights:     7,
		LOSDiscountPercent:    5,
	}
}

func baseNights(start string, n int) []NightRate {
	first := date(start)
	nights := make([]NightRate, 0, n)
	for i := 0; i < n; i++ {
		nights = append(nights, NightRate{Date: first.AddDate(0, 0, i), Rate: 523})
	}
	return nights
}

func TestBuildQuote_TwoNightWeekdayStay(t *testing.T) {
	cfg := quoteConfig()
	now := time.Now()

	q := BuildQuote(cfg, baseNights("2026-03-02", 2), 4, nil, now)

	assert.Equal(t, 2, q.NumberOfNights)
	assert.InDelta(t, 1046, q.AccommodationTotal, 1e-9)
	assert.InDelta(t, 200, q.CleaningFee, 1e-9)
	assert.InDelta(t, 1246, q.Subtotal, 1e-9)
	assert.InDelta(t, 0, q.LengthOfStayDiscount, 1e-9)
	assert.InDelta(t, 0, q.CouponDiscount, 1e-9)
	assert.InDelta(t, 1246, q.Total, 1e-9)
	assert.Equal(t, "EUR", q.Currency)
}

func TestBuildQuote_ExtraGuestsFoldedIntoDailyRates(t *testing.T) {
	cfg := quoteConfig()
	now := time.Now()

	// 6 guests, base occupancy 4: two extra guests at 25/night each.
	q := BuildQuote(cfg, baseNights("2026-03-02", 2), 6, nil, now)

	require.Len(t, q.DailyRates, 2)
	var sum float64
	for _, r := range q.DailyRates {
		assert.InDelta(t, 573, r, 1e-9)
		sum += r
	}
	assert.InDelta(t, sum, q.AccommodationTotal, 1e-9)
	assert.InDelta(t, q.AccommodationTotal+q.CleaningFee, q.Subtotal, 1e-9)
	assert.InDelta(t, 1346, q.Total, 1e-9)
}

func TestBuildQuote_FewerGuestsThanBaseOccupancy(t *testing.T) {
	cfg := quoteConfig()

	q := BuildQuote(cfg, baseNights("2026-03-02", 2), 1, nil, time.Now())

	assert.InDelta(t, 1246, q.Total, 1e-9)
}

func TestBuildQuote_LengthOfStayDiscount(t *testing.T) {
	cfg := quoteConfig()
	now := time.Now()

	t.Run("seven nights gets five percent of subtotal", func(t *testing.T) {
		q := BuildQuote(cfg, baseNights("2026-03-02", 7), 4, nil, now)

		assert.InDelta(t, 3661, q.AccommodationTotal, 1e-9)
		assert.InDelta(t, 3861, q.Subtotal, 1e-9)
		assert.InDelta(t, 193.05, q.LengthOfStayDiscount, 1e-9)
		assert.InDelta(t, 3667.95, q.Total, 1e-9)
	})

	t.Run("six nights gets nothing", func(t *testing.T) {
		q := BuildQuote(cfg, baseNights("2026-03-02", 6), 4, nil, now)

		assert.InDelta(t, 0, q.LengthOfStayDiscount, 1e-9)
		assert.InDelta(t, q.Subtotal, q.Total, 1e-9)
	})

	t.Run("unconfigured policy defaults to seven nights at five percent", func(t *testing.T) {
		bare := cfg
		bare.LOSDiscountNights = 0
		bare.LOSDiscountPercent = 0

		q := BuildQuote(bare, baseNights("2026-03-02", 7), 4, nil, now)

		assert.InDelta(t, 193.05, q.LengthOfStayDiscount, 1e-9)
		assert.InDelta(t, 3667.95, q.Total, 1e-9)
	})

	t.Run("explicit zero percent disables the discount", func(t *testing.T) {
		off := cfg
		off.LOSDiscountPercent = 0

		q := BuildQuote(off, baseNights("2026-03-02", 7), 4, nil, now)

		assert.InDelta(t, 0, q.LengthOfStayDiscount, 1e-9)
		assert.InDelta(t, q.Subtotal, q.Total, 1e-9)
	})
}

func TestBuildQuote_CouponDiscount(t *testing.T) {
	cfg := quoteConfig()
	now := date("2026-02-01")

	coupon := &domain.Coupon{
		Code:       "SPRING10",
		PropertyID: cfg.PropertyID,
		Percent:    10,
		ValidFrom:  date("2026-01-01"),
		ValidUntil: date("2026-12-31"),
		Active:     true,
	}

	t.Run("additive with the length-of-stay discount", func(t *testing.T) {
		// Both discounts are cut from the same pre-discount subtotal, so a
		// 5% and a 10% never compound.
		q := BuildQuote(cfg, baseNights("2026-03-02", 7), 4, coupon, now)

		assert.InDelta(t, 193.05, q.LengthOfStayDiscount, 1e-9)
		assert.InDelta(t, 386.10, q.CouponDiscount, 1e-9)
		assert.InDelta(t, 3861-193.05-386.10, q.Total, 1e-9)
	})

	t.Run("expired coupon contributes nothing", func(t *testing.T) {
		expired := *coupon
		expired.ValidUntil = date("2026-01-31")

		q := BuildQuote(cfg, baseNights("2026-03-02", 2), 4, &expired, now)
		assert.InDelta(t, 0, q.CouponDiscount, 1e-9)
	})

	t.Run("inactive coupon contributes nothing", func(t *testing.T) {
		inactive := *coupon
		inactive.Active = false

		q := BuildQuote(cfg, baseNights("2026-03-02", 2), 4, &inactive, now)
		assert.InDelta(t, 0, q.CouponDiscount, 1e-9)
	})

	t.Run("check-in inside an excluded range contributes nothing", func(t *testing.T) {
		blocked := *coupon
		blocked.Excluded = []domain.DateRange{
			{Start: date("2026-03-01"), End: date("2026-03-10")},
		}

		q := BuildQuote(cfg, baseNights("2026-03-02", 2), 4, &blocked, now)
		assert.InDelta(t, 0, q.CouponDiscount, 1e-9)
	})
}

func TestBuildQuote_TotalNeverNegative(t *testing.T) {
	cfg := quoteConfig()

	coupon := &domain.Coupon{
		Code: "BROKEN", PropertyID: cfg.PropertyID, Percent: 200,
		ValidFrom: date("2026-01-01"), ValidUntil: date("2026-12-31"),
		Active: true,
	}

	q := BuildQuote(cfg, baseNights("2026-03-02", 2), 4, coupon, date("2026-02-01"))
	assert.InDelta(t, 0, q.Total, 1e-9)
}

func TestBuildQuote_DailyRatesKeyedByDate(t *testing.T) {
	cfg := quoteConfig()

	q := BuildQuote(cfg, baseNights("2026-03-02", 3), 4, nil, time.Now())

	require.Len(t, q.DailyRates, 3)
	for _, day := range []string{"2026-03-02", "2026-03-03", "2026-03-04"} {
		assert.Contains(t, q.DailyRates, day)
	}
}
