package pricing

import (
	"time"

	"github.com/b-coman/prop-management-sub011/internal/domain"
)

// NightRate is one night of a stay with its resolved base-occupancy rate.
type NightRate struct {
	Date time.Time
	Rate float64
}

// BuildQuote prices a stay from per-night base-occupancy rates.
//
// Each daily rate is the base-occupancy rate plus the per-night extra-guest
// fee for guests above base occupancy. The cleaning fee is charged once.
// The length-of-stay discount applies when the stay reaches the property's
// night threshold (7 nights at 5% unless the property configures its own
// policy); the coupon discount, when given, is a
// percentage of the same pre-discount subtotal, so the two discounts are
// additive and never compound. The total is clamped to zero from below.
func BuildQuote(
	cfg domain.PricingConfig,
	nights []NightRate,
	guestCount int,
	coupon *domain.Coupon,
	now time.Time,
) domain.Quote {
	extraGuests := guestCount - cfg.BaseOccupancy
	if extraGuests < 0 {
		extraGuests = 0
	}
	extraPerNight := cfg.ExtraGuestFeePerNight * float64(extraGuests)

	daily := make(map[string]float64, len(nights))
	var accommodation float64
	for _, n := range nights {
		rate := roundCents(n.Rate + extraPerNight)
		daily[domain.FormatDate(n.Date)] = rate
		accommodation += rate
	}
	accommodation = roundCents(accommodation)

	subtotal := roundCents(accommodation + cfg.CleaningFee)

	var losDiscount float64
	if losNights, losPercent := cfg.LOSDiscount(); losPercent > 0 && len(nights) >= losNights {
		losDiscount = roundCents(subtotal * losPercent / 100)
	}

	var couponDiscount float64
	if coupon != nil && len(nights) > 0 && coupon.AppliesTo(nights[0].Date, now) {
		couponDiscount = roundCents(subtotal * coupon.Percent / 100)
	}

	total := roundCents(subtotal - losDiscount - couponDiscount)
	if total < 0 {
		total = 0
	}

	return domain.Quote{
		DailyRates:           daily,
		NumberOfNights:       len(nights),
		AccommodationTotal:   accommodation,
		CleaningFee:          cfg.CleaningFee,
		Subtotal:             subtotal,
		LengthOfStayDiscount: losDiscount,
		CouponDiscount:       couponDiscount,
		Total:                total,
		Currency:             cfg.Currency,
	}
}
