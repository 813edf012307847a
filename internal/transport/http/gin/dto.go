package httpgin

import (
	"time"

	"github.com/b-coman/prop-management-sub011/internal/domain"
)

type QuoteRequest struct {
	PropertyID string `json:"propertyId" binding:"required"`
	CheckIn    string `json:"checkIn" binding:"required"`
	CheckOut   string `json:"checkOut" binding:"required"`
	GuestCount int    `json:"guestCount" binding:"required,gt=0"`
	CouponCode string `json:"couponCode"`
}

// QuoteResponse carries either the pricing block (available=true) or the
// refusal fields (available=false), never both.
type QuoteResponse struct {
	Available        bool          `json:"available"`
	Pricing          *domain.Quote `json:"pricing,omitempty"`
	Reason           string        `json:"reason,omitempty"`
	UnavailableDates []string      `json:"unavailableDates,omitempty"`
	MinimumStay      int           `json:"minimumStay,omitempty"`
}

type CreateHoldRequest struct {
	PropertyID string `json:"propertyId" binding:"required"`
	CheckIn    string `json:"checkIn" binding:"required"`
	CheckOut   string `json:"checkOut" binding:"required"`
	GuestCount int    `json:"guestCount" binding:"required,gt=0"`
	CouponCode string `json:"couponCode"`
}

type BookingResponse struct {
	ID                string        `json:"id"`
	PropertyID        string        `json:"propertyId"`
	CheckIn           string        `json:"checkIn"`
	CheckOut          string        `json:"checkOut"`
	GuestCount        int           `json:"guestCount"`
	Status            string        `json:"status"`
	HoldUntil         *time.Time    `json:"holdUntil,omitempty"`
	ConvertedFromHold bool          `json:"convertedFromHold"`
	Pricing           *domain.Quote `json:"pricing,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:                b.ID.String(),
		PropertyID:        b.PropertyID,
		CheckIn:           domain.FormatDate(b.CheckIn),
		CheckOut:          domain.FormatDate(b.CheckOut),
		GuestCount:        b.GuestCount,
		Status:            string(b.Status),
		HoldUntil:         b.HoldUntil,
		ConvertedFromHold: b.ConvertedFromHold,
		Pricing:           b.PricingSnapshot,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

type PricingConfigRequest struct {
	BasePricePerNight     float64  `json:"basePricePerNight" binding:"required,gt=0"`
	BaseOccupancy         int      `json:"baseOccupancy" binding:"required,gt=0"`
	ExtraGuestFeePerNight float64  `json:"extraGuestFeePerNight"`
	CleaningFee           float64  `json:"cleaningFee"`
	WeekendMultiplier     float64  `json:"weekendAdjustmentMultiplier"`
	WeekendDays           []string `json:"weekendDays"`
	DefaultMinimumStay    int      `json:"defaultMinimumStay"`
	Currency              string   `json:"currency" binding:"required"`
	HoldDurationHours     int      `json:"holdDurationHours"`
	LOSDiscountNights     int      `json:"lengthOfStayDiscountNights"`
	LOSDiscountPercent    float64  `json:"lengthOfStayDiscountPercent"`
}

type SeasonRequest struct {
	Name            string  `json:"name" binding:"required"`
	StartDate       string  `json:"startDate" binding:"required"`
	EndDate         string  `json:"endDate" binding:"required"`
	PriceMultiplier float64 `json:"priceMultiplier" binding:"required,gt=0"`
	MinimumStay     *int    `json:"minimumStay"`
	Enabled         *bool   `json:"enabled"`
	Rank            int     `json:"rank" binding:"required,min=1,max=5"`
}

type SeasonResponse struct {
	ID              int64   `json:"id"`
	PropertyID      string  `json:"propertyId"`
	Name            string  `json:"name"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	PriceMultiplier float64 `json:"priceMultiplier"`
	MinimumStay     *int    `json:"minimumStay,omitempty"`
	Enabled         bool    `json:"enabled"`
	Rank            int     `json:"rank"`
}

func toSeasonResponse(r domain.SeasonRule) SeasonResponse {
	return SeasonResponse{
		ID:              r.ID,
		PropertyID:      r.PropertyID,
		Name:            r.Name,
		StartDate:       domain.FormatDate(r.StartDate),
		EndDate:         domain.FormatDate(r.EndDate),
		PriceMultiplier: r.PriceMultiplier,
		MinimumStay:     r.MinimumStay,
		Enabled:         r.Enabled,
		Rank:            int(r.Rank),
	}
}

type OverrideRequest struct {
	Date            string   `json:"date" binding:"required"`
	FlatRate        *float64 `json:"flatRate"`
	PriceMultiplier *float64 `json:"priceMultiplier"`
	Available       *bool    `json:"available"`
	MinimumStay     *int     `json:"minimumStay"`
}

type RegenerateCalendarRequest struct {
	MonthsAhead int `json:"monthsAhead"`
}

type RegenerateCalendarResponse struct {
	Months int `json:"months"`
}

type ExtendHoldRequest struct {
	Hours int `json:"hours" binding:"required,gt=0"`
}

type DayStatusResponse struct {
	Day              string  `json:"day"`
	Available        bool    `json:"available"`
	HoldRef          *string `json:"holdRef,omitempty"`
	ExternalBlockRef *string `json:"externalBlockRef,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
