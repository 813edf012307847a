package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking. Bookings are never
// deleted, only transitioned, so the row history doubles as an audit trail.
type BookingStatus string

const (
	StatusPending       BookingStatus = "pending"
	StatusOnHold        BookingStatus = "on-hold"
	StatusConfirmed     BookingStatus = "confirmed"
	StatusCancelled     BookingStatus = "cancelled"
	StatusCompleted     BookingStatus = "completed"
	StatusPaymentFailed BookingStatus = "payment_failed"
)

// transitions is the allowed state machine:
// pending → on-hold → {confirmed, cancelled}; confirmed → {completed,
// cancelled}; any state → payment_failed on a payment error.
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:       {StatusOnHold, StatusCancelled},
	StatusOnHold:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:     {StatusCompleted, StatusCancelled},
	StatusCancelled:     {},
	StatusCompleted:     {},
	StatusPaymentFailed: {},
}

// AllStatuses lists every booking status in lifecycle order.
var AllStatuses = []BookingStatus{
	StatusPending, StatusOnHold, StatusConfirmed,
	StatusCompleted, StatusCancelled, StatusPaymentFailed,
}

// CanTransition reports whether from → to is a legal status change.
func CanTransition(from, to BookingStatus) bool {
	if to == StatusPaymentFailed {
		return from != StatusPaymentFailed
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusesAllowing returns every status a booking may transition to `to`
// from. Guarded status updates take this as their predecessor set so the
// SQL guard and the state machine cannot drift apart.
func StatusesAllowing(to BookingStatus) []BookingStatus {
	var from []BookingStatus
	for _, s := range AllStatuses {
		if CanTransition(s, to) {
			from = append(from, s)
		}
	}
	return from
}

// Booking is a guest reservation against a property's date range.
// CheckOut is exclusive: the check-out day itself is not occupied.
type Booking struct {
	ID                uuid.UUID
	PropertyID        string
	CheckIn           time.Time
	CheckOut          time.Time
	GuestCount        int
	PricingSnapshot   *Quote
	Status            BookingStatus
	HoldUntil         *time.Time
	ConvertedFromHold bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HoldExpired reports whether an on-hold booking's hold window has lapsed.
func (b Booking) HoldExpired(now time.Time) bool {
	return b.Status == StatusOnHold && b.HoldUntil != nil && !b.HoldUntil.After(now)
}
