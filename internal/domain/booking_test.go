package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{StatusPending, StatusOnHold, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusConfirmed, false},
		{StatusOnHold, StatusConfirmed, true},
		{StatusOnHold, StatusCancelled, true},
		{StatusOnHold, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusOnHold, false},
		{StatusCancelled, StatusOnHold, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+" to "+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCanTransition_PaymentFailed(t *testing.T) {
	// A payment error can interrupt any live state.
	for _, from := range []BookingStatus{
		StatusPending, StatusOnHold, StatusConfirmed, StatusCancelled, StatusCompleted,
	} {
		assert.True(t, CanTransition(from, StatusPaymentFailed), string(from))
	}

	assert.False(t, CanTransition(StatusPaymentFailed, StatusPaymentFailed))
	assert.False(t, CanTransition(StatusPaymentFailed, StatusConfirmed))
}

func TestStatusesAllowing(t *testing.T) {
	assert.ElementsMatch(t,
		[]BookingStatus{StatusPending, StatusOnHold, StatusConfirmed},
		StatusesAllowing(StatusCancelled))
	assert.ElementsMatch(t,
		[]BookingStatus{StatusConfirmed},
		StatusesAllowing(StatusCompleted))
	assert.ElementsMatch(t,
		[]BookingStatus{
			StatusPending, StatusOnHold, StatusConfirmed,
			StatusCompleted, StatusCancelled,
		},
		StatusesAllowing(StatusPaymentFailed))
	assert.Empty(t, StatusesAllowing(StatusPending))
}

func TestHoldExpired(t *testing.T) {
	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		b    Booking
		want bool
	}{
		{"on hold, deadline passed", Booking{Status: StatusOnHold, HoldUntil: &past}, true},
		{"on hold, deadline exactly now", Booking{Status: StatusOnHold, HoldUntil: &now}, true},
		{"on hold, deadline ahead", Booking{Status: StatusOnHold, HoldUntil: &future}, false},
		{"on hold, no deadline", Booking{Status: StatusOnHold}, false},
		{"confirmed, deadline passed", Booking{Status: StatusConfirmed, HoldUntil: &past}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.b.HoldExpired(now))
		})
	}
}
