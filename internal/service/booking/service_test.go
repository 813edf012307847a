package booking

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b-coman/prop-management-sub011/internal/domain"
	postgresrepo "github.com/b-coman/prop-management-sub011/internal/repository/postgres"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var bookingTestColumns = []string{
	"id", "property_id", "check_in", "check_out", "guest_count",
	"pricing_snapshot", "status", "hold_until", "converted_from_hold",
	"created_at", "updated_at",
}

func expiredHoldRows(b domain.Booking) *pgxmock.Rows {
	return pgxmock.NewRows(bookingTestColumns).AddRow(
		b.ID, b.PropertyID, b.CheckIn, b.CheckOut, b.GuestCount,
		[]byte(nil), b.Status, b.HoldUntil, b.ConvertedFromHold,
		b.CreatedAt, b.UpdatedAt,
	)
}

func TestExpireSweep_CancelsAHoldExactlyOnce(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	holdUntil := now.Add(-time.Hour)
	b := domain.Booking{
		ID:         uuid.New(),
		PropertyID: "villa-aurora",
		CheckIn:    time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 7, 23, 0, 0, 0, 0, time.UTC),
		GuestCount: 2,
		Status:     domain.StatusOnHold,
		HoldUntil:  &holdUntil,
		CreatedAt:  now.Add(-25 * time.Hour),
		UpdatedAt:  now.Add(-25 * time.Hour),
	}

	svc := New(postgresrepo.NewStore(mock), nil, nil, discardLogger(), Config{SweepParallelism: 1})
	svc.now = func() time.Time { return now }

	// First run cancels the expired hold and releases its dates.
	mock.ExpectQuery(`(?s)SELECT .* FROM bookings.*hold_until <= \$2`).
		WithArgs(domain.StatusOnHold, now, 500).
		WillReturnRows(expiredHoldRows(b))
	mock.ExpectExec(`UPDATE bookings`).
		WithArgs(b.ID, []string{string(domain.StatusOnHold)}, domain.StatusCancelled).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE availability_days`).
		WithArgs(b.PropertyID, b.CheckIn, b.CheckOut, b.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	res, err := svc.ExpireSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Processed: 1, Released: 1}, res)

	// A second run racing over the same hold finds the guarded update a
	// no-op and must not release the dates again.
	mock.ExpectQuery(`(?s)SELECT .* FROM bookings.*hold_until <= \$2`).
		WithArgs(domain.StatusOnHold, now, 500).
		WillReturnRows(expiredHoldRows(b))
	mock.ExpectExec(`UPDATE bookings`).
		WithArgs(b.ID, []string{string(domain.StatusOnHold)}, domain.StatusCancelled).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	res, err = svc.ExpireSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, res)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireSweep_NothingExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	svc := New(postgresrepo.NewStore(mock), nil, nil, discardLogger(), Config{})
	svc.now = func() time.Time { return now }

	mock.ExpectQuery(`(?s)SELECT .* FROM bookings`).
		WithArgs(domain.StatusOnHold, now, 500).
		WillReturnRows(pgxmock.NewRows(bookingTestColumns))

	res, err := svc.ExpireSweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type stubLimiter struct {
	allowed bool
}

func (l stubLimiter) Allow(context.Context, string) (bool, int64, time.Duration, error) {
	return l.allowed, 0, 30 * time.Second, nil
}

func TestCreateHold_RateLimited(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := New(postgresrepo.NewStore(mock), nil, stubLimiter{allowed: false}, discardLogger(), Config{})

	b, refusal, err := svc.CreateHold(context.Background(), CreateHoldRequest{
		PropertyID: "villa-aurora",
		CheckIn:    time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 7, 22, 0, 0, 0, 0, time.UTC),
		GuestCount: 2,
	}, "ip:203.0.113.7")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Nil(t, b)
	assert.Nil(t, refusal)
	assert.NoError(t, mock.ExpectationsWereMet())
}
