package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/b-coman/prop-management-sub011/internal/domain"
)

// BookingRepo persists bookings. Rows are never deleted; status transitions
// carry a WHERE guard on the current status so illegal or repeated
// transitions become no-ops the caller can detect.
type BookingRepo struct {
	pool Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const bookingColumns = `id, property_id, check_in, check_out, guest_count,
	pricing_snapshot, status, hold_until, converted_from_hold,
	created_at, updated_at`

// Create inserts a new booking.
func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	const op = "postgres.BookingRepo.Create"

	var snapshot []byte
	if b.PricingSnapshot != nil {
		var err error
		snapshot, err = json.Marshal(b.PricingSnapshot)
		if err != nil {
			return wrapDBErr(op, err)
		}
	}

	err := r.handle().QueryRow(ctx,
		`INSERT INTO bookings (
		     id, property_id, check_in, check_out, guest_count,
		     pricing_snapshot, status, hold_until, converted_from_hold
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 RETURNING created_at, updated_at`,
		b.ID, b.PropertyID, domain.Day(b.CheckIn), domain.Day(b.CheckOut),
		b.GuestCount, snapshot, b.Status, b.HoldUntil, b.ConvertedFromHold,
	).Scan(&b.CreatedAt, &b.UpdatedAt)

	return wrapDBErr(op, err)
}

// Get loads a booking by id.
//
// Returns:
//   - error: repository.ErrNotFound if the booking does not exist.
func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.Get"

	row := r.handle().QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)

	b, err := scanBooking(row)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return b, nil
}

// UpdateStatus transitions a booking from one of the expected statuses to
// the target status.
//
// Returns:
//   - bool: whether a row was transitioned (false means the booking was not
//     in an expected status, which callers treat as an idempotent no-op or
//     an ErrInvalidStatus depending on the flow).
func (r *BookingRepo) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from []domain.BookingStatus,
	to domain.BookingStatus,
) (bool, error) {
	const op = "postgres.BookingRepo.UpdateStatus"

	tag, err := r.handle().Exec(ctx,
		`UPDATE bookings
		    SET status = $3, updated_at = now()
		  WHERE id = $1 AND status = ANY($2)`,
		id, statusStrings(from), to,
	)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return tag.RowsAffected() > 0, nil
}

// MarkConfirmed flips an on-hold booking to confirmed and records that it
// was converted from a hold. The hold deadline is cleared.
func (r *BookingRepo) MarkConfirmed(ctx context.Context, id uuid.UUID) (bool, error) {
	const op = "postgres.BookingRepo.MarkConfirmed"

	tag, err := r.handle().Exec(ctx,
		`UPDATE bookings
		    SET status = $2, hold_until = NULL, converted_from_hold = TRUE,
		        updated_at = now()
		  WHERE id = $1 AND status = $3`,
		id, domain.StatusConfirmed, domain.StatusOnHold,
	)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return tag.RowsAffected() > 0, nil
}

// ExtendHold pushes an on-hold booking's deadline by the given number of
// hours and returns the new deadline.
//
// Returns:
//   - error: repository.ErrInvalidStatus if the booking is not on hold.
func (r *BookingRepo) ExtendHold(
	ctx context.Context,
	id uuid.UUID,
	hours int,
) (time.Time, error) {
	const op = "postgres.BookingRepo.ExtendHold"

	var until time.Time
	err := r.handle().QueryRow(ctx,
		`UPDATE bookings
		    SET hold_until = hold_until + ($2 || ' hours')::interval,
		        updated_at = now()
		  WHERE id = $1 AND status = $3 AND hold_until IS NOT NULL
		  RETURNING hold_until`,
		id, hours, domain.StatusOnHold,
	).Scan(&until)
	if err != nil {
		return time.Time{}, wrapDBErr(op, err)
	}

	return until, nil
}

// ListExpiredHolds returns on-hold bookings whose hold deadline has passed,
// oldest first.
func (r *BookingRepo) ListExpiredHolds(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListExpiredHolds"

	rows, err := r.handle().Query(ctx,
		`SELECT `+bookingColumns+`
		   FROM bookings
		  WHERE status = $1 AND hold_until IS NOT NULL AND hold_until <= $2
		  ORDER BY hold_until
		  LIMIT $3`,
		domain.StatusOnHold, now, limit,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		bookings = append(bookings, *b)
	}

	return bookings, wrapDBErr(op, rows.Err())
}

// ListByProperty returns a property's bookings, newest first, for admin
// review.
func (r *BookingRepo) ListByProperty(
	ctx context.Context,
	propertyID string,
	limit, offset int,
) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListByProperty"

	rows, err := r.handle().Query(ctx,
		`SELECT `+bookingColumns+`
		   FROM bookings
		  WHERE property_id = $1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		propertyID, limit, offset,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		bookings = append(bookings, *b)
	}

	return bookings, wrapDBErr(op, rows.Err())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b        domain.Booking
		snapshot []byte
	)
	if err := row.Scan(
		&b.ID, &b.PropertyID, &b.CheckIn, &b.CheckOut, &b.GuestCount,
		&snapshot, &b.Status, &b.HoldUntil, &b.ConvertedFromHold,
		&b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(snapshot) > 0 {
		b.PricingSnapshot = &domain.Quote{}
		if err := json.Unmarshal(snapshot, b.PricingSnapshot); err != nil {
			return nil, err
		}
	}

	return &b, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
