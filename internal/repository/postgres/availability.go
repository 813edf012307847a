package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/b-coman/prop-management-sub011/internal/domain"
	"github.com/b-coman/prop-management-sub011/internal/repository"
)

// AvailabilityRepo is the availability ledger: one row per (property, day),
// which is the source of truth for "is this date free". Day-row granularity
// means concurrent holds on different days of the same month never touch
// the same row; holds racing for the same day are serialized by the
// serializable transaction, and the loser retries from checkRange.
type AvailabilityRepo struct {
	pool Pool
	db   DB
}

func (r *AvailabilityRepo) With(db DB) *AvailabilityRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *AvailabilityRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// CheckRange inspects every date in [checkIn, checkOut) and collects all
// blocked dates instead of failing fast, so callers can present the full
// conflict list. Days without a ledger row are available.
func (r *AvailabilityRepo) CheckRange(
	ctx context.Context,
	propertyID string,
	checkIn, checkOut time.Time,
) (bool, []time.Time, error) {
	const op = "postgres.AvailabilityRepo.CheckRange"

	rows, err := r.handle().Query(ctx,
		`SELECT day FROM availability_days
		  WHERE property_id = $1
		    AND day >= $2 AND day < $3
		    AND available = FALSE
		    AND (external_block_ref IS NOT NULL
		         OR hold_expires_at IS NULL OR hold_expires_at > now())
		  ORDER BY day`,
		propertyID, domain.Day(checkIn), domain.Day(checkOut),
	)
	if err != nil {
		return false, nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var conflicts []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return false, nil, wrapDBErr(op, err)
		}
		conflicts = append(conflicts, day)
	}
	if err := rows.Err(); err != nil {
		return false, nil, wrapDBErr(op, err)
	}

	return len(conflicts) == 0, conflicts, nil
}

// Block claims every date in [checkIn, checkOut) for ref. Expired hold
// claims inside the range are released first, so a stale hold never blocks
// a new booking between sweep runs. The claim is a per-day merge: only the
// affected day rows are written, never the whole month.
//
// Returns:
//   - error: repository.ErrDatesUnavailable if any date is already taken.
func (r *AvailabilityRepo) Block(
	ctx context.Context,
	propertyID string,
	checkIn, checkOut time.Time,
	ref uuid.UUID,
	holdExpiresAt *time.Time,
) error {
	const op = "postgres.AvailabilityRepo.Block"

	if r.db != nil {
		if err := r.blockCore(ctx, r.db, propertyID, checkIn, checkOut, ref, holdExpiresAt); err != nil {
			return fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer tx.Rollback(ctx)

	if err := r.blockCore(ctx, tx, propertyID, checkIn, checkOut, ref, holdExpiresAt); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *AvailabilityRepo) blockCore(
	ctx context.Context,
	db DB,
	propertyID string,
	checkIn, checkOut time.Time,
	ref uuid.UUID,
	holdExpiresAt *time.Time,
) error {
	in, out := domain.Day(checkIn), domain.Day(checkOut)
	nights := domain.Nights(in, out)
	if nights <= 0 {
		return repository.ErrDatesUnavailable
	}

	// Lazily release expired hold claims inside the range.
	if _, err := db.Exec(ctx,
		`UPDATE availability_days
		    SET available = (external_block_ref IS NULL), hold_ref = NULL, hold_expires_at = NULL
		  WHERE property_id = $1
		    AND day >= $2 AND day < $3
		    AND hold_ref IS NOT NULL
		    AND hold_expires_at IS NOT NULL
		    AND hold_expires_at <= now()`,
		propertyID, in, out,
	); err != nil {
		return err
	}

	tag, err := db.Exec(ctx,
		`INSERT INTO availability_days (property_id, day, available, hold_ref, hold_expires_at)
		 SELECT $1, d::date, FALSE, $4, $5
		   FROM generate_series($2::date, $3::date - interval '1 day', interval '1 day') AS d
		 ON CONFLICT (property_id, day) DO UPDATE SET
		     available = FALSE,
		     hold_ref = EXCLUDED.hold_ref,
		     hold_expires_at = EXCLUDED.hold_expires_at
		 WHERE availability_days.available = TRUE`,
		propertyID, in, out, ref, holdExpiresAt,
	)
	if err != nil {
		return err
	}

	if int(tag.RowsAffected()) != nights {
		return repository.ErrDatesUnavailable
	}

	return nil
}

// Release frees every date in [checkIn, checkOut) claimed by ref. Days held
// by anyone else are untouched, which makes Release idempotent and safe to
// retry after a partial failure. Days also carrying an external block stay
// unavailable.
func (r *AvailabilityRepo) Release(
	ctx context.Context,
	propertyID string,
	checkIn, checkOut time.Time,
	ref uuid.UUID,
) error {
	const op = "postgres.AvailabilityRepo.Release"

	_, err := r.handle().Exec(ctx,
		`UPDATE availability_days
		    SET available = (external_block_ref IS NULL), hold_ref = NULL, hold_expires_at = NULL
		  WHERE property_id = $1
		    AND day >= $2 AND day < $3
		    AND hold_ref = $4`,
		propertyID, domain.Day(checkIn), domain.Day(checkOut), ref,
	)

	return wrapDBErr(op, err)
}

// ClearHoldExpiry pins ref's day claims past the hold window, used when a
// hold converts to a confirmed booking.
func (r *AvailabilityRepo) ClearHoldExpiry(ctx context.Context, propertyID string, ref uuid.UUID) error {
	const op = "postgres.AvailabilityRepo.ClearHoldExpiry"

	_, err := r.handle().Exec(ctx,
		`UPDATE availability_days
		    SET hold_expires_at = NULL
		  WHERE property_id = $1 AND hold_ref = $2`,
		propertyID, ref,
	)

	return wrapDBErr(op, err)
}

// ExtendHoldExpiry pushes ref's day claims to the new deadline.
func (r *AvailabilityRepo) ExtendHoldExpiry(
	ctx context.Context,
	propertyID string,
	ref uuid.UUID,
	until time.Time,
) error {
	const op = "postgres.AvailabilityRepo.ExtendHoldExpiry"

	_, err := r.handle().Exec(ctx,
		`UPDATE availability_days
		    SET hold_expires_at = $3
		  WHERE property_id = $1 AND hold_ref = $2 AND hold_expires_at IS NOT NULL`,
		propertyID, ref, until,
	)

	return wrapDBErr(op, err)
}

// BlockExternal marks days unavailable on behalf of a non-booking source
// (a date override or an external feed). Existing hold claims survive, and
// the block ref is recorded alongside them so the day stays blocked after
// the hold is released or expires.
func (r *AvailabilityRepo) BlockExternal(
	ctx context.Context,
	propertyID string,
	from, to time.Time,
	blockRef string,
) error {
	const op = "postgres.AvailabilityRepo.BlockExternal"

	_, err := r.handle().Exec(ctx,
		`INSERT INTO availability_days (property_id, day, available, external_block_ref)
		 SELECT $1, d::date, FALSE, $4
		   FROM generate_series($2::date, $3::date, interval '1 day') AS d
		 ON CONFLICT (property_id, day) DO UPDATE SET
		     available = FALSE,
		     external_block_ref = EXCLUDED.external_block_ref`,
		propertyID, domain.Day(from), domain.Day(to), blockRef,
	)

	return wrapDBErr(op, err)
}

// ReleaseExternal lifts an external block. Days also claimed by a hold stay
// unavailable.
func (r *AvailabilityRepo) ReleaseExternal(ctx context.Context, propertyID, blockRef string) error {
	const op = "postgres.AvailabilityRepo.ReleaseExternal"

	_, err := r.handle().Exec(ctx,
		`UPDATE availability_days
		    SET available = (hold_ref IS NULL), external_block_ref = NULL
		  WHERE property_id = $1 AND external_block_ref = $2`,
		propertyID, blockRef,
	)

	return wrapDBErr(op, err)
}

// MonthBlockedDays returns the day-of-month numbers currently unavailable
// in the given month, the materializer's availability input.
func (r *AvailabilityRepo) MonthBlockedDays(
	ctx context.Context,
	propertyID string,
	month domain.YearMonth,
) (map[int]bool, error) {
	const op = "postgres.AvailabilityRepo.MonthBlockedDays"

	first := month.First()
	next := first.AddDate(0, 1, 0)

	rows, err := r.handle().Query(ctx,
		`SELECT day FROM availability_days
		  WHERE property_id = $1
		    AND day >= $2 AND day < $3
		    AND available = FALSE
		    AND (external_block_ref IS NOT NULL
		         OR hold_expires_at IS NULL OR hold_expires_at > now())`,
		propertyID, first, next,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	blocked := make(map[int]bool)
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, wrapDBErr(op, err)
		}
		blocked[day.Day()] = true
	}

	return blocked, wrapDBErr(op, rows.Err())
}

// MonthStatuses returns the full ledger view of a month for admin
// inspection, one entry per existing day row.
func (r *AvailabilityRepo) MonthStatuses(
	ctx context.Context,
	propertyID string,
	month domain.YearMonth,
) ([]domain.DayStatus, error) {
	const op = "postgres.AvailabilityRepo.MonthStatuses"

	first := month.First()
	next := first.AddDate(0, 1, 0)

	rows, err := r.handle().Query(ctx,
		`SELECT day, available, hold_ref, external_block_ref
		   FROM availability_days
		  WHERE property_id = $1 AND day >= $2 AND day < $3
		  ORDER BY day`,
		propertyID, first, next,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var statuses []domain.DayStatus
	for rows.Next() {
		var st domain.DayStatus
		if err := rows.Scan(&st.Day, &st.Available, &st.HoldRef, &st.ExternalBlockRef); err != nil {
			return nil, wrapDBErr(op, err)
		}
		statuses = append(statuses, st)
	}

	return statuses, wrapDBErr(op, rows.Err())
}
