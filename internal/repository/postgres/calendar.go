package postgres

import (
	"context"
	"encoding/json"

	"github.com/b-coman/prop-management-sub011/internal/domain"
)

// CalendarRepo stores materialized price calendar months. The whole
// day-map is written in a single UPSERT, so a regeneration racing another
// never interleaves partial maps: last writer wins per month.
type CalendarRepo struct {
	pool Pool
	db   DB
}

func (r *CalendarRepo) With(db DB) *CalendarRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CalendarRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// UpsertMonth atomically replaces one property month.
func (r *CalendarRepo) UpsertMonth(ctx context.Context, cal *domain.PriceCalendarMonth) error {
	const op = "postgres.CalendarRepo.UpsertMonth"

	days, err := json.Marshal(cal.Days)
	if err != nil {
		return wrapDBErr(op, err)
	}
	summary, err := json.Marshal(cal.Summary)
	if err != nil {
		return wrapDBErr(op, err)
	}

	_, err = r.handle().Exec(ctx,
		`INSERT INTO price_calendar_months (
		     property_id, year_month, days, summary, generated_at
		 ) VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (property_id, year_month) DO UPDATE SET
		     days = EXCLUDED.days,
		     summary = EXCLUDED.summary,
		     generated_at = EXCLUDED.generated_at`,
		cal.PropertyID, string(cal.Month), days, summary, cal.GeneratedAt,
	)

	return wrapDBErr(op, err)
}

// GetMonth loads one materialized month.
//
// Returns:
//   - error: repository.ErrNotFound if the month was never materialized.
func (r *CalendarRepo) GetMonth(
	ctx context.Context,
	propertyID string,
	month domain.YearMonth,
) (*domain.PriceCalendarMonth, error) {
	const op = "postgres.CalendarRepo.GetMonth"

	var (
		cal     domain.PriceCalendarMonth
		days    []byte
		summary []byte
	)
	err := r.handle().QueryRow(ctx,
		`SELECT property_id, year_month, days, summary, generated_at
		   FROM price_calendar_months
		  WHERE property_id = $1 AND year_month = $2`,
		propertyID, string(month),
	).Scan(&cal.PropertyID, &cal.Month, &days, &summary, &cal.GeneratedAt)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	if err := json.Unmarshal(days, &cal.Days); err != nil {
		return nil, wrapDBErr(op, err)
	}
	if err := json.Unmarshal(summary, &cal.Summary); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &cal, nil
}
