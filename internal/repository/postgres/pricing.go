package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/b-coman/prop-management-sub011/internal/domain"
)

type PricingRepo struct {
	pool Pool
	db   DB
}

func (r *PricingRepo) With(db DB) *PricingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *PricingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// GetConfig loads a property's pricing configuration.
//
// Returns:
//   - error: repository.ErrNotFound if the property has no config.
func (r *PricingRepo) GetConfig(ctx context.Context, propertyID string) (*domain.PricingConfig, error) {
	const op = "postgres.PricingRepo.GetConfig"

	var (
		cfg      domain.PricingConfig
		weekdays []string
	)
	err := r.handle().QueryRow(ctx,
		`SELECT property_id, base_price_per_night, base_occupancy,
		        extra_guest_fee_per_night, cleaning_fee, weekend_multiplier,
		        weekend_days, default_minimum_stay, currency,
		        hold_duration_hours, los_discount_nights, los_discount_percent
		   FROM pricing_configs
		  WHERE property_id = $1`,
		propertyID,
	).Scan(
		&cfg.PropertyID, &cfg.BasePricePerNight, &cfg.BaseOccupancy,
		&cfg.ExtraGuestFeePerNight, &cfg.CleaningFee, &cfg.WeekendMultiplier,
		&weekdays, &cfg.DefaultMinimumStay, &cfg.Currency,
		&cfg.HoldDurationHours, &cfg.LOSDiscountNights, &cfg.LOSDiscountPercent,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	for _, name := range weekdays {
		wd, err := domain.ParseWeekday(name)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		cfg.WeekendDays = append(cfg.WeekendDays, wd)
	}

	return &cfg, nil
}

// UpsertConfig creates or replaces a property's pricing configuration.
func (r *PricingRepo) UpsertConfig(ctx context.Context, cfg *domain.PricingConfig) error {
	const op = "postgres.PricingRepo.UpsertConfig"

	weekdays := make([]string, 0, len(cfg.WeekendDays))
	for _, d := range cfg.WeekendDays {
		weekdays = append(weekdays, domain.WeekdayName(d))
	}

	_, err := r.handle().Exec(ctx,
		`INSERT INTO pricing_configs (
		     property_id, base_price_per_night, base_occupancy,
		     extra_guest_fee_per_night, cleaning_fee, weekend_multiplier,
		     weekend_days, default_minimum_stay, currency,
		     hold_duration_hours, los_discount_nights, los_discount_percent
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 ON CONFLICT (property_id) DO UPDATE SET
		     base_price_per_night = EXCLUDED.base_price_per_night,
		     base_occupancy = EXCLUDED.base_occupancy,
		     extra_guest_fee_per_night = EXCLUDED.extra_guest_fee_per_night,
		     cleaning_fee = EXCLUDED.cleaning_fee,
		     weekend_multiplier = EXCLUDED.weekend_multiplier,
		     weekend_days = EXCLUDED.weekend_days,
		     default_minimum_stay = EXCLUDED.default_minimum_stay,
		     currency = EXCLUDED.currency,
		     hold_duration_hours = EXCLUDED.hold_duration_hours,
		     los_discount_nights = EXCLUDED.los_discount_nights,
		     los_discount_percent = EXCLUDED.los_discount_percent`,
		cfg.PropertyID, cfg.BasePricePerNight, cfg.BaseOccupancy,
		cfg.ExtraGuestFeePerNight, cfg.CleaningFee, cfg.WeekendMultiplier,
		weekdays, cfg.DefaultMinimumStay, cfg.Currency,
		cfg.HoldDurationHours, cfg.LOSDiscountNights, cfg.LOSDiscountPercent,
	)

	return wrapDBErr(op, err)
}

// ListPropertyIDs returns every property that has a pricing config, for the
// rolling calendar refresh job.
func (r *PricingRepo) ListPropertyIDs(ctx context.Context) ([]string, error) {
	const op = "postgres.PricingRepo.ListPropertyIDs"

	rows, err := r.handle().Query(ctx,
		`SELECT property_id FROM pricing_configs ORDER BY property_id`)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBErr(op, err)
		}
		ids = append(ids, id)
	}

	return ids, wrapDBErr(op, rows.Err())
}

// ListSeasonsInRange returns a property's season rules whose date ranges
// intersect [from, to], disabled rules included so callers can decide.
func (r *PricingRepo) ListSeasonsInRange(
	ctx context.Context,
	propertyID string,
	from, to time.Time,
) ([]domain.SeasonRule, error) {
	const op = "postgres.PricingRepo.ListSeasonsInRange"

	rows, err := r.handle().Query(ctx,
		`SELECT id, property_id, name, start_date, end_date, price_multiplier,
		        minimum_stay, enabled, rank, created_at
		   FROM season_rules
		  WHERE property_id = $1 AND start_date <= $3 AND end_date >= $2
		  ORDER BY id`,
		propertyID, domain.Day(from), domain.Day(to),
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var rules []domain.SeasonRule
	for rows.Next() {
		var rule domain.SeasonRule
		if err := rows.Scan(
			&rule.ID, &rule.PropertyID, &rule.Name, &rule.StartDate, &rule.EndDate,
			&rule.PriceMultiplier, &rule.MinimumStay, &rule.Enabled, &rule.Rank,
			&rule.CreatedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		rules = append(rules, rule)
	}

	return rules, wrapDBErr(op, rows.Err())
}

// GetSeason loads one season rule by id.
func (r *PricingRepo) GetSeason(ctx context.Context, id int64) (*domain.SeasonRule, error) {
	const op = "postgres.PricingRepo.GetSeason"

	var rule domain.SeasonRule
	err := r.handle().QueryRow(ctx,
		`SELECT id, property_id, name, start_date, end_date, price_multiplier,
		        minimum_stay, enabled, rank, created_at
		   FROM season_rules
		  WHERE id = $1`,
		id,
	).Scan(
		&rule.ID, &rule.PropertyID, &rule.Name, &rule.StartDate, &rule.EndDate,
		&rule.PriceMultiplier, &rule.MinimumStay, &rule.Enabled, &rule.Rank,
		&rule.CreatedAt,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &rule, nil
}

// CreateSeason inserts a season rule and returns it with id and created_at
// populated.
func (r *PricingRepo) CreateSeason(ctx context.Context, rule *domain.SeasonRule) error {
	const op = "postgres.PricingRepo.CreateSeason"

	err := r.handle().QueryRow(ctx,
		`INSERT INTO season_rules (
		     property_id, name, start_date, end_date, price_multiplier,
		     minimum_stay, enabled, rank
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING id, created_at`,
		rule.PropertyID, rule.Name, domain.Day(rule.StartDate), domain.Day(rule.EndDate),
		rule.PriceMultiplier, rule.MinimumStay, rule.Enabled, rule.Rank,
	).Scan(&rule.ID, &rule.CreatedAt)

	return wrapDBErr(op, err)
}

// UpdateSeason replaces a season rule's fields.
//
// Returns:
//   - error: repository.ErrNotFound if no rule with that id exists.
func (r *PricingRepo) UpdateSeason(ctx context.Context, rule *domain.SeasonRule) error {
	const op = "postgres.PricingRepo.UpdateSeason"

	tag, err := r.handle().Exec(ctx,
		`UPDATE season_rules
		    SET name = $2, start_date = $3, end_date = $4, price_multiplier = $5,
		        minimum_stay = $6, enabled = $7, rank = $8
		  WHERE id = $1`,
		rule.ID, rule.Name, domain.Day(rule.StartDate), domain.Day(rule.EndDate),
		rule.PriceMultiplier, rule.MinimumStay, rule.Enabled, rule.Rank,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRows())
	}

	return nil
}

// DeleteSeason removes a season rule.
//
// Returns:
//   - error: repository.ErrNotFound if no rule with that id exists.
func (r *PricingRepo) DeleteSeason(ctx context.Context, id int64) error {
	const op = "postgres.PricingRepo.DeleteSeason"

	tag, err := r.handle().Exec(ctx, `DELETE FROM season_rules WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRows())
	}

	return nil
}

// ListOverridesInRange returns a property's date overrides inside [from, to].
func (r *PricingRepo) ListOverridesInRange(
	ctx context.Context,
	propertyID string,
	from, to time.Time,
) ([]domain.DateOverride, error) {
	const op = "postgres.PricingRepo.ListOverridesInRange"

	rows, err := r.handle().Query(ctx,
		`SELECT id, property_id, day, flat_rate, price_multiplier, available,
		        minimum_stay
		   FROM date_overrides
		  WHERE property_id = $1 AND day BETWEEN $2 AND $3
		  ORDER BY day`,
		propertyID, domain.Day(from), domain.Day(to),
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var overrides []domain.DateOverride
	for rows.Next() {
		var ov domain.DateOverride
		if err := rows.Scan(
			&ov.ID, &ov.PropertyID, &ov.Day, &ov.FlatRate, &ov.PriceMultiplier,
			&ov.Available, &ov.MinimumStay,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		overrides = append(overrides, ov)
	}

	return overrides, wrapDBErr(op, rows.Err())
}

// GetOverride loads one date override by id.
func (r *PricingRepo) GetOverride(ctx context.Context, id int64) (*domain.DateOverride, error) {
	const op = "postgres.PricingRepo.GetOverride"

	var ov domain.DateOverride
	err := r.handle().QueryRow(ctx,
		`SELECT id, property_id, day, flat_rate, price_multiplier, available,
		        minimum_stay
		   FROM date_overrides
		  WHERE id = $1`,
		id,
	).Scan(
		&ov.ID, &ov.PropertyID, &ov.Day, &ov.FlatRate, &ov.PriceMultiplier,
		&ov.Available, &ov.MinimumStay,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &ov, nil
}

// UpsertOverride creates or replaces the single override for
// (property, day); the unique key keeps one override per date.
func (r *PricingRepo) UpsertOverride(ctx context.Context, ov *domain.DateOverride) error {
	const op = "postgres.PricingRepo.UpsertOverride"

	err := r.handle().QueryRow(ctx,
		`INSERT INTO date_overrides (
		     property_id, day, flat_rate, price_multiplier, available, minimum_stay
		 ) VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (property_id, day) DO UPDATE SET
		     flat_rate = EXCLUDED.flat_rate,
		     price_multiplier = EXCLUDED.price_multiplier,
		     available = EXCLUDED.available,
		     minimum_stay = EXCLUDED.minimum_stay
		 RETURNING id`,
		ov.PropertyID, domain.Day(ov.Day), ov.FlatRate, ov.PriceMultiplier,
		ov.Available, ov.MinimumStay,
	).Scan(&ov.ID)

	return wrapDBErr(op, err)
}

// DeleteOverride removes a date override.
//
// Returns:
//   - error: repository.ErrNotFound if no override with that id exists.
func (r *PricingRepo) DeleteOverride(ctx context.Context, id int64) error {
	const op = "postgres.PricingRepo.DeleteOverride"

	tag, err := r.handle().Exec(ctx, `DELETE FROM date_overrides WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRows())
	}

	return nil
}

// GetCoupon loads an active-or-not coupon by property and code.
//
// Returns:
//   - error: repository.ErrNotFound if the code does not exist.
func (r *PricingRepo) GetCoupon(ctx context.Context, propertyID, code string) (*domain.Coupon, error) {
	const op = "postgres.PricingRepo.GetCoupon"

	var (
		c        domain.Coupon
		excluded []byte
	)
	err := r.handle().QueryRow(ctx,
		`SELECT code, property_id, percent, valid_from, valid_until,
		        excluded_ranges, active
		   FROM coupons
		  WHERE property_id = $1 AND code = $2`,
		propertyID, code,
	).Scan(&c.Code, &c.PropertyID, &c.Percent, &c.ValidFrom, &c.ValidUntil,
		&excluded, &c.Active)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	if len(excluded) > 0 {
		if err := json.Unmarshal(excluded, &c.Excluded); err != nil {
			return nil, wrapDBErr(op, err)
		}
	}

	return &c, nil
}
