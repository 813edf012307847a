// Package calendar materializes price calendars: one precomputed document
// per property month, derived from the pricing inputs and the availability
// ledger. Materialization is idempotent and safe to re-run at any time.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/b-coman/prop-management-sub011/internal/domain"
	"github.com/b-coman/prop-management-sub011/internal/pricing"
	"github.com/b-coman/prop-management-sub011/internal/repository"
	postgresrepo "github.com/b-coman/prop-management-sub011/internal/repository/postgres"
	redisrepo "github.com/b-coman/prop-management-sub011/internal/repository/redis"
)

type Config struct {
	// MonthsAhead is the rolling window regenerated by the refresh job and
	// the default for admin-triggered regeneration.
	MonthsAhead int
	// CacheTTL bounds how long a served month may lag a regeneration on
	// another replica; pub/sub invalidation usually beats it.
	CacheTTL time.Duration
}

type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	pubsub *redisrepo.CalendarPubSub
	logger *slog.Logger
	cfg    Config
	now    func() time.Time
}

func New(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.CalendarPubSub,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.MonthsAhead <= 0 {
		cfg.MonthsAhead = 12
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Materialize regenerates the rolling window of monthsAhead months starting
// at the current month. Zero monthsAhead uses the configured window.
//
// Returns:
//   - int: the number of months written.
//   - error: calendar.ErrConfigMissing if the property has no pricing config.
func (s *Service) Materialize(ctx context.Context, propertyID string, monthsAhead int) (int, error) {
	const op = "service.calendar.Materialize"

	if monthsAhead <= 0 {
		monthsAhead = s.cfg.MonthsAhead
	}

	months := make([]domain.YearMonth, 0, monthsAhead)
	ym := domain.MonthOf(s.now())
	for i := 0; i < monthsAhead; i++ {
		months = append(months, ym)
		ym = ym.Next()
	}

	if err := s.MaterializeMonths(ctx, propertyID, months); err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	return len(months), nil
}

// MaterializeMonths regenerates exactly the given months. Admin mutations
// of seasons and overrides call this with only the affected months so the
// recompute cost stays bounded.
func (s *Service) MaterializeMonths(ctx context.Context, propertyID string, months []domain.YearMonth) error {
	const op = "service.calendar.MaterializeMonths"

	if len(months) == 0 {
		return nil
	}

	cfg, err := s.store.Pricing().GetConfig(ctx, propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrConfigMissing)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	for _, ym := range months {
		if err := s.materializeMonth(ctx, *cfg, ym); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
	}

	names := monthStrings(months)
	if err := s.cache.InvalidateCalendarMonths(ctx, propertyID, names); err != nil {
		s.logger.Warn("calendar cache invalidation failed",
			"property_id", propertyID, "error", err)
	}
	if err := s.pubsub.PublishCalendarChanged(ctx, propertyID, names); err != nil {
		s.logger.Warn("calendar change publish failed",
			"property_id", propertyID, "error", err)
	}

	return nil
}

func (s *Service) materializeMonth(ctx context.Context, cfg domain.PricingConfig, ym domain.YearMonth) error {
	first := ym.First()
	last := first.AddDate(0, 1, -1)

	seasons, err := s.store.Pricing().ListSeasonsInRange(ctx, cfg.PropertyID, first, last)
	if err != nil {
		return err
	}

	overrides, err := s.store.Pricing().ListOverridesInRange(ctx, cfg.PropertyID, first, last)
	if err != nil {
		return err
	}

	blocked, err := s.store.Availability().MonthBlockedDays(ctx, cfg.PropertyID, ym)
	if err != nil {
		return err
	}

	cal := pricing.BuildMonth(cfg, seasons, overrides, blocked, ym, s.now())

	return s.store.Calendars().UpsertMonth(ctx, &cal)
}

// Month serves one materialized month through the redis read-through cache.
//
// Returns:
//   - error: calendar.ErrMonthNotFound if the month was never materialized.
func (s *Service) Month(ctx context.Context, propertyID string, ym domain.YearMonth) (*domain.PriceCalendarMonth, error) {
	const op = "service.calendar.Month"

	key := redisrepo.KeyCalendarMonth(propertyID, string(ym))

	cal, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.CacheTTL,
		func(ctx context.Context) (domain.PriceCalendarMonth, error) {
			c, err := s.store.Calendars().GetMonth(ctx, propertyID, ym)
			if err != nil {
				return domain.PriceCalendarMonth{}, err
			}
			return *c, nil
		},
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrMonthNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &cal, nil
}

// RefreshAll regenerates the rolling window for every property with a
// pricing config; the cron scheduler runs it daily so the window keeps
// sliding forward.
func (s *Service) RefreshAll(ctx context.Context) (int, error) {
	const op = "service.calendar.RefreshAll"

	ids, err := s.store.Pricing().ListPropertyIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	written := 0
	for _, id := range ids {
		n, err := s.Materialize(ctx, id, s.cfg.MonthsAhead)
		if err != nil {
			// One bad property must not starve the rest of the refresh.
			s.logger.Error("calendar refresh failed", "property_id", id, "error", err)
			continue
		}
		written += n
	}

	return written, nil
}

func monthStrings(months []domain.YearMonth) []string {
	out := make([]string, len(months))
	for i, ym := range months {
		out[i] = string(ym)
	}
	return out
}
