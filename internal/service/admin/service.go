// Package admin mutates the pricing inputs: property pricing configs,
// season rules and date overrides. Every mutation re-materializes only the
// calendar months the change touches.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/b-coman/prop-management-sub011/internal/domain"
	"github.com/b-coman/prop-management-sub011/internal/repository"
	postgresrepo "github.com/b-coman/prop-management-sub011/internal/repository/postgres"
	"github.com/b-coman/prop-management-sub011/internal/service/calendar"
)

type Service struct {
	store     *postgresrepo.Store
	calendars *calendar.Service
	logger    *slog.Logger
}

func New(store *postgresrepo.Store, calendars *calendar.Service, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		calendars: calendars,
		logger:    logger,
	}
}

// UpsertConfig replaces a property's pricing config and regenerates the
// whole rolling window, since the base price feeds every month.
func (s *Service) UpsertConfig(ctx context.Context, cfg *domain.PricingConfig) error {
	const op = "service.admin.UpsertConfig"

	if err := s.store.Pricing().UpsertConfig(ctx, cfg); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if _, err := s.calendars.Materialize(ctx, cfg.PropertyID, 0); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// CreateSeason adds a season rule and re-materializes the months it covers.
func (s *Service) CreateSeason(ctx context.Context, rule *domain.SeasonRule) error {
	const op = "service.admin.CreateSeason"

	if err := validateSeason(rule); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := s.store.Pricing().CreateSeason(ctx, rule); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return s.rematerialize(ctx, rule.PropertyID,
		domain.MonthsInRange(rule.StartDate, rule.EndDate), op)
}

// UpdateSeason replaces a season rule. Both the old and the new date range
// are re-materialized, because a moved season leaves stale prices behind.
func (s *Service) UpdateSeason(ctx context.Context, rule *domain.SeasonRule) error {
	const op = "service.admin.UpdateSeason"

	if err := validateSeason(rule); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	prev, err := s.store.Pricing().GetSeason(ctx, rule.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrSeasonNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}
	rule.PropertyID = prev.PropertyID

	if err := s.store.Pricing().UpdateSeason(ctx, rule); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrSeasonNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	months := mergeMonths(
		domain.MonthsInRange(prev.StartDate, prev.EndDate),
		domain.MonthsInRange(rule.StartDate, rule.EndDate),
	)

	return s.rematerialize(ctx, rule.PropertyID, months, op)
}

// DeleteSeason removes a season rule and re-materializes the months it
// covered.
func (s *Service) DeleteSeason(ctx context.Context, id int64) error {
	const op = "service.admin.DeleteSeason"

	prev, err := s.store.Pricing().GetSeason(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrSeasonNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := s.store.Pricing().DeleteSeason(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrSeasonNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	return s.rematerialize(ctx, prev.PropertyID,
		domain.MonthsInRange(prev.StartDate, prev.EndDate), op)
}

// ListSeasons returns a property's season rules intersecting [from, to].
func (s *Service) ListSeasons(ctx context.Context, propertyID string, from, to time.Time) ([]domain.SeasonRule, error) {
	const op = "service.admin.ListSeasons"

	rules, err := s.store.Pricing().ListSeasonsInRange(ctx, propertyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return rules, nil
}

// UpsertOverride creates or replaces the single override for its date. An
// explicit availability flag is mirrored into the ledger as an external
// block so checkRange sees it, the ledger staying the one source of truth.
func (s *Service) UpsertOverride(ctx context.Context, ov *domain.DateOverride) error {
	const op = "service.admin.UpsertOverride"

	if err := s.store.Pricing().UpsertOverride(ctx, ov); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := s.syncOverrideBlock(ctx, ov); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return s.rematerialize(ctx, ov.PropertyID,
		[]domain.YearMonth{domain.MonthOf(ov.Day)}, op)
}

// DeleteOverride removes an override, lifting any ledger block it created.
func (s *Service) DeleteOverride(ctx context.Context, id int64) error {
	const op = "service.admin.DeleteOverride"

	prev, err := s.store.Pricing().GetOverride(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrOverrideNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := s.store.Pricing().DeleteOverride(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrOverrideNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := s.store.Availability().ReleaseExternal(ctx, prev.PropertyID, overrideBlockRef(prev.ID)); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return s.rematerialize(ctx, prev.PropertyID,
		[]domain.YearMonth{domain.MonthOf(prev.Day)}, op)
}

// MonthStatuses exposes the raw ledger month for admin inspection.
func (s *Service) MonthStatuses(ctx context.Context, propertyID string, ym domain.YearMonth) ([]domain.DayStatus, error) {
	const op = "service.admin.MonthStatuses"

	statuses, err := s.store.Availability().MonthStatuses(ctx, propertyID, ym)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return statuses, nil
}

func (s *Service) syncOverrideBlock(ctx context.Context, ov *domain.DateOverride) error {
	ref := overrideBlockRef(ov.ID)

	if ov.Available != nil && !*ov.Available {
		return s.store.Availability().BlockExternal(ctx, ov.PropertyID, ov.Day, ov.Day, ref)
	}

	return s.store.Availability().ReleaseExternal(ctx, ov.PropertyID, ref)
}

func (s *Service) rematerialize(ctx context.Context, propertyID string, months []domain.YearMonth, op string) error {
	if err := s.calendars.MaterializeMonths(ctx, propertyID, months); err != nil {
		if errors.Is(err, calendar.ErrConfigMissing) {
			// Rules may be staged before the property gets its config; the
			// first materialization will pick them up.
			s.logger.Warn("skipping materialization, no pricing config",
				"property_id", propertyID)
			return nil
		}
		return fmt.Errorf("%s:%w", op, err)
	}
	return nil
}

func validateSeason(rule *domain.SeasonRule) error {
	if domain.Day(rule.EndDate).Before(domain.Day(rule.StartDate)) {
		return ErrInvalidRange
	}
	if rule.Rank < domain.RankMinimum || rule.Rank > domain.RankHigh {
		return ErrInvalidRank
	}
	return nil
}

func overrideBlockRef(id int64) string {
	return fmt.Sprintf("override:%d", id)
}

func mergeMonths(a, b []domain.YearMonth) []domain.YearMonth {
	seen := make(map[domain.YearMonth]bool, len(a)+len(b))
	var out []domain.YearMonth
	for _, ym := range append(a, b...) {
		if !seen[ym] {
			seen[ym] = true
			out = append(out, ym)
		}
	}
	return out
}
