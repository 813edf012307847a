// Package quote is the composition root of the pricing core: it validates
// availability against the live ledger, prices each night from the
// materialized calendar (falling back to live resolution when a month is
// missing or stale) and applies guest fees and discounts.
package quote

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
)

type Service struct {
	store  *postgresrepo.Store
	logger *slog.Logger
	now    func() time.Time
}

func New(store *postgresrepo.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Request is a quote query for one stay.
type Request struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
	GuestCount int
	CouponCode string
}

// Quote prices a stay or returns a structured refusal.
//
// The ledger is always consulted first; the price calendar is only a read
// cache and its availability flags are never trusted for the final
// decision. A missing or malformed calendar month downgrades to live
// resolution instead of failing the quote.
//
// Returns:
//   - *domain.QuoteResult: the quote, or a refusal with reason
//     unavailable_dates or minimum_stay.
//   - error: quote.ErrConfigMissing if the property has no pricing config.
//   - error: quote.ErrInvalidRange / quote.ErrInvalidGuests on bad input.
func (s *Service) Quote(ctx context.Context, req Request) (*domain.QuoteResult, error) {
	const op = "service.quote.Quote"

	nights := domain.Nights(req.CheckIn, req.CheckOut)
	if nights <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidRange)
	}
	if req.GuestCount <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidGuests)
	}

	cfg, err := s.store.Pricing().GetConfig(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrConfigMissing)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	ok, conflicts, err := s.store.Availability().CheckRange(ctx, req.PropertyID, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !ok {
		dates := make([]string, 0, len(conflicts))
		for _, d := range conflicts {
			dates = append(dates, domain.FormatDate(d))
		}
		return &domain.QuoteResult{
			Refusal: &domain.Refusal{
				Reason:           domain.RefusalUnavailableDates,
				UnavailableDates: dates,
			},
		}, nil
	}

	rates, minStay, err := s.nightlyRates(ctx, *cfg, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if nights < minStay {
		return &domain.QuoteResult{
			Refusal: &domain.Refusal{
				Reason:      domain.RefusalMinimumStay,
				MinimumStay: minStay,
			},
		}, nil
	}

	coupon := s.lookupCoupon(ctx, req.PropertyID, req.CouponCode)

	q := pricing.BuildQuote(*cfg, rates, req.GuestCount, coupon, s.now())

	return &domain.QuoteResult{Available: true, Quote: &q}, nil
}

// nightlyRates reads the base-occupancy rate for every night of the stay
// from the materialized calendar, resolving live for any night whose month
// is absent or malformed. It also returns the effective minimum stay, which
// is the check-in date's resolved minimum.
func (s *Service) nightlyRates(
	ctx context.Context,
	cfg domain.PricingConfig,
	checkIn, checkOut time.Time,
) ([]pricing.NightRate, int, error) {
	nights := domain.EachNight(checkIn, checkOut)
	lastNight := nights[len(nights)-1]

	calendars := make(map[domain.YearMonth]*domain.PriceCalendarMonth)
	for _, ym := range domain.MonthsInRange(checkIn, lastNight) {
		cal, err := s.store.Calendars().GetMonth(ctx, cfg.PropertyID, ym)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.logger.Debug("price calendar missing, falling back to live resolution",
					"property_id", cfg.PropertyID, "month", string(ym))
				continue
			}
			return nil, 0, err
		}
		calendars[ym] = cal
	}

	// Seasons and overrides are loaded at most once, on the first night
	// that needs live resolution.
	var (
		seasons   []domain.SeasonRule
		overrides []domain.DateOverride
		loaded    bool
	)
	loadInputs := func() error {
		if loaded {
			return nil
		}
		var err error
		seasons, err = s.store.Pricing().ListSeasonsInRange(ctx, cfg.PropertyID, checkIn, lastNight)
		if err != nil {
			return err
		}
		overrides, err = s.store.Pricing().ListOverridesInRange(ctx, cfg.PropertyID, checkIn, lastNight)
		if err != nil {
			return err
		}
		loaded = true
		return nil
	}

	rates := make([]pricing.NightRate, 0, len(nights))
	minStay := cfg.DefaultMinimumStay

	for i, night := range nights {
		var (
			rate     float64
			nightMin int
			fromCal  bool
		)
		if cal, ok := calendars[domain.MonthOf(night)]; ok {
			// A zero adjusted price marks a malformed day entry; the month
			// is treated as stale for that night.
			if day, ok := cal.Days[night.Day()]; ok && day.AdjustedPrice > 0 {
				rate, nightMin = day.AdjustedPrice, day.MinimumStay
				fromCal = true
			}
		}
		if !fromCal {
			if err := loadInputs(); err != nil {
				return nil, 0, err
			}
			res := pricing.Resolve(cfg, seasons, overrides, night)
			rate, nightMin = res.Rate, res.MinimumStay
		}

		rates = append(rates, pricing.NightRate{Date: night, Rate: rate})
		if i == 0 {
			minStay = nightMin
		}
	}

	return rates, minStay, nil
}

// lookupCoupon fetches the coupon when a code is supplied. Unknown codes
// are treated as no coupon; validity is checked at pricing time so an
// expired code simply contributes no discount.
func (s *Service) lookupCoupon(ctx context.Context, propertyID, code string) *domain.Coupon {
	if code == "" {
		return nil
	}

	coupon, err := s.store.Pricing().GetCoupon(ctx, propertyID, code)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("coupon lookup failed", "property_id", propertyID, "error", err)
		}
		return nil
	}

	return coupon
}
