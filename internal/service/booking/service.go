// Package booking drives the hold lifecycle: a booking is created on hold
// against the availability ledger, then confirmed, cancelled or expired by
// the time-driven sweep.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/b-coman/prop-management-sub011/internal/domain"
	"github.com/b-coman/prop-management-sub011/internal/repository"
	postgresrepo "github.com/b-coman/prop-management-sub011/internal/repository/postgres"
	"github.com/b-coman/prop-management-sub011/internal/service/quote"
	"github.com/b-coman/prop-management-sub011/internal/uow"
)

type Config struct {
	// DefaultHoldHours applies when a property's pricing config does not
	// set its own hold duration.
	DefaultHoldHours int
	// SweepBatchSize caps how many expired holds one sweep run processes.
	SweepBatchSize int
	// SweepParallelism bounds the concurrent ledger releases in a sweep.
	SweepParallelism int
}

// RateLimiter gates hold creation per caller key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, current int64, retryAfter time.Duration, err error)
}

type Service struct {
	store   *postgresrepo.Store
	quotes  *quote.Service
	limiter RateLimiter
	uow     *uow.UoW
	logger  *slog.Logger
	cfg     Config
	now     func() time.Time
}

func New(
	store *postgresrepo.Store,
	quotes *quote.Service,
	limiter RateLimiter,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.DefaultHoldHours <= 0 {
		cfg.DefaultHoldHours = 24
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = 500
	}
	if cfg.SweepParallelism <= 0 {
		cfg.SweepParallelism = 8
	}

	return &Service{
		store:   store,
		quotes:  quotes,
		limiter: limiter,
		uow:     uow.NewUoW(store),
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// CreateHoldRequest describes a hold attempt for one stay.
type CreateHoldRequest struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
	GuestCount int
	CouponCode string
}

// CreateHold quotes the stay, then claims the date range and creates the
// booking in one transaction. The quote becomes the booking's pricing
// snapshot and is never recomputed afterwards.
//
// A hold losing a same-day race gets the dates re-checked and comes back
// as an unavailable_dates refusal rather than an error, since availability
// may have genuinely changed under it.
//
// Returns:
//   - *domain.Booking: the created on-hold booking.
//   - *domain.Refusal: set instead when the stay cannot be held.
func (s *Service) CreateHold(
	ctx context.Context,
	req CreateHoldRequest,
	rlKey string,
) (*domain.Booking, *domain.Refusal, error) {
	const op = "service.booking.CreateHold"

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, nil, fmt.Errorf("%s:%w: retry in %s", op, ErrRateLimited, retry)
		}
	}

	// Two attempts: the second runs after a same-day race, when the loser
	// must re-validate availability from scratch.
	for attempt := 0; ; attempt++ {
		b, refusal, err := s.createHoldOnce(ctx, req)
		if err == nil || attempt > 0 {
			if err != nil {
				return nil, nil, fmt.Errorf("%s:%w", op, err)
			}
			return b, refusal, nil
		}
		if !postgresrepo.IsRetryable(err) && !errors.Is(err, repository.ErrConflict) {
			return nil, nil, fmt.Errorf("%s:%w", op, err)
		}
		s.logger.Debug("hold creation conflicted, retrying", "property_id", req.PropertyID)
	}
}

func (s *Service) createHoldOnce(
	ctx context.Context,
	req CreateHoldRequest,
) (*domain.Booking, *domain.Refusal, error) {
	qr, err := s.quotes.Quote(ctx, quote.Request{
		PropertyID: req.PropertyID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		GuestCount: req.GuestCount,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		return nil, nil, err
	}
	if !qr.Available {
		return nil, qr.Refusal, nil
	}

	holdHours := s.cfg.DefaultHoldHours
	if cfg, err := s.store.Pricing().GetConfig(ctx, req.PropertyID); err == nil && cfg.HoldDurationHours > 0 {
		holdHours = cfg.HoldDurationHours
	}

	holdUntil := s.now().Add(time.Duration(holdHours) * time.Hour)
	b := &domain.Booking{
		ID:              uuid.New(),
		PropertyID:      req.PropertyID,
		CheckIn:         domain.Day(req.CheckIn),
		CheckOut:        domain.Day(req.CheckOut),
		GuestCount:      req.GuestCount,
		PricingSnapshot: qr.Quote,
		Status:          domain.StatusOnHold,
		HoldUntil:       &holdUntil,
	}

	err = s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Bookings().With(tx).Create(ctx, b); err != nil {
			return err
		}
		return s.store.Availability().With(tx).Block(
			ctx, b.PropertyID, b.CheckIn, b.CheckOut, b.ID, b.HoldUntil)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDatesUnavailable) {
			_, conflicts, cerr := s.store.Availability().CheckRange(ctx, req.PropertyID, req.CheckIn, req.CheckOut)
			if cerr != nil {
				return nil, nil, cerr
			}
			dates := make([]string, 0, len(conflicts))
			for _, d := range conflicts {
				dates = append(dates, domain.FormatDate(d))
			}
			return nil, &domain.Refusal{
				Reason:           domain.RefusalUnavailableDates,
				UnavailableDates: dates,
			}, nil
		}
		return nil, nil, err
	}

	s.logger.Info("hold created",
		"booking_id", b.ID, "property_id", b.PropertyID,
		"check_in", domain.FormatDate(b.CheckIn),
		"check_out", domain.FormatDate(b.CheckOut),
		"hold_until", holdUntil)

	return b, nil, nil
}

// Get loads one booking.
//
// Returns:
//   - error: booking.ErrBookingNotFound if the id is unknown.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.Get"

	b, err := s.store.Bookings().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return b, nil
}

// ListByProperty returns a property's bookings for admin review.
func (s *Service) ListByProperty(ctx context.Context, propertyID string, limit, offset int) ([]domain.Booking, error) {
	const op = "service.booking.ListByProperty"

	bookings, err := s.store.Bookings().ListByProperty(ctx, propertyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return bookings, nil
}

// Confirm converts an on-hold booking to confirmed. The ledger claim stays
// in place; only its hold deadline is lifted so lazy expiry cannot free a
// confirmed stay.
//
// Returns:
//   - error: booking.ErrBookingNotFound / booking.ErrNotOnHold.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.Confirm"

	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	transitioned, err := s.store.Bookings().MarkConfirmed(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !transitioned {
		return nil, fmt.Errorf("%s:%w", op, ErrNotOnHold)
	}

	if err := s.store.Availability().ClearHoldExpiry(ctx, b.PropertyID, id); err != nil {
		// The booking is confirmed regardless; a leftover deadline is then
		// corrected by the next Block's lazy expiry only if the claim
		// lapses, so surface this one.
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return s.Get(ctx, id)
}

// Cancel cancels a booking and releases its dates. The status write comes
// first and is never rolled back: a failed release leaves a cancelled
// booking with still-blocked days, which the idempotent Release and the
// sweep's lazy expiry heal on retry.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.Cancel"

	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if b.Status == domain.StatusCancelled {
		return b, nil
	}

	transitioned, err := s.store.Bookings().UpdateStatus(ctx, id,
		domain.StatusesAllowing(domain.StatusCancelled),
		domain.StatusCancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !transitioned {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidStatus)
	}

	if err := s.store.Availability().Release(ctx, b.PropertyID, b.CheckIn, b.CheckOut, id); err != nil {
		s.logger.Error("release after cancel failed, will self-heal on retry",
			"booking_id", id, "property_id", b.PropertyID, "error", err)
	}

	return s.Get(ctx, id)
}

// ExtendHold pushes an on-hold booking's deadline by hours. Admin only;
// the transport layer gates it.
//
// Returns:
//   - error: booking.ErrNotOnHold if the booking is not currently on hold.
func (s *Service) ExtendHold(ctx context.Context, id uuid.UUID, hours int) (*domain.Booking, error) {
	const op = "service.booking.ExtendHold"

	if hours <= 0 {
		return nil, fmt.Errorf("%s: hours must be positive", op)
	}

	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	until, err := s.store.Bookings().ExtendHold(ctx, id, hours)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrNotOnHold)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.store.Availability().ExtendHoldExpiry(ctx, b.PropertyID, id, until); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return s.Get(ctx, id)
}

// Complete marks a confirmed booking completed after checkout.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.Complete"

	transitioned, err := s.store.Bookings().UpdateStatus(ctx, id,
		domain.StatusesAllowing(domain.StatusCompleted), domain.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !transitioned {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidStatus)
	}

	return s.Get(ctx, id)
}

// MarkPaymentFailed records a payment error. Any live status may take this
// transition; the dates stay claimed until an operator cancels or the hold
// deadline lapses.
func (s *Service) MarkPaymentFailed(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.MarkPaymentFailed"

	transitioned, err := s.store.Bookings().UpdateStatus(ctx, id,
		domain.StatusesAllowing(domain.StatusPaymentFailed),
		domain.StatusPaymentFailed,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !transitioned {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidStatus)
	}

	return s.Get(ctx, id)
}

// SweepResult reports one expiry sweep run.
type SweepResult struct {
	Processed int `json:"processed"`
	Released  int `json:"released"`
	Errors    int `json:"errors"`
}

// ExpireSweep cancels every on-hold booking whose deadline has passed and
// releases its dates. The cancellations are individual guarded updates, so
// a concurrent sweep finds nothing left to transition and the run is
// idempotent. Releases run in parallel with per-booking
// fire-and-forget-with-logging semantics: one failed release never blocks
// the other expirations, and the still-claimed days stay harmless because
// the ledger lazily drops lapsed claims.
func (s *Service) ExpireSweep(ctx context.Context) (SweepResult, error) {
	const op = "service.booking.ExpireSweep"

	expired, err := s.store.Bookings().ListExpiredHolds(ctx, s.now(), s.cfg.SweepBatchSize)
	if err != nil {
		return SweepResult{}, fmt.Errorf("%s:%w", op, err)
	}

	var result SweepResult
	var released, failures atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.SweepParallelism)

	for _, b := range expired {
		transitioned, err := s.store.Bookings().UpdateStatus(ctx, b.ID,
			[]domain.BookingStatus{domain.StatusOnHold}, domain.StatusCancelled)
		if err != nil {
			s.logger.Error("sweep: cancel failed", "booking_id", b.ID, "error", err)
			failures.Add(1)
			continue
		}
		if !transitioned {
			// Another sweep or a guest action got there first.
			continue
		}

		result.Processed++

		b := b
		g.Go(func() error {
			if err := s.store.Availability().Release(gCtx, b.PropertyID, b.CheckIn, b.CheckOut, b.ID); err != nil {
				s.logger.Error("sweep: release failed",
					"booking_id", b.ID, "property_id", b.PropertyID, "error", err)
				failures.Add(1)
				return nil
			}
			released.Add(1)
			return nil
		})
	}

	_ = g.Wait()

	result.Released = int(released.Load())
	result.Errors = int(failures.Load())

	if result.Processed > 0 || result.Errors > 0 {
		s.logger.Info("expire sweep finished",
			"processed", result.Processed, "released", result.Released, "errors", result.Errors)
	}

	return result, nil
}
