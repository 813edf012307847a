// Package scheduler fires the time-driven jobs of the booking core: the
// hourly hold-expiry sweep and the daily rolling calendar refresh.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/b-coman/prop-management-sub011/internal/service/booking"
	"github.com/b-coman/prop-management-sub011/internal/service/calendar"
)

type Config struct {
	// ExpireHoldsSpec is the cron expression for the expiry sweep,
	// hourly by default. Duplicate or overlapping runs are harmless: the
	// sweep's status guards make it idempotent.
	ExpireHoldsSpec string
	// CalendarRefreshSpec is the cron expression for the rolling calendar
	// regeneration, daily by default.
	CalendarRefreshSpec string
	// JobTimeout bounds a single job run.
	JobTimeout time.Duration
}

type Scheduler struct {
	cron      *cron.Cron
	bookings  *booking.Service
	calendars *calendar.Service
	logger    *slog.Logger
	cfg       Config
}

func New(bookings *booking.Service, calendars *calendar.Service, logger *slog.Logger, cfg Config) *Scheduler {
	if cfg.ExpireHoldsSpec == "" {
		cfg.ExpireHoldsSpec = "@hourly"
	}
	if cfg.CalendarRefreshSpec == "" {
		cfg.CalendarRefreshSpec = "@daily"
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Minute
	}

	s := &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		bookings:  bookings,
		calendars: calendars,
		logger:    logger,
		cfg:       cfg,
	}

	s.registerJobs()
	return s
}

func (s *Scheduler) registerJobs() {
	if _, err := s.cron.AddFunc(s.cfg.ExpireHoldsSpec, s.runExpireHolds); err != nil {
		s.logger.Error("failed to register expire-holds job", "error", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.CalendarRefreshSpec, s.runCalendarRefresh); err != nil {
		s.logger.Error("failed to register calendar-refresh job", "error", err)
	}
}

func (s *Scheduler) runExpireHolds() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	res, err := s.bookings.ExpireSweep(ctx)
	if err != nil {
		s.logger.Error("expire-holds job failed", "error", err)
		return
	}

	s.logger.Debug("expire-holds job done",
		"processed", res.Processed, "released", res.Released, "errors", res.Errors)
}

func (s *Scheduler) runCalendarRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	written, err := s.calendars.RefreshAll(ctx)
	if err != nil {
		s.logger.Error("calendar-refresh job failed", "error", err)
		return
	}

	s.logger.Info("calendar-refresh job done", "months_written", written)
}

// Start begins firing jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started",
		"expire_holds", s.cfg.ExpireHoldsSpec,
		"calendar_refresh", s.cfg.CalendarRefreshSpec)
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
