package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/b-coman/prop-management-sub011/internal/config"
	"github.com/b-coman/prop-management-sub011/internal/postgres"
	"github.com/b-coman/prop-management-sub011/internal/redis"
	postgresrepo "github.com/b-coman/prop-management-sub011/internal/repository/postgres"
	redisrepo "github.com/b-coman/prop-management-sub011/internal/repository/redis"
	"github.com/b-coman/prop-management-sub011/internal/scheduler"
	"github.com/b-coman/prop-management-sub011/internal/service"
	"github.com/b-coman/prop-management-sub011/internal/service/booking"
	"github.com/b-coman/prop-management-sub011/internal/service/calendar"
	httpgin "github.com/b-coman/prop-management-sub011/internal/transport/http/gin"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	scheduler  *scheduler.Scheduler
	pubsub     *redisrepo.CalendarPubSub
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redis.New(context.Background(), redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisrepo.NewCalendarPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(
		rdb,
		redisrepo.KeyRateLimitPrefix("holds"),
		cfg.Booking.RateLimit,
		cfg.Booking.RateLimitWindow,
	)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	// Initialize services
	services := service.NewServices(store, cache, pubsub, limiter, logger, service.Config{
		Calendar: calendar.Config{MonthsAhead: cfg.Jobs.MonthsAhead},
		Booking:  booking.Config{DefaultHoldHours: cfg.Booking.DefaultHoldHours},
	})

	sched := scheduler.New(services.Booking, services.Calendar, logger, scheduler.Config{
		ExpireHoldsSpec:     cfg.Jobs.ExpireHoldsSpec,
		CalendarRefreshSpec: cfg.Jobs.CalendarRefreshSpec,
	})

	// Initialize Gin router
	router := httpgin.NewRouter(services, idempotencyStore, cfg.Admin.APIToken, logger)

	return &App{
		cfg:       cfg,
		logger:    logger,
		scheduler: sched,
		pubsub:    pubsub,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	a.scheduler.Start()

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Calendar-changed fan-out. The publisher already drops the shared
	// cache entries; the subscription surfaces mutations in this
	// replica's log and is where replica-local state would hook in.
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, func(_ context.Context, propertyID string, months []string) {
			a.logger.Debug("calendar changed", "property_id", propertyID, "months", months)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("calendar pubsub subscriber: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down")
		a.scheduler.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
