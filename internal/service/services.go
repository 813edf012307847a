package service

import (
	"log/slog"

	postgres "github.com/b-coman/prop-management-sub011/internal/repository/postgres"
	redis "github.com/b-coman/prop-management-sub011/internal/repository/redis"
	"github.com/b-coman/prop-management-sub011/internal/service/admin"
	"github.com/b-coman/prop-management-sub011/internal/service/booking"
	"github.com/b-coman/prop-management-sub011/internal/service/calendar"
	"github.com/b-coman/prop-management-sub011/internal/service/quote"
)

type Services struct {
	Quote    *quote.Service
	Calendar *calendar.Service
	Booking  *booking.Service
	Admin    *admin.Service
}

type Config struct {
	Calendar calendar.Config
	Booking  booking.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redis.CalendarPubSub,
	limiter *redis.SlidingWindowLimiter,
	logger *slog.Logger,
	cfg Config,
) *Services {
	quotes := quote.New(store, logger)
	calendars := calendar.New(store, cache, pubsub, logger, cfg.Calendar)

	return &Services{
		Quote:    quotes,
		Calendar: calendars,
		Booking:  booking.New(store, quotes, limiter, logger, cfg.Booking),
		Admin:    admin.New(store, calendars, logger),
	}
}
