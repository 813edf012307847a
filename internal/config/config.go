package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Jobs     JobsConfig
	Booking  BookingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

type AdminConfig struct {
	// APIToken gates the /admin routes. Empty disables the admin API.
	APIToken string
}

type JobsConfig struct {
	ExpireHoldsSpec     string
	CalendarRefreshSpec string
	MonthsAhead         int
}

type BookingConfig struct {
	DefaultHoldHours int
	RateLimit        int
	RateLimitWindow  time.Duration
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := os.Getenv("SERVER_HOST")
	if serverHost == "" {
		serverHost = "localhost"
	}

	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080"
	}

	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SERVER_PORT: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: serverHost,
		Port: serverPort,
	}

	postgresHost := os.Getenv("POSTGRES_HOST")
	if postgresHost == "" {
		postgresHost = "localhost"
	}

	postgresPortStr := os.Getenv("POSTGRES_PORT")
	if postgresPortStr == "" {
		postgresPortStr = "5432"
	}

	postgresPort, err := strconv.Atoi(postgresPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid POSTGRES_PORT: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresSSLMode := os.Getenv("POSTGRES_SSLMODE")
	if postgresSSLMode == "" {
		postgresSSLMode = "disable"
	}

	postgresCfg := PostgresConfig{
		User:     postgresUser,
		Password: postgresPassword,
		Name:     postgresDB,
		Host:     postgresHost,
		Port:     postgresPort,
		SSLMode:  postgresSSLMode,
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisCfg := RedisConfig{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	}

	adminCfg := AdminConfig{
		APIToken: os.Getenv("ADMIN_API_TOKEN"),
	}

	expireSpec := os.Getenv("JOB_EXPIRE_HOLDS_SPEC")
	if expireSpec == "" {
		expireSpec = "@hourly"
	}

	refreshSpec := os.Getenv("JOB_CALENDAR_REFRESH_SPEC")
	if refreshSpec == "" {
		refreshSpec = "@daily"
	}

	monthsAheadStr := os.Getenv("CALENDAR_MONTHS_AHEAD")
	if monthsAheadStr == "" {
		monthsAheadStr = "12"
	}

	monthsAhead, err := strconv.Atoi(monthsAheadStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid CALENDAR_MONTHS_AHEAD: %w", op, err)
	}

	jobsCfg := JobsConfig{
		ExpireHoldsSpec:     expireSpec,
		CalendarRefreshSpec: refreshSpec,
		MonthsAhead:         monthsAhead,
	}

	holdHoursStr := os.Getenv("HOLD_DEFAULT_HOURS")
	if holdHoursStr == "" {
		holdHoursStr = "24"
	}

	holdHours, err := strconv.Atoi(holdHoursStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid HOLD_DEFAULT_HOURS: %w", op, err)
	}

	rateLimitStr := os.Getenv("HOLD_RATE_LIMIT")
	if rateLimitStr == "" {
		rateLimitStr = "10"
	}

	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid HOLD_RATE_LIMIT: %w", op, err)
	}

	bookingCfg := BookingConfig{
		DefaultHoldHours: holdHours,
		RateLimit:        rateLimit,
		RateLimitWindow:  1 * time.Minute,
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Admin:    adminCfg,
		Jobs:     jobsCfg,
		Booking:  bookingCfg,
	}, nil
}
