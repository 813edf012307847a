package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/b-coman/prop-management-sub011/internal/domain"
	"github.com/b-coman/prop-management-sub011/internal/repository"
	redisrepo "github.com/b-coman/prop-management-sub011/internal/repository/redis"
	"github.com/b-coman/prop-management-sub011/internal/service"
	adminsvc "github.com/b-coman/prop-management-sub011/internal/service/admin"
	"github.com/b-coman/prop-management-sub011/internal/service/booking"
	"github.com/b-coman/prop-management-sub011/internal/service/calendar"
	"github.com/b-coman/prop-management-sub011/internal/service/quote"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	adminToken string,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.POST("/pricing/quote", handleQuote(svcs))
	r.GET("/properties/:id/calendar/:month", handleGetCalendarMonth(svcs))

	r.POST("/bookings/hold", handleCreateHold(svcs, idem))
	r.GET("/bookings/:id", handleGetBooking(svcs))
	r.POST("/bookings/:id/confirm", handleConfirmBooking(svcs))
	r.POST("/bookings/:id/cancel", handleCancelBooking(svcs))

	// Admin API
	admin := r.Group("/admin", AdminAuth(adminToken))
	{
		admin.PUT("/properties/:id/pricing-config", handleUpsertPricingConfig(svcs))

		admin.GET("/properties/:id/seasons", handleListSeasons(svcs))
		admin.POST("/properties/:id/seasons", handleCreateSeason(svcs))
		admin.PUT("/properties/:id/seasons/:seasonID", handleUpdateSeason(svcs))
		admin.DELETE("/properties/:id/seasons/:seasonID", handleDeleteSeason(svcs))

		admin.PUT("/properties/:id/overrides", handleUpsertOverride(svcs))
		admin.DELETE("/properties/:id/overrides/:overrideID", handleDeleteOverride(svcs))

		admin.POST("/properties/:id/calendar/regenerate", handleRegenerateCalendar(svcs))
		admin.GET("/properties/:id/availability/:month", handleMonthStatuses(svcs))
		admin.GET("/properties/:id/bookings", handleListPropertyBookings(svcs))

		admin.POST("/bookings/:id/extend-hold", handleExtendHold(svcs))
		admin.POST("/bookings/:id/complete", handleCompleteBooking(svcs))
		admin.POST("/bookings/:id/payment-failed", handlePaymentFailed(svcs))

		admin.POST("/jobs/expire-holds", handleExpireHolds(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Quote a stay
// @Param    req body  QuoteRequest true "payload"
// @Success  200 {object} QuoteResponse
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse "no pricing config"
// @Router   /pricing/quote [post]
func handleQuote(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req QuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		checkIn, checkOut, ok := parseStayDates(c, req.CheckIn, req.CheckOut)
		if !ok {
			return
		}

		res, err := svcs.Quote.Quote(c.Request.Context(), quote.Request{
			PropertyID: req.PropertyID,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			GuestCount: req.GuestCount,
			CouponCode: req.CouponCode,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		if !res.Available {
			c.JSON(http.StatusOK, refusalBody(res.Refusal))
			return
		}
		c.JSON(http.StatusOK, QuoteResponse{Available: true, Pricing: res.Quote})
	}
}

// @Summary  Get price calendar month
// @Param    id     path  string  true  "Property ID"
// @Param    month  path  string  true  "YYYY-MM"
// @Success  200 {object} domain.PriceCalendarMonth
// @Failure  404 {object} ErrorResponse
// @Router   /properties/{id}/calendar/{month} [get]
func handleGetCalendarMonth(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ym, ok := parseMonthParam(c, "month")
		if !ok {
			return
		}
		cal, err := svcs.Calendar.Month(c.Request.Context(), c.Param("id"), ym)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, cal, "public, max-age=60", true)
	}
}

// @Summary  Create hold (idempotent)
// @Param    req body  CreateHoldRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} BookingResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} QuoteResponse "dates unavailable / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /bookings/hold [post]
func handleCreateHold(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateHoldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		checkIn, checkOut, ok := parseStayDates(c, req.CheckIn, req.CheckOut)
		if !ok {
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemHold(req.PropertyID, idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusCreated,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusCreated,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		releaseIdem := func() {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
		}

		rlKey := "ip:" + c.ClientIP()

		b, refusal, err := svcs.Booking.CreateHold(c.Request.Context(), booking.CreateHoldRequest{
			PropertyID: req.PropertyID,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			GuestCount: req.GuestCount,
			CouponCode: req.CouponCode,
		}, rlKey)
		if err != nil {
			releaseIdem()
			if errors.Is(err, booking.ErrRateLimited) {
				c.Header("Retry-After", "60")
				c.JSON(
					http.StatusTooManyRequests,
					ErrorResponse{Error: err.Error()},
				)
				return
			}
			respondErr(c, err)
			return
		}
		if refusal != nil {
			// Refusals are not cached against the key: availability may
			// change before the client retries.
			releaseIdem()
			c.JSON(http.StatusConflict, refusalBody(refusal))
			return
		}

		resp := toBookingResponse(b)

		if idemStorageKey != "" && idem != nil {
			body, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(body))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Get booking
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} BookingResponse
// @Failure  404 {object} ErrorResponse
// @Router   /bookings/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Booking.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  Confirm booking
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} BookingResponse
// @Failure  409 {object} ErrorResponse "not on hold"
// @Router   /bookings/{id}/confirm [post]
func handleConfirmBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Booking.Confirm(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  Cancel booking
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} BookingResponse
// @Failure  409 {object} ErrorResponse
// @Router   /bookings/{id}/cancel [post]
func handleCancelBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Booking.Cancel(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  Upsert pricing config
// @Param    id  path  string  true  "Property ID"
// @Param    req body  PricingConfigRequest true "payload"
// @Success  200 {object} map[string]string
// @Router   /admin/properties/{id}/pricing-config [put]
func handleUpsertPricingConfig(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PricingConfigRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		weekendDays := make([]time.Weekday, 0, len(req.WeekendDays))
		for _, name := range req.WeekendDays {
			wd, err := domain.ParseWeekday(name)
			if err != nil {
				badRequest(c, err.Error())
				return
			}
			weekendDays = append(weekendDays, wd)
		}

		cfg := &domain.PricingConfig{
			PropertyID:            c.Param("id"),
			BasePricePerNight:     req.BasePricePerNight,
			BaseOccupancy:         req.BaseOccupancy,
			ExtraGuestFeePerNight: req.ExtraGuestFeePerNight,
			CleaningFee:           req.CleaningFee,
			WeekendMultiplier:     req.WeekendMultiplier,
			WeekendDays:           weekendDays,
			DefaultMinimumStay:    req.DefaultMinimumStay,
			Currency:              req.Currency,
			HoldDurationHours:     req.HoldDurationHours,
			LOSDiscountNights:     req.LOSDiscountNights,
			LOSDiscountPercent:    req.LOSDiscountPercent,
		}

		if err := svcs.Admin.UpsertConfig(c.Request.Context(), cfg); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"propertyId": cfg.PropertyID})
	}
}

// @Summary  List season rules
// @Param    id    path   string  true   "Property ID"
// @Param    from  query  string  false  "YYYY-MM-DD"
// @Param    to    query  string  false  "YYYY-MM-DD"
// @Success  200 {array} SeasonResponse
// @Router   /admin/properties/{id}/seasons [get]
func handleListSeasons(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		from := domain.Day(time.Now())
		to := from.AddDate(1, 0, 0)

		if s := c.Query("from"); s != "" {
			t, err := domain.ParseDate(s)
			if err != nil {
				badRequest(c, err.Error())
				return
			}
			from = t
		}
		if s := c.Query("to"); s != "" {
			t, err := domain.ParseDate(s)
			if err != nil {
				badRequest(c, err.Error())
				return
			}
			to = t
		}

		rules, err := svcs.Admin.ListSeasons(c.Request.Context(), c.Param("id"), from, to)
		if err != nil {
			respondErr(c, err)
			return
		}

		out := make([]SeasonResponse, 0, len(rules))
		for _, r := range rules {
			out = append(out, toSeasonResponse(r))
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Create season rule
// @Param    id  path  string  true  "Property ID"
// @Param    req body  SeasonRequest true "payload"
// @Success  201 {object} SeasonResponse
// @Router   /admin/properties/{id}/seasons [post]
func handleCreateSeason(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule, ok := bindSeason(c, c.Param("id"), 0)
		if !ok {
			return
		}
		if err := svcs.Admin.CreateSeason(c.Request.Context(), rule); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, toSeasonResponse(*rule))
	}
}

// @Summary  Update season rule
// @Param    id        path  string  true  "Property ID"
// @Param    seasonID  path  int     true  "Season ID"
// @Param    req body  SeasonRequest true "payload"
// @Success  200 {object} SeasonResponse
// @Router   /admin/properties/{id}/seasons/{seasonID} [put]
func handleUpdateSeason(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		seasonID, ok := parseInt64Param(c, "seasonID")
		if !ok {
			return
		}
		rule, ok := bindSeason(c, c.Param("id"), seasonID)
		if !ok {
			return
		}
		if err := svcs.Admin.UpdateSeason(c.Request.Context(), rule); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toSeasonResponse(*rule))
	}
}

// @Summary  Delete season rule
// @Param    id        path  string  true  "Property ID"
// @Param    seasonID  path  int     true  "Season ID"
// @Success  204
// @Router   /admin/properties/{id}/seasons/{seasonID} [delete]
func handleDeleteSeason(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		seasonID, ok := parseInt64Param(c, "seasonID")
		if !ok {
			return
		}
		if err := svcs.Admin.DeleteSeason(c.Request.Context(), seasonID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Upsert date override
// @Param    id  path  string  true  "Property ID"
// @Param    req body  OverrideRequest true "payload"
// @Success  200 {object} map[string]string
// @Router   /admin/properties/{id}/overrides [put]
func handleUpsertOverride(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req OverrideRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		day, err := domain.ParseDate(req.Date)
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		ov := &domain.DateOverride{
			PropertyID:      c.Param("id"),
			Day:             day,
			FlatRate:        req.FlatRate,
			PriceMultiplier: req.PriceMultiplier,
			Available:       req.Available,
			MinimumStay:     req.MinimumStay,
		}

		if err := svcs.Admin.UpsertOverride(c.Request.Context(), ov); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"date": req.Date})
	}
}

// @Summary  Delete date override
// @Param    id          path  string  true  "Property ID"
// @Param    overrideID  path  int     true  "Override ID"
// @Success  204
// @Router   /admin/properties/{id}/overrides/{overrideID} [delete]
func handleDeleteOverride(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		overrideID, ok := parseInt64Param(c, "overrideID")
		if !ok {
			return
		}
		if err := svcs.Admin.DeleteOverride(c.Request.Context(), overrideID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Regenerate price calendar
// @Param    id  path  string  true  "Property ID"
// @Param    req body  RegenerateCalendarRequest true "payload"
// @Success  200 {object} RegenerateCalendarResponse
// @Router   /admin/properties/{id}/calendar/regenerate [post]
func handleRegenerateCalendar(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegenerateCalendarRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		months, err := svcs.Calendar.Materialize(c.Request.Context(), c.Param("id"), req.MonthsAhead)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, RegenerateCalendarResponse{Months: months})
	}
}

// @Summary  Get raw ledger month
// @Param    id     path  string  true  "Property ID"
// @Param    month  path  string  true  "YYYY-MM"
// @Success  200 {array} DayStatusResponse
// @Router   /admin/properties/{id}/availability/{month} [get]
func handleMonthStatuses(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ym, ok := parseMonthParam(c, "month")
		if !ok {
			return
		}
		statuses, err := svcs.Admin.MonthStatuses(c.Request.Context(), c.Param("id"), ym)
		if err != nil {
			respondErr(c, err)
			return
		}

		out := make([]DayStatusResponse, 0, len(statuses))
		for _, s := range statuses {
			d := DayStatusResponse{
				Day:              domain.FormatDate(s.Day),
				Available:        s.Available,
				ExternalBlockRef: s.ExternalBlockRef,
			}
			if s.HoldRef != nil {
				ref := s.HoldRef.String()
				d.HoldRef = &ref
			}
			out = append(out, d)
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  List property bookings
// @Param    id     path   string  true  "Property ID"
// @Param    limit  query  int     false "page size"
// @Param    offset query  int     false "offset"
// @Success  200 {array} BookingResponse
// @Router   /admin/properties/{id}/bookings [get]
func handleListPropertyBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseIntDefault(c.Query("limit"), 100)
		offset := parseIntDefault(c.Query("offset"), 0)

		bookings, err := svcs.Booking.ListByProperty(c.Request.Context(), c.Param("id"), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}

		out := make([]BookingResponse, 0, len(bookings))
		for i := range bookings {
			out = append(out, toBookingResponse(&bookings[i]))
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Extend hold
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Param    req body  ExtendHoldRequest true "payload"
// @Success  200 {object} BookingResponse
// @Failure  409 {object} ErrorResponse "not on hold"
// @Router   /admin/bookings/{id}/extend-hold [post]
func handleExtendHold(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req ExtendHoldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		b, err := svcs.Booking.ExtendHold(c.Request.Context(), id, req.Hours)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  Complete booking
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} BookingResponse
// @Router   /admin/bookings/{id}/complete [post]
func handleCompleteBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Booking.Complete(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  Mark payment failed
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} BookingResponse
// @Router   /admin/bookings/{id}/payment-failed [post]
func handlePaymentFailed(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Booking.MarkPaymentFailed(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  Run hold expiry sweep
// @Success  200 {object} booking.SweepResult
// @Router   /admin/jobs/expire-holds [post]
func handleExpireHolds(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svcs.Booking.ExpireSweep(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// --- Helpers ---

func bindSeason(c *gin.Context, propertyID string, seasonID int64) (*domain.SeasonRule, bool) {
	var req SeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return nil, false
	}
	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		badRequest(c, err.Error())
		return nil, false
	}
	end, err := domain.ParseDate(req.EndDate)
	if err != nil {
		badRequest(c, err.Error())
		return nil, false
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	return &domain.SeasonRule{
		ID:              seasonID,
		PropertyID:      propertyID,
		Name:            req.Name,
		StartDate:       start,
		EndDate:         end,
		PriceMultiplier: req.PriceMultiplier,
		MinimumStay:     req.MinimumStay,
		Enabled:         enabled,
		Rank:            domain.SeasonRank(req.Rank),
	}, true
}

func parseStayDates(c *gin.Context, checkIn, checkOut string) (time.Time, time.Time, bool) {
	in, err := domain.ParseDate(checkIn)
	if err != nil {
		badRequest(c, err.Error())
		return time.Time{}, time.Time{}, false
	}
	out, err := domain.ParseDate(checkOut)
	if err != nil {
		badRequest(c, err.Error())
		return time.Time{}, time.Time{}, false
	}
	return in, out, true
}

func parseMonthParam(c *gin.Context, name string) (domain.YearMonth, bool) {
	ym, err := domain.ParseYearMonth(c.Param(name))
	if err != nil {
		badRequest(c, err.Error())
		return "", false
	}
	return ym, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func refusalBody(r *domain.Refusal) QuoteResponse {
	return QuoteResponse{
		Available:        false,
		Reason:           string(r.Reason),
		UnavailableDates: r.UnavailableDates,
		MinimumStay:      r.MinimumStay,
	}
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// quote service
	case errors.Is(err, quote.ErrConfigMissing):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "property has no pricing config"})
		return
	case errors.Is(err, quote.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "check-out must be after check-in"})
		return
	case errors.Is(err, quote.ErrInvalidGuests):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "guest count must be positive"})
		return
	// calendar service
	case errors.Is(err, calendar.ErrConfigMissing):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "property has no pricing config"})
		return
	case errors.Is(err, calendar.ErrMonthNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "calendar month not found"})
		return
	// booking service
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	case errors.Is(err, booking.ErrNotOnHold):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking is not on hold"})
		return
	case errors.Is(err, booking.ErrInvalidStatus):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "invalid status transition"})
		return
	// admin service
	case errors.Is(err, adminsvc.ErrSeasonNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "season rule not found"})
		return
	case errors.Is(err, adminsvc.ErrOverrideNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "date override not found"})
		return
	case errors.Is(err, adminsvc.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date range"})
		return
	case errors.Is(err, adminsvc.ErrInvalidRank):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid season rank"})
		return
	// repository
	case errors.Is(err, repository.ErrDatesUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "dates unavailable"})
		return
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
