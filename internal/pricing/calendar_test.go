package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b-coman/prop-management-sub011/internal/domain"
)

func TestBuildMonth_Idempotent(t *testing.T) {
	cfg := testConfig()
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	seasons := []domain.SeasonRule{{
		ID: 1, StartDate: date("2026-07-01"), EndDate: date("2026-07-10"),
		PriceMultiplier: 1.5, Enabled: true, Rank: domain.RankStandard,
	}}
	overrides := []domain.DateOverride{{
		ID: 1, Day: date("2026-07-20"), FlatRate: ptrF(750),
	}}
	blocked := map[int]bool{4: true, 5: true}

	a := BuildMonth(cfg, seasons, overrides, blocked, "2026-07", now)
	b := BuildMonth(cfg, seasons, overrides, blocked, "2026-07", now)

	assert.Equal(t, a.Days, b.Days)
	assert.Equal(t, a.Summary, b.Summary)
}

func TestBuildMonth_Days(t *testing.T) {
	cfg := testConfig()
	now := time.Now()

	seasons := []domain.SeasonRule{{
		ID: 1, StartDate: date("2026-07-01"), EndDate: date("2026-07-10"),
		PriceMultiplier: 1.5, Enabled: true, Rank: domain.RankStandard,
	}}
	blocked := map[int]bool{15: true}

	cal := BuildMonth(cfg, seasons, nil, blocked, "2026-07", now)

	require.Len(t, cal.Days, 31)
	assert.Equal(t, "villa-aurora", cal.PropertyID)
	assert.Equal(t, domain.YearMonth("2026-07"), cal.Month)

	t.Run("season day", func(t *testing.T) {
		d := cal.Days[5]
		assert.Equal(t, domain.SourceSeason, d.Source)
		assert.InDelta(t, 523*1.5, d.AdjustedPrice, 1e-9)
		assert.InDelta(t, 523, d.BasePrice, 1e-9)
		assert.True(t, d.Available)
	})

	t.Run("base-occupancy price carries the resolved rate", func(t *testing.T) {
		for _, d := range cal.Days {
			assert.InDelta(t, d.AdjustedPrice, d.BaseOccupancyPrice, 1e-9)
		}
	})

	t.Run("weekend day outside the season", func(t *testing.T) {
		// 2026-07-17 is a Friday.
		d := cal.Days[17]
		assert.Equal(t, domain.SourceWeekend, d.Source)
		assert.InDelta(t, 523*1.3155, d.AdjustedPrice, 1e-9)
	})

	t.Run("blocked day keeps its price but is unavailable", func(t *testing.T) {
		d := cal.Days[15]
		assert.False(t, d.Available)
		assert.Greater(t, d.AdjustedPrice, 0.0)
	})
}

func TestBuildMonth_OverrideBlocksDay(t *testing.T) {
	cfg := testConfig()

	overrides := []domain.DateOverride{{
		ID: 1, Day: date("2026-07-08"), Available: ptrB(false),
	}}

	cal := BuildMonth(cfg, nil, overrides, nil, "2026-07", time.Now())

	d := cal.Days[8]
	assert.False(t, d.Available)
	assert.Equal(t, domain.SourceOverride, d.Source)
	assert.Equal(t, 1, cal.Summary.UnavailableDays)
}

func TestBuildMonth_Summary(t *testing.T) {
	cfg := testConfig()

	seasons := []domain.SeasonRule{{
		ID: 1, StartDate: date("2026-07-01"), EndDate: date("2026-07-10"),
		PriceMultiplier: 1.5, Enabled: true, Rank: domain.RankStandard,
	}}
	overrides := []domain.DateOverride{{
		ID: 1, Day: date("2026-07-20"), FlatRate: ptrF(990),
	}}
	blocked := map[int]bool{2: true, 3: true}

	cal := BuildMonth(cfg, seasons, overrides, blocked, "2026-07", time.Now())

	s := cal.Summary
	assert.InDelta(t, 523, s.MinPrice, 1e-9)
	assert.InDelta(t, 990, s.MaxPrice, 1e-9)
	assert.Greater(t, s.AvgPrice, s.MinPrice)
	assert.Less(t, s.AvgPrice, s.MaxPrice)
	assert.Equal(t, 2, s.UnavailableDays)
	assert.True(t, s.HasSeasonalRates)
	assert.True(t, s.HasCustomPrices)
}

func TestBuildMonth_PlainMonthHasNoFlags(t *testing.T) {
	cfg := testConfig()
	cfg.WeekendDays = nil

	cal := BuildMonth(cfg, nil, nil, nil, "2026-03", time.Now())

	s := cal.Summary
	assert.InDelta(t, 523, s.MinPrice, 1e-9)
	assert.InDelta(t, 523, s.MaxPrice, 1e-9)
	assert.InDelta(t, 523, s.AvgPrice, 1e-9)
	assert.Zero(t, s.UnavailableDays)
	assert.Zero(t, s.ModifiedDays)
	assert.False(t, s.HasSeasonalRates)
	assert.False(t, s.HasCustomPrices)
}
