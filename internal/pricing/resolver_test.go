package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b-coman/prop-management-sub011/internal/domain"
)

func testConfig() domain.PricingConfig {
	return domain.PricingConfig{
		PropertyID:         "villa-aurora",
		BasePricePerNight:  523,
		BaseOccupancy:      4,
		WeekendMultiplier:  1.3155,
		WeekendDays:        []time.Weekday{time.Friday, time.Saturday},
		DefaultMinimumStay: 2,
		Currency:           "EUR",
	}
}

func date(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }
func ptrB(v bool) *bool       { return &v }

func TestResolve_Precedence(t *testing.T) {
	cfg := testConfig()

	season := domain.SeasonRule{
		ID: 1, PropertyID: cfg.PropertyID, Name: "summer",
		StartDate: date("2026-06-01"), EndDate: date("2026-08-31"),
		PriceMultiplier: 1.5, Enabled: true, Rank: domain.RankMedium,
	}

	t.Run("base price on a plain weekday", func(t *testing.T) {
		// 2026-03-04 is a Wednesday; no season covers it here.
		res := Resolve(cfg, nil, nil, date("2026-03-04"))
		assert.Equal(t, domain.SourceBase, res.Source)
		assert.InDelta(t, 523, res.Rate, 1e-9)
		assert.Equal(t, 2, res.MinimumStay)
	})

	t.Run("weekend multiplier on a Friday", func(t *testing.T) {
		res := Resolve(cfg, nil, nil, date("2026-03-06"))
		assert.Equal(t, domain.SourceWeekend, res.Source)
		assert.InDelta(t, 523*1.3155, res.Rate, 1e-9)
	})

	t.Run("season beats weekend", func(t *testing.T) {
		// 2026-06-05 is a Friday inside the season.
		res := Resolve(cfg, []domain.SeasonRule{season}, nil, date("2026-06-05"))
		assert.Equal(t, domain.SourceSeason, res.Source)
		assert.InDelta(t, 523*1.5, res.Rate, 1e-9)
	})

	t.Run("override flat rate beats season", func(t *testing.T) {
		ov := domain.DateOverride{
			ID: 1, PropertyID: cfg.PropertyID,
			Day: date("2026-06-05"), FlatRate: ptrF(999),
		}
		res := Resolve(cfg, []domain.SeasonRule{season}, []domain.DateOverride{ov}, date("2026-06-05"))
		assert.Equal(t, domain.SourceOverride, res.Source)
		assert.InDelta(t, 999, res.Rate, 1e-9)
	})

	t.Run("override multiplier applies to base, not season", func(t *testing.T) {
		ov := domain.DateOverride{
			ID: 2, PropertyID: cfg.PropertyID,
			Day: date("2026-06-05"), PriceMultiplier: ptrF(2),
		}
		res := Resolve(cfg, []domain.SeasonRule{season}, []domain.DateOverride{ov}, date("2026-06-05"))
		assert.Equal(t, domain.SourceOverride, res.Source)
		assert.InDelta(t, 523*2, res.Rate, 1e-9)
	})

	t.Run("disabled season is ignored", func(t *testing.T) {
		off := season
		off.Enabled = false
		res := Resolve(cfg, []domain.SeasonRule{off}, nil, date("2026-06-03"))
		assert.Equal(t, domain.SourceBase, res.Source)
	})
}

func TestResolve_SeasonTieBreaks(t *testing.T) {
	cfg := testConfig()
	day := date("2026-07-15")

	wide := domain.SeasonRule{
		ID: 1, Name: "summer",
		StartDate: date("2026-06-01"), EndDate: date("2026-08-31"),
		PriceMultiplier: 1.2, Enabled: true, Rank: domain.RankStandard,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	narrow := domain.SeasonRule{
		ID: 2, Name: "july-peak",
		StartDate: date("2026-07-01"), EndDate: date("2026-07-31"),
		PriceMultiplier: 1.6, Enabled: true, Rank: domain.RankStandard,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	high := domain.SeasonRule{
		ID: 3, Name: "festival",
		StartDate: date("2026-07-10"), EndDate: date("2026-07-20"),
		PriceMultiplier: 2.0, Enabled: true, Rank: domain.RankHigh,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("higher rank wins", func(t *testing.T) {
		res := Resolve(cfg, []domain.SeasonRule{wide, narrow, high}, nil, day)
		assert.InDelta(t, 523*2.0, res.Rate, 1e-9)
	})

	t.Run("equal rank goes to the narrower range", func(t *testing.T) {
		res := Resolve(cfg, []domain.SeasonRule{wide, narrow}, nil, day)
		assert.InDelta(t, 523*1.6, res.Rate, 1e-9)
	})

	t.Run("equal rank and span goes to the newest", func(t *testing.T) {
		older := narrow
		newer := narrow
		newer.ID = 4
		newer.PriceMultiplier = 1.8
		newer.CreatedAt = older.CreatedAt.Add(time.Hour)

		res := Resolve(cfg, []domain.SeasonRule{older, newer}, nil, day)
		assert.InDelta(t, 523*1.8, res.Rate, 1e-9)

		// Order of the input slice must not matter.
		res = Resolve(cfg, []domain.SeasonRule{newer, older}, nil, day)
		assert.InDelta(t, 523*1.8, res.Rate, 1e-9)
	})
}

func TestResolve_MinimumStay(t *testing.T) {
	cfg := testConfig()

	season := domain.SeasonRule{
		ID: 1, StartDate: date("2026-07-01"), EndDate: date("2026-07-31"),
		PriceMultiplier: 1.5, MinimumStay: ptrI(5),
		Enabled: true, Rank: domain.RankStandard,
	}

	t.Run("default without rules", func(t *testing.T) {
		res := Resolve(cfg, nil, nil, date("2026-03-04"))
		assert.Equal(t, 2, res.MinimumStay)
	})

	t.Run("season minimum wins over default", func(t *testing.T) {
		res := Resolve(cfg, []domain.SeasonRule{season}, nil, date("2026-07-15"))
		assert.Equal(t, 5, res.MinimumStay)
	})

	t.Run("override minimum wins over season", func(t *testing.T) {
		ov := domain.DateOverride{
			ID: 1, Day: date("2026-07-15"),
			FlatRate: ptrF(700), MinimumStay: ptrI(3),
		}
		res := Resolve(cfg, []domain.SeasonRule{season}, []domain.DateOverride{ov}, date("2026-07-15"))
		assert.Equal(t, 3, res.MinimumStay)
	})

	t.Run("override without minimum keeps the season's", func(t *testing.T) {
		ov := domain.DateOverride{ID: 2, Day: date("2026-07-15"), FlatRate: ptrF(700)}
		res := Resolve(cfg, []domain.SeasonRule{season}, []domain.DateOverride{ov}, date("2026-07-15"))
		assert.Equal(t, 5, res.MinimumStay)
	})
}

func TestResolve_OutputIsBaseOccupancyRate(t *testing.T) {
	// Guest-count fees must never leak into the resolver: the rate for a
	// weekend day stays base × multiplier no matter the occupancy config.
	cfg := testConfig()
	cfg.ExtraGuestFeePerNight = 25

	res := Resolve(cfg, nil, nil, date("2026-03-06"))
	require.Equal(t, domain.SourceWeekend, res.Source)
	assert.InDelta(t, 523*1.3155, res.Rate, 1e-9)
}
