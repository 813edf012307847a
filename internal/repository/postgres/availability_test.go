package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b-coman/prop-management-sub011/internal/repository"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock
}

func TestAvailabilityCheckRange(t *testing.T) {
	in := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	out := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)

	t.Run("collects every conflicting date", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewStore(mock).Availability()

		mock.ExpectQuery(`(?s)SELECT day FROM availability_days.*external_block_ref IS NOT NULL`).
			WithArgs("villa-aurora", in, out).
			WillReturnRows(pgxmock.NewRows([]string{"day"}).
				AddRow(in).
				AddRow(in.AddDate(0, 0, 2)))

		ok, conflicts, err := repo.CheckRange(context.Background(), "villa-aurora", in, out)

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, []time.Time{in, in.AddDate(0, 0, 2)}, conflicts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no conflicting rows means available", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewStore(mock).Availability()

		mock.ExpectQuery(`SELECT day FROM availability_days`).
			WithArgs("villa-aurora", in, out).
			WillReturnRows(pgxmock.NewRows([]string{"day"}))

		ok, conflicts, err := repo.CheckRange(context.Background(), "villa-aurora", in, out)

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, conflicts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAvailabilityBlock(t *testing.T) {
	in := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	out := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	ref := uuid.New()
	holdUntil := time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)

	t.Run("claims every night", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewStore(mock).Availability().With(mock)

		mock.ExpectExec(`(?s)UPDATE availability_days.*hold_expires_at <= now\(\)`).
			WithArgs("villa-aurora", in, out).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectExec(`(?s)INSERT INTO availability_days.*WHERE availability_days\.available = TRUE`).
			WithArgs("villa-aurora", in, out, ref, &holdUntil).
			WillReturnResult(pgxmock.NewResult("INSERT", 2))

		err := repo.Block(context.Background(), "villa-aurora", in, out, ref, &holdUntil)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("partial claim reports dates unavailable", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewStore(mock).Availability().With(mock)

		mock.ExpectExec(`UPDATE availability_days`).
			WithArgs("villa-aurora", in, out).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectExec(`INSERT INTO availability_days`).
			WithArgs("villa-aurora", in, out, ref, &holdUntil).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Block(context.Background(), "villa-aurora", in, out, ref, &holdUntil)

		assert.ErrorIs(t, err, repository.ErrDatesUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAvailabilityRelease_KeepsExternalBlocks(t *testing.T) {
	mock := newMockPool(t)
	repo := NewStore(mock).Availability()

	in := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	out := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
	ref := uuid.New()

	// Releasing a hold only reopens days without an external block: an
	// admin block placed while the hold was live must survive the release.
	mock.ExpectExec(`(?s)UPDATE availability_days.*SET available = \(external_block_ref IS NULL\), hold_ref = NULL`).
		WithArgs("villa-aurora", in, out, ref).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	err := repo.Release(context.Background(), "villa-aurora", in, out, ref)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityBlockExternal_RecordsBlockOverLiveHold(t *testing.T) {
	mock := newMockPool(t)
	repo := NewStore(mock).Availability()

	from := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	// The upsert ends on the SET list: no guard may skip rows currently
	// claimed by a hold, or the block would vanish when the hold lapses.
	mock.ExpectExec(`(?s)INSERT INTO availability_days.*external_block_ref = EXCLUDED\.external_block_ref$`).
		WithArgs("villa-aurora", from, to, "override:41").
		WillReturnResult(pgxmock.NewResult("INSERT", 3))

	err := repo.BlockExternal(context.Background(), "villa-aurora", from, to, "override:41")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
