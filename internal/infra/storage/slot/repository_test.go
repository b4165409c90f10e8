package slot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	"github.com/m04kA/SMC-DetailingBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-DetailingBooking/pkg/types"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(dbmetrics.Wrap(db, nil, "test")), mock
}

var key = domain.NewSlotKey(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), "09:00")

func TestRepository_Reserve(t *testing.T) {
	t.Run("reserved", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(`INSERT INTO slot_counters \(slot_date,slot_time,booked_count\) VALUES \(\$1,\$2,\$3\) ON CONFLICT \(slot_date, slot_time\) DO UPDATE .* WHERE slot_counters.booked_count < \$4 RETURNING booked_count`).
			WithArgs(key.Date, types.TimeString("09:00"), 1, 3).
			WillReturnRows(sqlmock.NewRows([]string{"booked_count"}).AddRow(2))

		booked, err := repo.Reserve(context.Background(), key, 3)
		require.NoError(t, err)
		assert.Equal(t, 2, booked)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("full", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(`INSERT INTO slot_counters`).
			WillReturnRows(sqlmock.NewRows([]string{"booked_count"}))

		_, err := repo.Reserve(context.Background(), key, 3)
		assert.ErrorIs(t, err, ErrSlotFull)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(`INSERT INTO slot_counters`).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.Reserve(context.Background(), key, 3)
		assert.ErrorIs(t, err, ErrExecQuery)
	})
}

func TestRepository_Release(t *testing.T) {
	t.Run("released", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec(`UPDATE slot_counters SET booked_count = booked_count - 1, updated_at = NOW\(\) WHERE slot_date = \$1 AND slot_time = \$2 AND booked_count > \$3`).
			WithArgs(key.Date, types.TimeString("09:00"), 0).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Release(context.Background(), key))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("underflow", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec(`UPDATE slot_counters`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Release(context.Background(), key), ErrCounterUnderflow)
	})
}

func TestRepository_GetBookedCounts(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`SELECT slot_time, booked_count FROM slot_counters WHERE slot_date = \$1`).
		WithArgs(key.Date).
		WillReturnRows(sqlmock.NewRows([]string{"slot_time", "booked_count"}).
			AddRow("09:00", 3).
			AddRow("14:00", 1))

	counts, err := repo.GetBookedCounts(context.Background(), key.Date)
	require.NoError(t, err)
	assert.Equal(t, map[types.TimeString]int{"09:00": 3, "14:00": 1}, counts)
}
