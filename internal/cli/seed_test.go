package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	"github.com/m04kA/SMC-DetailingBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-DetailingBooking/internal/integrations/notifier"
	createAppointmentUC "github.com/m04kA/SMC-DetailingBooking/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-DetailingBooking/pkg/logger"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestSeedAppointments_RespectsCapacity(t *testing.T) {
	now := time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC) // понедельник
	schedule := domain.DefaultSchedule(time.UTC)
	store := memory.NewStore()

	uc := createAppointmentUC.NewUseCase(
		store, store, store, notifier.NoopPublisher{}, nil, schedule, time.Second, logger.NewNop(),
	).WithTimeProvider(fixedClock{now: now})

	// 1 день * 8 слотов * 3 места = 24 места, 40 попыток
	created, skipped, err := seedAppointments(context.Background(), uc, schedule, now, seedOptions{count: 40, days: 1, seed: 7})
	require.NoError(t, err)

	assert.Equal(t, 40, created+skipped)
	assert.LessOrEqual(t, created, 24)

	counts, err := store.GetBookedCounts(context.Background(), time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	total := 0
	for _, c := range counts {
		assert.LessOrEqual(t, c, schedule.Capacity)
		total += c
	}
	assert.Equal(t, created, total)
}

func TestBookableDates_SkipsWeekend(t *testing.T) {
	now := time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC) // четверг
	schedule := domain.DefaultSchedule(time.UTC)

	dates := bookableDates(schedule, now, 3)

	require.Len(t, dates, 3)
	assert.Equal(t, "2025-06-13", dates[0].Format(domain.DateFormat))
	assert.Equal(t, "2025-06-16", dates[1].Format(domain.DateFormat))
	assert.Equal(t, "2025-06-17", dates[2].Format(domain.DateFormat))
}
