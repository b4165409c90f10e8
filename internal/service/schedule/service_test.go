package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	"github.com/m04kA/SMC-DetailingBooking/pkg/logger"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestGet(t *testing.T) {
	s, err := domain.NewSchedule(
		[]string{"08:00", "09:00"}, 3, time.UTC, 90, 30,
		[]string{"2025-12-25", "2025-11-20"},
	)
	require.NoError(t, err)

	svc := NewService(s, logger.NewNop()).
		WithTimeProvider(fixedClock{now: time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)})

	resp := svc.Get()

	assert.Equal(t, []string{"08:00", "09:00"}, resp.SlotTimes)
	assert.Equal(t, 3, resp.Capacity)
	assert.Equal(t, "UTC", resp.TimeZone)
	assert.Equal(t, "2025-06-09", resp.Today)
	require.NotNil(t, resp.BookableUntil)
	assert.Equal(t, "2025-09-07", *resp.BookableUntil)
	assert.Equal(t, []string{"2025-11-20", "2025-12-25"}, resp.ClosedDates)
	require.Len(t, resp.Services, len(domain.ServiceCategories))
	assert.Equal(t, "Proteção PPF (Película)", resp.Services[1].Label)
}

func TestGet_UnlimitedHorizon(t *testing.T) {
	s := domain.DefaultSchedule(time.UTC)
	s.AdvanceBookingDays = 0

	resp := NewService(s, logger.NewNop()).Get()
	assert.Nil(t, resp.BookableUntil)
}
