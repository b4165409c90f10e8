package appointments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	"github.com/m04kA/SMC-DetailingBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-DetailingBooking/internal/service/appointments/models"
	"github.com/m04kA/SMC-DetailingBooking/pkg/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.AppointmentEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.AppointmentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var key = domain.NewSlotKey(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), "09:00")

type fixture struct {
	svc       *Service
	store     *memory.Store
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	publisher := &recordingPublisher{}
	svc := NewService(store, store, store, publisher, time.Second, logger.NewNop())
	return &fixture{svc: svc, store: store, publisher: publisher}
}

// book резервирует место и создает запись так же, как это делает резервирование
func (f *fixture) book(t *testing.T, name string, status domain.AppointmentStatus) string {
	t.Helper()
	id := uuid.NewString()
	err := f.store.Do(context.Background(), func(ctx context.Context) error {
		if status.HoldsSlot() {
			if _, err := f.store.Reserve(ctx, key, 3); err != nil {
				return err
			}
		}
		_, err := f.store.Create(ctx, &domain.Appointment{
			ID:           id,
			CustomerName: name,
			Phone:        "11987654321",
			Email:        "cliente@example.com",
			Vehicle:      "VW Golf",
			Service:      domain.ServiceFullDetailing,
			SlotDate:     key.Date,
			SlotTime:     key.Time,
			Status:       status,
		})
		return err
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) booked(t *testing.T) int {
	t.Helper()
	counts, err := f.store.GetBookedCounts(context.Background(), key.Date)
	require.NoError(t, err)
	return counts[key.Time]
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, "Ana Paula", domain.StatusPending)

	resp, err := f.svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Ana Paula", resp.Name)
	assert.Equal(t, "2025-06-10", resp.Date)
	assert.Equal(t, "09:00", resp.Time)
	assert.Equal(t, "Detalhamento Completo", resp.ServiceLabel)

	_, err = f.svc.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = f.svc.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	f.book(t, "Ana Paula", domain.StatusPending)
	f.book(t, "Bruno Dias", domain.StatusCancelled)

	all, err := f.svc.List(context.Background(), &models.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	pending, err := f.svc.List(context.Background(), &models.ListRequest{Status: "pending"})
	require.NoError(t, err)
	require.Equal(t, 1, pending.Total)
	assert.Equal(t, "Ana Paula", pending.Appointments[0].Name)

	search, err := f.svc.List(context.Background(), &models.ListRequest{Query: "bruno"})
	require.NoError(t, err)
	assert.Equal(t, 1, search.Total)

	_, err = f.svc.List(context.Background(), &models.ListRequest{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.List(context.Background(), &models.ListRequest{Date: "06/10/2025"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateStatus_StateMachine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.book(t, "Ana Paula", domain.StatusPending)

	_, err := f.svc.UpdateStatus(ctx, id, "completed")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	resp, err := f.svc.UpdateStatus(ctx, id, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, 1, f.booked(t), "confirmation keeps the seat")

	resp, err = f.svc.UpdateStatus(ctx, id, "completed")
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 1, f.booked(t), "completion does not touch the counter")

	_, err = f.svc.UpdateStatus(ctx, id, "cancelled")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.UpdateStatus(ctx, id, "unknown")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, []domain.EventType{
		domain.EventAppointmentStatusChanged,
		domain.EventAppointmentStatusChanged,
	}, f.publisher.types())

	require.NoError(t, f.svc.Delete(ctx, id))
	assert.Equal(t, 0, f.booked(t), "deleting a completed appointment frees the seat")
}

func TestCancel_ReleasesSlotOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.book(t, "Ana Paula", domain.StatusConfirmed)
	f.book(t, "Bruno Dias", domain.StatusPending)
	require.Equal(t, 2, f.booked(t))

	resp, err := f.svc.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, 1, f.booked(t))

	_, err = f.svc.Cancel(ctx, id)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 1, f.booked(t))

	// удаление отмененной записи не трогает счетчик
	require.NoError(t, f.svc.Delete(ctx, id))
	assert.Equal(t, 1, f.booked(t))
}

func TestCancel_ConcurrentDoubleCancel(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, "Ana Paula", domain.StatusPending)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Cancel(context.Background(), id)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, f.booked(t))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.book(t, "Ana Paula", domain.StatusPending)
	require.Equal(t, 1, f.booked(t))

	require.NoError(t, f.svc.Delete(ctx, id))
	assert.Equal(t, 0, f.booked(t))

	_, err := f.svc.GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	err = f.svc.Delete(ctx, id)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.Equal(t, 0, f.booked(t))

	assert.ErrorIs(t, f.svc.Delete(ctx, "garbage"), ErrAppointmentNotFound)
	assert.Equal(t, []domain.EventType{domain.EventAppointmentDeleted}, f.publisher.types())
}

func TestDelete_ConcurrentWithCancel(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, "Ana Paula", domain.StatusConfirmed)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = f.svc.Cancel(context.Background(), id)
	}()
	go func() {
		defer wg.Done()
		_ = f.svc.Delete(context.Background(), id)
	}()
	wg.Wait()

	assert.Equal(t, 0, f.booked(t))
}
