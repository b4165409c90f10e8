package create_appointment

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	"github.com/m04kA/SMC-DetailingBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-DetailingBooking/pkg/logger"
	"github.com/m04kA/SMC-DetailingBooking/pkg/ptr"
	"github.com/m04kA/SMC-DetailingBooking/pkg/types"
)

// 2025-06-09 понедельник, 10:00 UTC
var fixedNow = time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.AppointmentEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.AppointmentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type countingObserver struct {
	mu      sync.Mutex
	results map[string]int
}

func (o *countingObserver) ObserveReservation(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.results == nil {
		o.results = map[string]int{}
	}
	o.results[result]++
}

type fixture struct {
	uc        *UseCase
	store     *memory.Store
	publisher *recordingPublisher
	observer  *countingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	publisher := &recordingPublisher{}
	observer := &countingObserver{}
	uc := NewUseCase(store, store, store, publisher, observer, domain.DefaultSchedule(time.UTC), time.Second, logger.NewNop()).
		WithTimeProvider(fixedClock{now: fixedNow})
	return &fixture{uc: uc, store: store, publisher: publisher, observer: observer}
}

func validRequest() *Request {
	return &Request{
		Name:    "Maria Souza",
		Phone:   "(11) 98765-4321",
		Email:   "maria@example.com",
		Vehicle: "Honda Civic 2020",
		Service: "ceramic_coating",
		Date:    "2025-06-10",
		Time:    "09:00",
		Note:    ptr.Ptr("Carro preto"),
	}
}

func bookedAt(t *testing.T, store *memory.Store, date string, slot string) int {
	t.Helper()
	d, err := time.Parse(domain.DateFormat, date)
	require.NoError(t, err)
	counts, err := store.GetBookedCounts(context.Background(), d)
	require.NoError(t, err)
	return counts[types.TimeString(slot)]
}

func TestExecute_CreatesPendingAppointment(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, domain.StatusPending, resp.Status)
	assert.Equal(t, 1, resp.BookedCount)

	// поля клиента возвращаются без изменений
	stored, err := f.store.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", stored.CustomerName)
	assert.Equal(t, "(11) 98765-4321", stored.Phone)
	assert.Equal(t, "maria@example.com", stored.Email)
	assert.Equal(t, "Honda Civic 2020", stored.Vehicle)
	assert.Equal(t, domain.ServiceCeramicCoating, stored.Service)
	assert.Equal(t, "2025-06-10", stored.SlotDate.Format(domain.DateFormat))
	assert.Equal(t, "09:00", stored.SlotTime.String())
	require.NotNil(t, stored.Note)
	assert.Equal(t, "Carro preto", *stored.Note)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, domain.EventAppointmentCreated, f.publisher.events[0].Type)
	assert.Equal(t, 1, f.observer.results[resultCreated])
}

func TestExecute_CapacityScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.uc.Execute(ctx, validRequest())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, bookedAt(t, f.store, "2025-06-10", "09:00"))

	_, err := f.uc.Execute(ctx, validRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, 3, bookedAt(t, f.store, "2025-06-10", "09:00"))

	list, err := f.store.List(ctx, domain.AppointmentsFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestExecute_ConcurrentReservations(t *testing.T) {
	f := newFixture(t)
	const attempts = 25

	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Execute(context.Background(), validRequest())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, rejected := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSlotNotAvailable):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, attempts-3, rejected)
	assert.Equal(t, 3, bookedAt(t, f.store, "2025-06-10", "09:00"))
}

func TestExecute_InvalidEmailLeavesSlotUntouched(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.Email = "maria.example.com"

	_, err := f.uc.Execute(context.Background(), req)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 0, bookedAt(t, f.store, "2025-06-10", "09:00"))
	assert.Empty(t, f.publisher.events)
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *Request)
		field  string
	}{
		{"empty name", func(r *Request) { r.Name = "  " }, "name"},
		{"short name", func(r *Request) { r.Name = "Al" }, "name"},
		{"short phone", func(r *Request) { r.Phone = "98765-432" }, "phone"},
		{"letters in phone", func(r *Request) { r.Phone = "11 9876S-4321" }, "phone"},
		{"empty vehicle", func(r *Request) { r.Vehicle = "" }, "vehicle"},
		{"unknown service", func(r *Request) { r.Service = "lavagem" }, "service"},
		{"bad date", func(r *Request) { r.Date = "10/06/2025" }, "date"},
		{"past date", func(r *Request) { r.Date = "2025-06-06" }, "date"},
		{"beyond horizon", func(r *Request) { r.Date = "2025-12-01" }, "date"},
		{"bad time", func(r *Request) { r.Time = "9h" }, "time"},
		{"single digit hour", func(r *Request) { r.Time = "9:00" }, "time"},
		{"not a slot", func(r *Request) { r.Time = "12:00" }, "time"},
		{"long note", func(r *Request) { r.Note = ptr.Ptr(strings.Repeat("a", 501)) }, "note"},
		{"nul in name", func(r *Request) { r.Name = "Maria\x00Souza" }, "name"},
		{"nul in vehicle", func(r *Request) { r.Vehicle = "Civic\x00" }, "vehicle"},
		{"control char in email", func(r *Request) { r.Email = "maria\x1b@example.com" }, "email"},
		{"nul in note", func(r *Request) { r.Note = ptr.Ptr("ok\x00") }, "note"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := validRequest()
			tt.modify(req)

			_, err := f.uc.Execute(context.Background(), req)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestExecute_KeepsFieldsAsSubmitted(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.Name = "  Maria Souza "
	req.Vehicle = "Civic 2020\t"
	req.Note = ptr.Ptr("linha 1\nlinha 2 ")

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	stored, err := f.store.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "  Maria Souza ", stored.CustomerName)
	assert.Equal(t, "Civic 2020\t", stored.Vehicle)
	require.NotNil(t, stored.Note)
	assert.Equal(t, "linha 1\nlinha 2 ", *stored.Note)
}

func TestExecute_ClosedSlots(t *testing.T) {
	tests := []struct {
		name string
		date string
		time string
	}{
		{"saturday", "2025-06-14", "09:00"},
		{"sunday", "2025-06-15", "10:00"},
		{"today already started", "2025-06-09", "09:00"},
		{"today at current hour", "2025-06-09", "10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := validRequest()
			req.Date, req.Time = tt.date, tt.time

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrSlotNotAvailable)
		})
	}
}

func TestExecute_LaterSlotToday(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.Date, req.Time = "2025-06-09", "11:00"

	_, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
}

func TestExecute_ServiceLabelAndCountryCode(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.Service = "Proteção PPF (Película)"
	req.Phone = "+55 11 98765-4321"
	req.Note = ptr.Ptr("   ")

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.ServicePPFProtection, resp.Service)
	assert.Nil(t, resp.Note)
}

func TestExecute_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
}

type failingAppointments struct{}

func (failingAppointments) Create(context.Context, *domain.Appointment) (*domain.Appointment, error) {
	return nil, errors.New("disk full")
}

func TestExecute_StorageFailureRollsBackReservation(t *testing.T) {
	store := memory.NewStore()
	uc := NewUseCase(failingAppointments{}, store, store, &recordingPublisher{}, &countingObserver{},
		domain.DefaultSchedule(time.UTC), time.Second, logger.NewNop()).
		WithTimeProvider(fixedClock{now: fixedNow})

	_, err := uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Equal(t, 0, bookedAt(t, store, "2025-06-10", "09:00"))
}
