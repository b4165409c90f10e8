package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-DetailingBooking/internal/infra/storage/appointment"
	slotRepo "github.com/m04kA/SMC-DetailingBooking/internal/infra/storage/slot"
	"github.com/m04kA/SMC-DetailingBooking/pkg/types"
)

// Store хранилище в памяти процесса. Реализует те же контракты, что и
// PostgreSQL репозитории, и возвращает их ошибки.
// Транзакции выполняются по одной (txMu), откат идет по журналу отмены.
type Store struct {
	mu           sync.Mutex
	txMu         sync.Mutex
	appointments map[string]*domain.Appointment
	counters     map[domain.SlotKey]int
	now          func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		appointments: make(map[string]*domain.Appointment),
		counters:     make(map[domain.SlotKey]int),
		now:          time.Now,
	}
}

type txKey struct{}

type tx struct {
	undo []func()
}

func txFromContext(ctx context.Context) (*tx, bool) {
	t, ok := ctx.Value(txKey{}).(*tx)
	return t, ok
}

// record запоминает действие отмены, если идет транзакция. Вызывать под s.mu.
func record(ctx context.Context, undo func()) {
	if t, ok := txFromContext(ctx); ok {
		t.undo = append(t.undo, undo)
	}
}

// Do выполняет fn атомарно: при ошибке или панике изменения откатываются
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	t := &tx{}
	defer func() {
		if p := recover(); p != nil {
			s.rollback(t)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		s.rollback(t)
		return err
	}
	return nil
}

func (s *Store) rollback(t *tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
}

// Ping хранилище в памяти всегда доступно
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Create сохраняет копию записи
func (s *Store) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := clone(a)
	stored.SlotDate = domain.DateOnly(stored.SlotDate)
	now := s.now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.appointments[stored.ID] = stored
	record(ctx, func() { delete(s.appointments, stored.ID) })

	return clone(stored), nil
}

// GetByID возвращает копию записи
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return clone(a), nil
}

// List возвращает записи по фильтру в порядке слота и времени создания
func (s *Store) List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	result := make([]*domain.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		if filter.Matches(a) {
			result = append(result, clone(a))
		}
	}
	s.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.SlotDate.Equal(b.SlotDate) {
			return a.SlotDate.Before(b.SlotDate)
		}
		if a.SlotTime != b.SlotTime {
			return a.SlotTime.IsBefore(b.SlotTime)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	return result, nil
}

// UpdateStatus условно меняет статус from -> to
func (s *Store) UpdateStatus(ctx context.Context, id string, from, to domain.AppointmentStatus) (*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok || a.Status != from {
		return nil, appointmentRepo.ErrStatusChanged
	}

	prevStatus, prevUpdated := a.Status, a.UpdatedAt
	a.Status = to
	a.UpdatedAt = s.now().UTC()
	record(ctx, func() {
		a.Status = prevStatus
		a.UpdatedAt = prevUpdated
	})

	return clone(a), nil
}

// Delete удаляет запись и возвращает ее последнее состояние
func (s *Store) Delete(ctx context.Context, id string) (*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	delete(s.appointments, id)
	record(ctx, func() { s.appointments[id] = a })

	return clone(a), nil
}

// Reserve занимает место в слоте, если есть свободное
func (s *Store) Reserve(ctx context.Context, key domain.SlotKey, capacity int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key = domain.NewSlotKey(key.Date, key.Time)
	booked := s.counters[key]
	if booked >= capacity {
		return 0, slotRepo.ErrSlotFull
	}

	s.counters[key] = booked + 1
	record(ctx, func() { s.counters[key] = booked })

	return booked + 1, nil
}

// Release освобождает одно место в слоте
func (s *Store) Release(ctx context.Context, key domain.SlotKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key = domain.NewSlotKey(key.Date, key.Time)
	booked := s.counters[key]
	if booked <= 0 {
		return slotRepo.ErrCounterUnderflow
	}

	s.counters[key] = booked - 1
	record(ctx, func() { s.counters[key] = booked })

	return nil
}

// GetBookedCounts занятость слотов на дату
func (s *Store) GetBookedCounts(ctx context.Context, date time.Time) (map[types.TimeString]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	day := domain.DateOnly(date)
	counts := make(map[types.TimeString]int)
	for key, booked := range s.counters {
		if key.Date.Equal(day) {
			counts[key.Time] = booked
		}
	}
	return counts, nil
}

func clone(a *domain.Appointment) *domain.Appointment {
	c := *a
	if a.Note != nil {
		note := *a.Note
		c.Note = &note
	}
	return &c
}
