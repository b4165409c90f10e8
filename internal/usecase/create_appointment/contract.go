package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
}

// SlotRepository интерфейс счетчиков занятости слотов
type SlotRepository interface {
	Reserve(ctx context.Context, key domain.SlotKey, capacity int) (int, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher публикует доменные события
type EventPublisher interface {
	Publish(ctx context.Context, event domain.AppointmentEvent) error
}

// ReservationObserver учитывает исходы резервирования в метриках
type ReservationObserver interface {
	ObserveReservation(result string)
}

type noopObserver struct{}

func (noopObserver) ObserveReservation(string) {}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
