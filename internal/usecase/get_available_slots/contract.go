package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DetailingBooking/pkg/types"
)

// SlotRepository интерфейс счетчиков занятости слотов
type SlotRepository interface {
	// GetBookedCounts занятость слотов на дату
	GetBookedCounts(ctx context.Context, date time.Time) (map[types.TimeString]int, error)
}

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
