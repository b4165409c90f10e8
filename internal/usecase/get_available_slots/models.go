package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-DetailingBooking/pkg/types"
)

// Request модель запроса на получение слотов
type Request struct {
	Date string // YYYY-MM-DD
}

// Response модель ответа со списком слотов на дату
type Response struct {
	Date  time.Time
	Slots []Slot // пусто для нерабочего дня
}

// Slot модель временного слота
type Slot struct {
	Time              types.TimeString // Время начала слота (например, "10:00")
	Available         bool             // Можно ли записаться
	RemainingCapacity int              // Свободные места
	Capacity          int              // Всего мест
}
