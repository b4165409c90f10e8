package domain

import "github.com/m04kA/SMC-DetailingBooking/pkg/types"

// Значения расписания по умолчанию
const (
	DefaultSlotCapacity            = 3
	DefaultAdvanceBookingDays      = 90 // ~3 месяца вперед
	DefaultMinBookingNoticeMinutes = 0
	DefaultTimeZone                = "America/Sao_Paulo"
)

// Ограничения бизнес-валидации
const (
	MinNameLength   = 3
	MaxFieldLength  = 200
	MaxNoteLength   = 500
	MinPhoneDigits  = 10
	MaxPhoneDigits  = 11
	PhoneCountryDDI = "55"
)

// Форматы даты и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// DefaultSlotTimes фиксированные слоты рабочего дня (обеденный перерыв 12:00)
var DefaultSlotTimes = []types.TimeString{
	"08:00", "09:00", "10:00", "11:00",
	"13:00", "14:00", "15:00", "16:00",
}

// HoldingStatuses статусы, учтенные в счетчике слота
var HoldingStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}
