package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-DetailingBooking/pkg/types"
)

// AppointmentStatus статус записи на обслуживание
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// transitions допустимые переходы статусов
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// ParseAppointmentStatus разбирает статус из строки
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	status := AppointmentStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// HoldsSlot true, если запись в этом статусе учтена в счетчике слота.
// Место освобождает только отмена или удаление, завершение его не меняет.
func (s AppointmentStatus) HoldsSlot() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCompleted
}

// IsTerminal true для статусов без исходящих переходов
func (s AppointmentStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo проверяет переход по машине состояний
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SlotKey идентифицирует слот: дата + время начала
type SlotKey struct {
	Date time.Time
	Time types.TimeString
}

// NewSlotKey нормализует дату до полуночи UTC, чтобы ключи были сравнимы
func NewSlotKey(date time.Time, t types.TimeString) SlotKey {
	return SlotKey{Date: DateOnly(date), Time: t}
}

func (k SlotKey) String() string {
	return k.Date.Format(DateFormat) + " " + k.Time.String()
}

// Appointment запись клиента на слот
type Appointment struct {
	ID           string
	CustomerName string
	Phone        string
	Email        string
	Vehicle      string
	Service      ServiceCategory
	SlotDate     time.Time
	SlotTime     types.TimeString
	Note         *string
	Status       AppointmentStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Slot возвращает ключ слота записи
func (a *Appointment) Slot() SlotKey {
	return NewSlotKey(a.SlotDate, a.SlotTime)
}

// HoldsSlot true, если запись учитывается в счетчике слота
func (a *Appointment) HoldsSlot() bool {
	return a.Status.HoldsSlot()
}

// AppointmentsFilter фильтр списка записей
type AppointmentsFilter struct {
	Status  *AppointmentStatus
	Date    *time.Time
	Service *ServiceCategory
	Search  string // подстрока в имени, email, телефоне или автомобиле
}

// Matches проверяет запись на соответствие фильтру
func (f AppointmentsFilter) Matches(a *Appointment) bool {
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.Date != nil && !DateOnly(a.SlotDate).Equal(DateOnly(*f.Date)) {
		return false
	}
	if f.Service != nil && a.Service != *f.Service {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		haystack := strings.ToLower(a.CustomerName + " " + a.Email + " " + a.Phone + " " + a.Vehicle)
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}
