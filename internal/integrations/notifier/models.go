package notifier

import (
	"time"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
)

// EventPayload JSON тело сообщения о записи
type EventPayload struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	OccurredAt     time.Time `json:"occurred_at"`
	AppointmentID  string    `json:"appointment_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	CustomerName   string    `json:"customer_name"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Vehicle        string    `json:"vehicle"`
	Service        string    `json:"service"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
}

func newPayload(eventID string, e domain.AppointmentEvent) EventPayload {
	a := e.Appointment
	return EventPayload{
		EventID:        eventID,
		EventType:      string(e.Type),
		OccurredAt:     e.OccurredAt,
		AppointmentID:  a.ID,
		Status:         string(a.Status),
		PreviousStatus: string(e.PreviousStatus),
		CustomerName:   a.CustomerName,
		Phone:          a.Phone,
		Email:          a.Email,
		Vehicle:        a.Vehicle,
		Service:        string(a.Service),
		Date:           a.SlotDate.Format(domain.DateFormat),
		Time:           a.SlotTime.String(),
	}
}
