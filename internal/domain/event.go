package domain

import "time"

// EventType тип доменного события записи
type EventType string

const (
	EventAppointmentCreated       EventType = "appointment.created"
	EventAppointmentStatusChanged EventType = "appointment.status_changed"
	EventAppointmentCancelled     EventType = "appointment.cancelled"
	EventAppointmentDeleted       EventType = "appointment.deleted"
)

// AppointmentEvent событие, публикуемое после фиксации изменений
type AppointmentEvent struct {
	Type           EventType
	Appointment    *Appointment
	PreviousStatus AppointmentStatus // пусто для created
	OccurredAt     time.Time
}

// NewAppointmentEvent создает событие по записи
func NewAppointmentEvent(t EventType, a *Appointment, previous AppointmentStatus, at time.Time) AppointmentEvent {
	return AppointmentEvent{
		Type:           t,
		Appointment:    a,
		PreviousStatus: previous,
		OccurredAt:     at.UTC(),
	}
}
