package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	createAppointment "github.com/m04kA/SMC-DetailingBooking/internal/usecase/create_appointment"
)

// CreateAppointmentRequest тело запроса POST /appointments
type CreateAppointmentRequest struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Email   string  `json:"email"`
	Vehicle string  `json:"vehicle"`
	Service string  `json:"service"`
	Date    string  `json:"date"`
	Time    string  `json:"time"`
	Note    *string `json:"note,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в запрос use case
func (r *CreateAppointmentRequest) ToUseCaseRequest() *createAppointment.Request {
	return &createAppointment.Request{
		Name:    r.Name,
		Phone:   r.Phone,
		Email:   r.Email,
		Vehicle: r.Vehicle,
		Service: r.Service,
		Date:    r.Date,
		Time:    r.Time,
		Note:    r.Note,
	}
}

// AppointmentResponse созданная запись
type AppointmentResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Vehicle      string    `json:"vehicle"`
	Service      string    `json:"service"`
	ServiceLabel string    `json:"service_label"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Note         *string   `json:"note,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:           resp.ID,
		Name:         resp.CustomerName,
		Phone:        resp.Phone,
		Email:        resp.Email,
		Vehicle:      resp.Vehicle,
		Service:      string(resp.Service),
		ServiceLabel: resp.Service.Label(),
		Date:         resp.SlotDate.Format(domain.DateFormat),
		Time:         resp.SlotTime.String(),
		Note:         resp.Note,
		Status:       string(resp.Status),
		CreatedAt:    resp.CreatedAt,
		UpdatedAt:    resp.UpdatedAt,
	}
}
