package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
)

// Request модели

// ListRequest фильтры списка записей, строки из query-параметров
type ListRequest struct {
	Status  string
	Date    string
	Service string
	Query   string
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{Search: strings.TrimSpace(r.Query)}

	if r.Status != "" {
		status, err := domain.ParseAppointmentStatus(r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	if r.Date != "" {
		date, err := time.Parse(domain.DateFormat, r.Date)
		if err != nil {
			return filter, fmt.Errorf("date must be in YYYY-MM-DD format")
		}
		date = domain.DateOnly(date)
		filter.Date = &date
	}

	if r.Service != "" {
		service, err := domain.ParseServiceCategory(r.Service)
		if err != nil {
			return filter, err
		}
		filter.Service = &service
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Vehicle      string    `json:"vehicle"`
	Service      string    `json:"service"`
	ServiceLabel string    `json:"service_label"`
	Date         string    `json:"date"` // "2025-06-10"
	Time         string    `json:"time"` // "09:00"
	Note         *string   `json:"note,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	return &AppointmentResponse{
		ID:           a.ID,
		Name:         a.CustomerName,
		Phone:        a.Phone,
		Email:        a.Email,
		Vehicle:      a.Vehicle,
		Service:      string(a.Service),
		ServiceLabel: a.Service.Label(),
		Date:         a.SlotDate.Format(domain.DateFormat),
		Time:         a.SlotTime.String(),
		Note:         a.Note,
		Status:       string(a.Status),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(list []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(list)),
	}

	for _, a := range list {
		if item := FromDomainAppointment(a); item != nil {
			resp.Appointments = append(resp.Appointments, *item)
		}
	}
	resp.Total = len(resp.Appointments)

	return resp
}
