package models

import (
	"sort"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
)

// ScheduleResponse настройки календаря записи
type ScheduleResponse struct {
	SlotTimes               []string          `json:"slot_times"`
	Capacity                int               `json:"capacity"`
	TimeZone                string            `json:"time_zone"`
	AdvanceBookingDays      int               `json:"advance_booking_days"` // 0 = без ограничения
	MinBookingNoticeMinutes int               `json:"min_booking_notice_minutes"`
	ClosedDates             []string          `json:"closed_dates"`
	Today                   string            `json:"today"`
	BookableUntil           *string           `json:"bookable_until,omitempty"`
	Services                []ServiceResponse `json:"services"`
}

// ServiceResponse услуга для выбора в форме
type ServiceResponse struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// FromDomainSchedule конвертирует расписание в DTO на момент today
func FromDomainSchedule(s *domain.Schedule, today string, bookableUntil *string) *ScheduleResponse {
	resp := &ScheduleResponse{
		SlotTimes:               make([]string, 0, len(s.Times)),
		Capacity:                s.Capacity,
		TimeZone:                s.Location.String(),
		AdvanceBookingDays:      s.AdvanceBookingDays,
		MinBookingNoticeMinutes: s.MinBookingNoticeMinutes,
		ClosedDates:             make([]string, 0, len(s.ClosedDates)),
		Today:                   today,
		BookableUntil:           bookableUntil,
		Services:                make([]ServiceResponse, 0, len(domain.ServiceCategories)),
	}

	for _, t := range s.Times {
		resp.SlotTimes = append(resp.SlotTimes, t.String())
	}
	for d := range s.ClosedDates {
		resp.ClosedDates = append(resp.ClosedDates, d)
	}
	sort.Strings(resp.ClosedDates)

	for _, c := range domain.ServiceCategories {
		resp.Services = append(resp.Services, ServiceResponse{Code: string(c), Label: c.Label()})
	}

	return resp
}
