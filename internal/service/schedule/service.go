package schedule

import (
	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	"github.com/m04kA/SMC-DetailingBooking/internal/service/schedule/models"
)

// Service отдает настройки календаря записи
type Service struct {
	schedule     *domain.Schedule
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(schedule *domain.Schedule, logger Logger) *Service {
	return &Service{
		schedule:     schedule,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Get возвращает сетку слотов, вместимость, горизонт записи и список услуг
func (s *Service) Get() *models.ScheduleResponse {
	today := s.schedule.Today(s.timeProvider.Now())

	var until *string
	if s.schedule.AdvanceBookingDays > 0 {
		u := today.AddDate(0, 0, s.schedule.AdvanceBookingDays).Format(domain.DateFormat)
		until = &u
	}

	s.logger.Info("GetSchedule: today=%s", today.Format(domain.DateFormat))
	return models.FromDomainSchedule(s.schedule, today.Format(domain.DateFormat), until)
}
