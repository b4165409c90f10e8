package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-DetailingBooking/internal/infra/storage/appointment"
	slotRepo "github.com/m04kA/SMC-DetailingBooking/internal/infra/storage/slot"
	"github.com/m04kA/SMC-DetailingBooking/internal/service/appointments/models"
)

// Service сервис для работы с записями: просмотр, смена статуса, отмена и удаление
type Service struct {
	appointmentRepo AppointmentRepository
	slotRepo        SlotRepository
	txManager       TransactionManager
	publisher       EventPublisher
	storeTimeout    time.Duration
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	slotRepo SlotRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	storeTimeout time.Duration,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		slotRepo:        slotRepo,
		txManager:       txManager,
		publisher:       publisher,
		storeTimeout:    storeTimeout,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает запись по ID. Некорректный ID считается несуществующим.
func (s *Service) GetByID(ctx context.Context, id string) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%s", id)

	if !isValidID(id) {
		s.logger.Warn("GetByID: malformed id=%q", id)
		return nil, ErrAppointmentNotFound
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	a, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%s not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrStorageUnavailable, err)
	}

	return models.FromDomainAppointment(a), nil
}

// List получает записи по фильтрам
func (s *Service) List(ctx context.Context, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("List: status=%q, date=%q, service=%q, q=%q", req.Status, req.Date, req.Service, req.Query)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	list, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrStorageUnavailable, err)
	}

	s.logger.Info("List: fetched %d appointments", len(list))
	return models.FromDomainAppointmentList(list), nil
}

// UpdateStatus переводит запись в новый статус по машине состояний.
// Переход в cancelled освобождает место в слоте в той же транзакции.
func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateStatus: id=%s, status=%s", id, status)

	next, err := domain.ParseAppointmentStatus(status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status %q", status)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return s.transition(ctx, "UpdateStatus", id, next)
}

// Cancel отменяет запись и освобождает место в слоте
func (s *Service) Cancel(ctx context.Context, id string) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: id=%s", id)
	return s.transition(ctx, "Cancel", id, domain.StatusCancelled)
}

func (s *Service) transition(ctx context.Context, op, id string, next domain.AppointmentStatus) (*models.AppointmentResponse, error) {
	if !isValidID(id) {
		s.logger.Warn("%s: malformed id=%q", op, id)
		return nil, ErrAppointmentNotFound
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		updated  *domain.Appointment
		previous domain.AppointmentStatus
	)
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: %s - get appointment: %v", ErrStorageUnavailable, op, err)
		}

		if !current.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next)
		}
		previous = current.Status

		// Условное обновление: конкурентный переход из того же статуса получит ErrStatusChanged
		updated, err = s.appointmentRepo.UpdateStatus(txCtx, id, current.Status, next)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrStatusChanged) {
				return fmt.Errorf("%w: status of %s changed concurrently", ErrInvalidTransition, id)
			}
			return fmt.Errorf("%w: %s - update status: %v", ErrStorageUnavailable, op, err)
		}

		if previous.HoldsSlot() && !next.HoldsSlot() {
			if err := s.releaseSlot(txCtx, current.Slot()); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, s.logAndWrap(op, id, err)
	}

	s.logger.Info("%s: appointment id=%s moved %s -> %s", op, id, previous, next)

	eventType := domain.EventAppointmentStatusChanged
	if next == domain.StatusCancelled {
		eventType = domain.EventAppointmentCancelled
	}
	s.publish(ctx, op, domain.NewAppointmentEvent(eventType, updated, previous, s.timeProvider.Now()))

	return models.FromDomainAppointment(updated), nil
}

// Delete удаляет запись. Если запись занимала место (все статусы, кроме cancelled),
// счетчик слота уменьшается ровно один раз. Повторное удаление - ErrAppointmentNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.logger.Info("Delete: id=%s", id)

	if !isValidID(id) {
		s.logger.Warn("Delete: malformed id=%q", id)
		return ErrAppointmentNotFound
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var deleted *domain.Appointment
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		deleted, err = s.appointmentRepo.Delete(txCtx, id)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: Delete - delete appointment: %v", ErrStorageUnavailable, err)
		}

		if deleted.HoldsSlot() {
			return s.releaseSlot(txCtx, deleted.Slot())
		}
		return nil
	})

	if err != nil {
		return s.logAndWrap("Delete", id, err)
	}

	s.logger.Info("Delete: appointment id=%s deleted (status was %s)", id, deleted.Status)
	s.publish(ctx, "Delete", domain.NewAppointmentEvent(domain.EventAppointmentDeleted, deleted, deleted.Status, s.timeProvider.Now()))

	return nil
}

func (s *Service) releaseSlot(ctx context.Context, key domain.SlotKey) error {
	if err := s.slotRepo.Release(ctx, key); err != nil {
		if errors.Is(err, slotRepo.ErrCounterUnderflow) {
			// Счетчик уже ноль: данные рассинхронизированы, но инвариант booked_count >= 0 сохраняется
			s.logger.Error("releaseSlot: counter underflow for slot %s", key)
			return nil
		}
		return fmt.Errorf("%w: release slot %s: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *Service) logAndWrap(op, id string, err error) error {
	switch {
	case errors.Is(err, ErrAppointmentNotFound):
		s.logger.Warn("%s: appointment id=%s not found", op, id)
		return err
	case errors.Is(err, ErrInvalidTransition):
		s.logger.Warn("%s: appointment id=%s: %v", op, id, err)
		return err
	case errors.Is(err, ErrStorageUnavailable):
		s.logger.Error("%s: appointment id=%s: %v", op, id, err)
		return err
	default:
		s.logger.Error("%s: appointment id=%s: transaction error: %v", op, id, err)
		return fmt.Errorf("%w: %s - transaction: %v", ErrStorageUnavailable, op, err)
	}
}

func (s *Service) publish(ctx context.Context, op string, event domain.AppointmentEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("%s: failed to publish %s for id=%s: %v", op, event.Type, event.Appointment.ID, err)
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func isValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
