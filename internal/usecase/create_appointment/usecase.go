package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	slotRepo "github.com/m04kA/SMC-DetailingBooking/internal/infra/storage/slot"
)

// Исходы резервирования для метрик
const (
	resultCreated  = "created"
	resultSlotFull = "slot_unavailable"
	resultInvalid  = "invalid"
	resultError    = "error"
)

// UseCase use case для записи клиента на слот
type UseCase struct {
	appointmentRepo AppointmentRepository
	slotRepo        SlotRepository
	txManager       TransactionManager
	publisher       EventPublisher
	observer        ReservationObserver
	schedule        *domain.Schedule
	storeTimeout    time.Duration
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	slotRepo SlotRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	observer ReservationObserver,
	schedule *domain.Schedule,
	storeTimeout time.Duration,
	logger Logger,
) *UseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	return &UseCase{
		appointmentRepo: appointmentRepo,
		slotRepo:        slotRepo,
		txManager:       txManager,
		publisher:       publisher,
		observer:        observer,
		schedule:        schedule,
		storeTimeout:    storeTimeout,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute резервирует место в слоте и создает запись в статусе pending.
// Инкремент счетчика и вставка записи идут в одной транзакции:
// либо оба изменения видны, либо ни одного.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: date=%s, time=%s, service=%s", req.Date, req.Time, req.Service)

	// 1. Валидация полей формы
	v, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		uc.observer.ObserveReservation(resultInvalid)
		return nil, err
	}

	// 2. Проверка по календарю
	now := uc.timeProvider.Now()
	if err := validateSchedule(uc.schedule, v, now); err != nil {
		uc.logger.Warn("CreateAppointment: slot %s %s rejected: %v", req.Date, req.Time, err)
		if errors.Is(err, ErrSlotNotAvailable) {
			uc.observer.ObserveReservation(resultSlotFull)
		} else {
			uc.observer.ObserveReservation(resultInvalid)
		}
		return nil, err
	}

	key := domain.NewSlotKey(v.date, v.time)
	appointment := &domain.Appointment{
		ID:           uuid.NewString(),
		CustomerName: v.name,
		Phone:        v.phone,
		Email:        v.email,
		Vehicle:      v.vehicle,
		Service:      v.service,
		SlotDate:     v.date,
		SlotTime:     v.time,
		Note:         v.note,
		Status:       domain.StatusPending,
	}

	storeCtx := ctx
	if uc.storeTimeout > 0 {
		var cancel context.CancelFunc
		storeCtx, cancel = context.WithTimeout(ctx, uc.storeTimeout)
		defer cancel()
	}

	// 3. Резервирование и вставка в одной транзакции
	var (
		created *domain.Appointment
		booked  int
	)
	err = uc.txManager.Do(storeCtx, func(txCtx context.Context) error {
		n, err := uc.slotRepo.Reserve(txCtx, key, uc.schedule.Capacity)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotFull) {
				return ErrSlotNotAvailable
			}
			return fmt.Errorf("%w: Reserve - slot %s: %v", ErrStorageUnavailable, key, err)
		}
		booked = n

		created, err = uc.appointmentRepo.Create(txCtx, appointment)
		if err != nil {
			return fmt.Errorf("%w: Create - appointment: %v", ErrStorageUnavailable, err)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrSlotNotAvailable) {
			uc.logger.Warn("CreateAppointment: slot %s is full", key)
			uc.observer.ObserveReservation(resultSlotFull)
			return nil, err
		}
		uc.logger.Error("CreateAppointment: failed to reserve slot %s: %v", key, err)
		uc.observer.ObserveReservation(resultError)
		if !errors.Is(err, ErrStorageUnavailable) {
			err = fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return nil, err
	}

	uc.observer.ObserveReservation(resultCreated)
	uc.logger.Info("CreateAppointment: created appointment id=%s, slot %s now %d/%d",
		created.ID, key, booked, uc.schedule.Capacity)

	// 4. Событие публикуется после фиксации, ошибка не влияет на результат
	event := domain.NewAppointmentEvent(domain.EventAppointmentCreated, created, "", now)
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("CreateAppointment: failed to publish event for id=%s: %v", created.ID, err)
	}

	return &Response{
		ID:           created.ID,
		CustomerName: created.CustomerName,
		Phone:        created.Phone,
		Email:        created.Email,
		Vehicle:      created.Vehicle,
		Service:      created.Service,
		SlotDate:     created.SlotDate,
		SlotTime:     created.SlotTime,
		Note:         created.Note,
		Status:       created.Status,
		BookedCount:  booked,
		CreatedAt:    created.CreatedAt,
		UpdatedAt:    created.UpdatedAt,
	}, nil
}
