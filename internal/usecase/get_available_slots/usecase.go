package get_available_slots

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
)

// UseCase use case для получения слотов на дату
type UseCase struct {
	slotRepo     SlotRepository
	schedule     *domain.Schedule
	storeTimeout time.Duration
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(slotRepo SlotRepository, schedule *domain.Schedule, storeTimeout time.Duration, logger Logger) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		schedule:     schedule,
		storeTimeout: storeTimeout,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute возвращает слоты на дату в порядке времени.
// Выходные, праздники, прошедшие даты и даты за горизонтом дают пустой список без обращения к хранилищу.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: date=%s", req.Date)

	date, err := time.Parse(domain.DateFormat, strings.TrimSpace(req.Date))
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: invalid date %q: %v", req.Date, err)
		return nil, fmt.Errorf("%w: expected YYYY-MM-DD, got %q", ErrInvalidDate, req.Date)
	}
	date = domain.DateOnly(date)

	now := uc.timeProvider.Now()
	if !uc.schedule.IsBookableDate(date, now) {
		uc.logger.Info("GetAvailableSlots: %s is not bookable", req.Date)
		return &Response{Date: date, Slots: []Slot{}}, nil
	}

	storeCtx := ctx
	if uc.storeTimeout > 0 {
		var cancel context.CancelFunc
		storeCtx, cancel = context.WithTimeout(ctx, uc.storeTimeout)
		defer cancel()
	}

	booked, err := uc.slotRepo.GetBookedCounts(storeCtx, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get booked counts for %s: %v", req.Date, err)
		return nil, fmt.Errorf("%w: GetBookedCounts - %v", ErrStorageUnavailable, err)
	}

	built := uc.schedule.BuildSlots(date, booked, now)
	slots := make([]Slot, 0, len(built))
	for _, s := range built {
		slots = append(slots, Slot{
			Time:              s.Time,
			Available:         s.Available,
			RemainingCapacity: s.RemainingCapacity(),
			Capacity:          s.Capacity,
		})
	}

	uc.logger.Info("GetAvailableSlots: built %d slots for %s", len(slots), req.Date)

	return &Response{Date: date, Slots: slots}, nil
}
