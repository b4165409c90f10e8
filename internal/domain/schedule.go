package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-DetailingBooking/pkg/types"
)

// Schedule календарь приема: фиксированные слоты, вместимость и ограничения записи
type Schedule struct {
	Times                   []types.TimeString
	Capacity                int
	Location                *time.Location
	AdvanceBookingDays      int // 0 = без ограничения
	MinBookingNoticeMinutes int
	ClosedDates             map[string]struct{} // YYYY-MM-DD
}

// NewSchedule собирает расписание из настроек
func NewSchedule(times []string, capacity int, loc *time.Location, advanceDays, noticeMinutes int, closedDates []string) (*Schedule, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrInvalidSchedule)
	}
	if loc == nil {
		loc = time.UTC
	}

	s := &Schedule{
		Capacity:                capacity,
		Location:                loc,
		AdvanceBookingDays:      advanceDays,
		MinBookingNoticeMinutes: noticeMinutes,
		ClosedDates:             make(map[string]struct{}, len(closedDates)),
	}

	seen := make(map[types.TimeString]struct{}, len(times))
	for _, raw := range times {
		t, err := types.NewTimeStringFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: slot time %q: %v", ErrInvalidSchedule, raw, err)
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		s.Times = append(s.Times, t)
	}
	if len(s.Times) == 0 {
		return nil, fmt.Errorf("%w: no slot times", ErrInvalidSchedule)
	}
	sort.Slice(s.Times, func(i, j int) bool { return s.Times[i].IsBefore(s.Times[j]) })

	for _, raw := range closedDates {
		d, err := time.Parse(DateFormat, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: closed date %q: %v", ErrInvalidSchedule, raw, err)
		}
		s.ClosedDates[d.Format(DateFormat)] = struct{}{}
	}

	return s, nil
}

// DefaultSchedule расписание по умолчанию: 8 слотов, 3 места
func DefaultSchedule(loc *time.Location) *Schedule {
	if loc == nil {
		loc = time.UTC
	}
	return &Schedule{
		Times:                   append([]types.TimeString(nil), DefaultSlotTimes...),
		Capacity:                DefaultSlotCapacity,
		Location:                loc,
		AdvanceBookingDays:      DefaultAdvanceBookingDays,
		MinBookingNoticeMinutes: DefaultMinBookingNoticeMinutes,
		ClosedDates:             map[string]struct{}{},
	}
}

// DateOnly отбрасывает время, оставляя календарную дату в UTC
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today текущая дата в часовом поясе мастерской
func (s *Schedule) Today(now time.Time) time.Time {
	return DateOnly(now.In(s.Location))
}

// IsSlotTime проверяет, что время входит в список слотов
func (s *Schedule) IsSlotTime(t types.TimeString) bool {
	for _, st := range s.Times {
		if st == t {
			return true
		}
	}
	return false
}

// IsClosed true для выходных дней (суббота, воскресенье) и праздников
func (s *Schedule) IsClosed(date time.Time) bool {
	d := DateOnly(date)
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return true
	}
	_, closed := s.ClosedDates[d.Format(DateFormat)]
	return closed
}

// IsBusinessDay рабочий день не в прошлом
func (s *Schedule) IsBusinessDay(date, now time.Time) bool {
	return !s.IsClosed(date) && !DateOnly(date).Before(s.Today(now))
}

// IsWithinHorizon дата не дальше advanceBookingDays от сегодня
func (s *Schedule) IsWithinHorizon(date, now time.Time) bool {
	if s.AdvanceBookingDays <= 0 {
		return true
	}
	limit := s.Today(now).AddDate(0, 0, s.AdvanceBookingDays)
	return !DateOnly(date).After(limit)
}

// IsBookableDate рабочий день в пределах горизонта записи
func (s *Schedule) IsBookableDate(date, now time.Time) bool {
	return s.IsBusinessDay(date, now) && s.IsWithinHorizon(date, now)
}

// IsSlotOpen слот можно бронировать по календарю (без учета заполненности).
// Сегодняшние слоты закрываются за MinBookingNoticeMinutes до начала.
func (s *Schedule) IsSlotOpen(date time.Time, t types.TimeString, now time.Time) bool {
	if !s.IsSlotTime(t) || !s.IsBookableDate(date, now) {
		return false
	}
	if !DateOnly(date).Equal(s.Today(now)) {
		return true
	}
	start := t.On(DateOnly(date), s.Location)
	deadline := now.Add(time.Duration(s.MinBookingNoticeMinutes) * time.Minute)
	return start.After(deadline)
}

// Slot состояние слота на дату
type Slot struct {
	Time      types.TimeString
	Capacity  int
	Booked    int
	Available bool
}

// RemainingCapacity свободные места, не меньше нуля
func (s Slot) RemainingCapacity() int {
	if s.Booked >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Booked
}

// BuildSlots строит слоты на дату по счетчикам занятости.
// Для нерабочего дня возвращает пустой список.
func (s *Schedule) BuildSlots(date time.Time, booked map[types.TimeString]int, now time.Time) []Slot {
	if !s.IsBookableDate(date, now) {
		return []Slot{}
	}

	slots := make([]Slot, 0, len(s.Times))
	for _, t := range s.Times {
		slot := Slot{
			Time:     t,
			Capacity: s.Capacity,
			Booked:   booked[t],
		}
		slot.Available = slot.Booked < slot.Capacity && s.IsSlotOpen(date, t, now)
		slots = append(slots, slot)
	}
	return slots
}
