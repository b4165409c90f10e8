package get_available_slots

import (
	getAvailableSlots "github.com/m04kA/SMC-DetailingBooking/internal/usecase/get_available_slots"
)

// AvailableSlot модель временного слота в ответе
type AvailableSlot struct {
	Time              string `json:"time"`
	Available         bool   `json:"available"`
	RemainingCapacity int    `json:"remaining_capacity"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response.
// Для нерабочего дня возвращается пустой массив, а не null.
func FromUseCaseResponse(resp *getAvailableSlots.Response) []AvailableSlot {
	slots := make([]AvailableSlot, 0, len(resp.Slots))
	for _, slot := range resp.Slots {
		slots = append(slots, AvailableSlot{
			Time:              slot.Time.String(),
			Available:         slot.Available,
			RemainingCapacity: slot.RemainingCapacity,
		})
	}
	return slots
}
