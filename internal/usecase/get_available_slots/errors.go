package get_available_slots

import "errors"

var (
	// ErrInvalidDate возвращается при некорректном формате даты
	ErrInvalidDate = errors.New("get_available_slots: invalid date")

	// ErrStorageUnavailable возвращается, когда хранилище не ответило или вернуло ошибку
	ErrStorageUnavailable = errors.New("get_available_slots: storage unavailable")
)
