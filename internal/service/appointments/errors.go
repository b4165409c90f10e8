package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointments: appointment not found")

	// ErrInvalidTransition возвращается при переходе, запрещенном машиной состояний
	ErrInvalidTransition = errors.New("appointments: status transition not allowed")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("appointments: invalid input data")

	// ErrStorageUnavailable возвращается, когда хранилище не ответило или вернуло ошибку
	ErrStorageUnavailable = errors.New("appointments: storage unavailable")
)
