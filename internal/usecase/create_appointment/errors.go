package create_appointment

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrSlotNotAvailable возвращается, когда слот заполнен или закрыт для записи
	ErrSlotNotAvailable = errors.New("create_appointment: slot is not available")

	// ErrStorageUnavailable возвращается, когда хранилище не ответило или вернуло ошибку
	ErrStorageUnavailable = errors.New("create_appointment: storage unavailable")
)

// ValidationError ошибка валидации конкретного поля
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrInvalidInput, e.Field, e.Message)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrInvalidInput)
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
