package domain

import "errors"

var (
	// ErrUnknownStatus возвращается при разборе неизвестного статуса записи
	ErrUnknownStatus = errors.New("domain: unknown appointment status")

	// ErrUnknownService возвращается при разборе неизвестной услуги
	ErrUnknownService = errors.New("domain: unknown service")

	// ErrInvalidSchedule возвращается при некорректной настройке расписания
	ErrInvalidSchedule = errors.New("domain: invalid schedule")
)
