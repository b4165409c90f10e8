package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	"github.com/m04kA/SMC-DetailingBooking/pkg/types"
)

// Request модель запроса на запись. Поля приходят из формы как есть.
type Request struct {
	Name    string  // Имя клиента
	Phone   string  // Телефон, допускается форматирование
	Email   string  // Email
	Vehicle string  // Марка и модель автомобиля
	Service string  // Код услуги или ее название
	Date    string  // YYYY-MM-DD
	Time    string  // HH:MM
	Note    *string // Комментарий (опционально)
}

// Response модель ответа с созданной записью
type Response struct {
	ID           string
	CustomerName string
	Phone        string
	Email        string
	Vehicle      string
	Service      domain.ServiceCategory
	SlotDate     time.Time
	SlotTime     types.TimeString
	Note         *string
	Status       domain.AppointmentStatus
	BookedCount  int // занятость слота после резервирования
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// validated нормализованный запрос после валидации
type validated struct {
	name    string
	phone   string
	email   string
	vehicle string
	service domain.ServiceCategory
	date    time.Time
	time    types.TimeString
	note    *string
}
