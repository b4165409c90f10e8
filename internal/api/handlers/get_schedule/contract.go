package get_schedule

import (
	"github.com/m04kA/SMC-DetailingBooking/internal/service/schedule/models"
)

type ScheduleService interface {
	Get() *models.ScheduleResponse
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
