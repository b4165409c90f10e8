package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelAppointmentHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/create_appointment"
	deleteAppointmentHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/delete_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/get_available_slots"
	getScheduleHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/get_schedule"
	healthHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/health"
	listAppointmentsHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/list_appointments"
	updateAppointmentStatusHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/update_appointment_status"
	"github.com/m04kA/SMC-DetailingBooking/internal/api/middleware"
	"github.com/m04kA/SMC-DetailingBooking/pkg/metrics"
)

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Handlers набор HTTP обработчиков сервиса
type Handlers struct {
	GetAvailableSlots       *getAvailableSlotsHandler.Handler
	CreateAppointment       *createAppointmentHandler.Handler
	ListAppointments        *listAppointmentsHandler.Handler
	GetAppointment          *getAppointmentHandler.Handler
	UpdateAppointmentStatus *updateAppointmentStatusHandler.Handler
	CancelAppointment       *cancelAppointmentHandler.Handler
	DeleteAppointment       *deleteAppointmentHandler.Handler
	GetSchedule             *getScheduleHandler.Handler
	Health                  *healthHandler.Handler
}

// Options настройки роутера
type Options struct {
	Metrics         *metrics.Metrics // nil - метрики выключены
	MetricsPath     string
	ServiceName     string
	AdminTokenHash  string             // пустой - админские маршруты открыты
	Limiter         middleware.Limiter // nil - без ограничения частоты записи
	LimiterFailOpen bool
	TrustProxy      bool // IP клиента из X-Forwarded-For
}

// NewRouter собирает маршруты и middleware
func NewRouter(h Handlers, opts Options, logger Logger) http.Handler {
	r := mux.NewRouter()

	if opts.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(opts.Metrics, opts.ServiceName))
		r.Handle(opts.MetricsPath, promhttp.Handler()).Methods(http.MethodGet)
		logger.Info("HTTP metrics middleware enabled, endpoint %s", opts.MetricsPath)
	}

	// Health
	r.HandleFunc("/health/live", h.Health.Live).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", h.Health.Ready).Methods(http.MethodGet)

	// Публичные маршруты (форма записи)
	r.HandleFunc("/schedule", h.GetSchedule.Handle).Methods(http.MethodGet)
	r.HandleFunc("/slots/{date}", h.GetAvailableSlots.Handle).Methods(http.MethodGet)

	var create http.Handler = http.HandlerFunc(h.CreateAppointment.Handle)
	if opts.Limiter != nil {
		create = middleware.RateLimit(opts.Limiter, opts.LimiterFailOpen, opts.TrustProxy, logger)(create)
		logger.Info("Rate limit enabled for POST /appointments")
	}
	r.Handle("/appointments", create).Methods(http.MethodPost)

	// Админские маршруты
	admin := middleware.AdminAuth(opts.AdminTokenHash, logger)
	if opts.AdminTokenHash == "" {
		logger.Warn("Admin token hash is empty, admin routes are not protected")
	}

	r.Handle("/appointments", admin(http.HandlerFunc(h.ListAppointments.Handle))).Methods(http.MethodGet)
	r.Handle("/appointments/{id}", admin(http.HandlerFunc(h.GetAppointment.Handle))).Methods(http.MethodGet)
	r.Handle("/appointments/{id}", admin(http.HandlerFunc(h.DeleteAppointment.Handle))).Methods(http.MethodDelete)
	r.Handle("/appointments/{id}/status", admin(http.HandlerFunc(h.UpdateAppointmentStatus.Handle))).Methods(http.MethodPatch)
	r.Handle("/appointments/{id}/cancel", admin(http.HandlerFunc(h.CancelAppointment.Handle))).Methods(http.MethodPatch)

	var handler http.Handler = r
	handler = middleware.AccessLog(logger)(handler)
	handler = middleware.Recover(logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
