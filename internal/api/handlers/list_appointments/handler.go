package list_appointments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-DetailingBooking/internal/api/handlers"
	appointmentsService "github.com/m04kA/SMC-DetailingBooking/internal/service/appointments"
)

const (
	msgInvalidFilter = "filtro inválido, verifique status, data e serviço"

	// HeaderTotalCount количество записей в ответе
	HeaderTotalCount = "X-Total-Count"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /appointments
// Query params: status, date (YYYY-MM-DD), service, q (поиск по имени, email, телефону, автомобилю)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req := ToServiceRequest(r.URL.Query())

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointmentsService.ErrInvalidInput):
			h.logger.Warn("GET /appointments - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFilter)

		case errors.Is(err, appointmentsService.ErrStorageUnavailable):
			h.logger.Error("GET /appointments - Storage unavailable: %v", err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("GET /appointments - Failed to list appointments: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /appointments - Appointments retrieved: count=%d", result.Total)
	w.Header().Set(HeaderTotalCount, strconv.Itoa(result.Total))
	handlers.RespondJSON(w, http.StatusOK, result.Appointments)
}
