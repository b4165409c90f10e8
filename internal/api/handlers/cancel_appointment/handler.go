package cancel_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-DetailingBooking/internal/api/handlers"
	appointmentsService "github.com/m04kA/SMC-DetailingBooking/internal/service/appointments"
)

const (
	msgAppointmentNotFound = "agendamento não encontrado"
	msgCannotCancel        = "agendamento não pode ser cancelado"
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

// Handle PATCH /appointments/{id}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, appointmentsService.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/cancel - Appointment not found: id=%s", id)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, appointmentsService.ErrInvalidTransition):
			h.logger.Warn("PATCH /appointments/{id}/cancel - Cannot cancel: id=%s", id)
			handlers.RespondConflict(w, msgCannotCancel)

		case errors.Is(err, appointmentsService.ErrStorageUnavailable):
			h.logger.Error("PATCH /appointments/{id}/cancel - Storage unavailable: id=%s, error=%v", id, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("PATCH /appointments/{id}/cancel - Failed to cancel: id=%s, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/cancel - Appointment cancelled: id=%s", id)
	handlers.RespondJSON(w, http.StatusOK, result)
}
