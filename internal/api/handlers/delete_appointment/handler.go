package delete_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-DetailingBooking/internal/api/handlers"
	appointmentsService "github.com/m04kA/SMC-DetailingBooking/internal/service/appointments"
)

const (
	msgAppointmentNotFound = "agendamento não encontrado"
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

// Handle DELETE /appointments/{id}
// Повторное удаление возвращает 404.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, appointmentsService.ErrAppointmentNotFound):
			h.logger.Warn("DELETE /appointments/{id} - Appointment not found: id=%s", id)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, appointmentsService.ErrStorageUnavailable):
			h.logger.Error("DELETE /appointments/{id} - Storage unavailable: id=%s, error=%v", id, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("DELETE /appointments/{id} - Failed to delete: id=%s, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /appointments/{id} - Appointment deleted: id=%s", id)
	handlers.RespondNoContent(w)
}
