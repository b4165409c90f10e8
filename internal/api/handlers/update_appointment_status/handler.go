package update_appointment_status

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-DetailingBooking/internal/api/handlers"
	appointmentsService "github.com/m04kA/SMC-DetailingBooking/internal/service/appointments"
)

const (
	msgInvalidRequestBody  = "corpo da requisição inválido"
	msgMissingStatus       = "status é obrigatório"
	msgInvalidStatus       = "status inválido, use pending, confirmed, completed ou cancelled"
	msgAppointmentNotFound = "agendamento não encontrado"
	msgInvalidTransition   = "mudança de status não permitida"
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

// Handle PATCH /appointments/{id}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/status - Invalid request body: id=%s, error=%v", id, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		h.logger.Warn("PATCH /appointments/{id}/status - Missing status: id=%s", id)
		handlers.RespondValidationError(w, "status", msgMissingStatus)
		return
	}

	result, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, appointmentsService.ErrInvalidInput):
			h.logger.Warn("PATCH /appointments/{id}/status - Invalid status: id=%s, status=%s", id, req.Status)
			handlers.RespondValidationError(w, "status", msgInvalidStatus)

		case errors.Is(err, appointmentsService.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/status - Appointment not found: id=%s", id)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, appointmentsService.ErrInvalidTransition):
			h.logger.Warn("PATCH /appointments/{id}/status - Transition not allowed: id=%s, status=%s", id, req.Status)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, appointmentsService.ErrStorageUnavailable):
			h.logger.Error("PATCH /appointments/{id}/status - Storage unavailable: id=%s, error=%v", id, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("PATCH /appointments/{id}/status - Failed to update status: id=%s, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/status - Status updated: id=%s, status=%s", id, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
