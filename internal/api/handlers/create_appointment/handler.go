package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DetailingBooking/internal/api/handlers"
	createAppointment "github.com/m04kA/SMC-DetailingBooking/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "corpo da requisição inválido"
	msgInvalidInput       = "dados inválidos"
	msgSlotNotAvailable   = "horário indisponível, escolha outro horário"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		var validationErr *createAppointment.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.logger.Warn("POST /appointments - Validation failed: field=%s, message=%s", validationErr.Field, validationErr.Message)
			handlers.RespondValidationError(w, validationErr.Field, validationErr.Message)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createAppointment.ErrSlotNotAvailable):
			h.logger.Warn("POST /appointments - Slot not available: date=%s, time=%s", req.Date, req.Time)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createAppointment.ErrStorageUnavailable):
			h.logger.Error("POST /appointments - Storage unavailable: date=%s, time=%s, error=%v", req.Date, req.Time, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created: id=%s, date=%s, time=%s, booked=%d",
		result.ID, req.Date, req.Time, result.BookedCount)
	w.Header().Set("Location", "/appointments/"+result.ID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
