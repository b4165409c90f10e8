package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-DetailingBooking/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-DetailingBooking/internal/usecase/get_available_slots"
)

const (
	msgMissingDate = "data é obrigatória"
	msgInvalidDate = "data inválida, formato esperado AAAA-MM-DD"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /slots/{date}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if date == "" {
		h.logger.Warn("GET /slots/{date} - Missing date")
		handlers.RespondValidationError(w, "date", msgMissingDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{Date: date})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			h.logger.Warn("GET /slots/{date} - Invalid date: date=%s", date)
			handlers.RespondValidationError(w, "date", msgInvalidDate)

		case errors.Is(err, getAvailableSlots.ErrStorageUnavailable):
			h.logger.Error("GET /slots/{date} - Storage unavailable: date=%s, error=%v", date, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("GET /slots/{date} - Failed to get slots: date=%s, error=%v", date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /slots/{date} - Slots retrieved: date=%s, slots_count=%d", date, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
