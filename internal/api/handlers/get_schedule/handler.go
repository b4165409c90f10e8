package get_schedule

import (
	"net/http"

	"github.com/m04kA/SMC-DetailingBooking/internal/api/handlers"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result := h.service.Get()

	h.logger.Info("GET /schedule - Schedule retrieved: today=%s, slots=%d", result.Today, len(result.SlotTimes))
	handlers.RespondJSON(w, http.StatusOK, result)
}
