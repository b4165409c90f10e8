package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/m04kA/SMC-DetailingBooking/internal/api/handlers"
)

const defaultCheckTimeout = 2 * time.Second

type Handler struct {
	checks  map[string]Check
	timeout time.Duration
	logger  Logger
}

func NewHandler(logger Logger) *Handler {
	return &Handler{
		checks:  make(map[string]Check),
		timeout: defaultCheckTimeout,
		logger:  logger,
	}
}

// WithCheck добавляет проверку зависимости для readiness
func (h *Handler) WithCheck(name string, check Check) *Handler {
	h.checks[name] = check
	return h
}

// Live GET /health/live
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, StatusResponse{Status: statusOK})
}

// Ready GET /health/ready
// 503 если хотя бы одна зависимость недоступна.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := StatusResponse{Status: statusOK, Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("GET /health/ready - Check failed: name=%s, error=%v", name, err)
			resp.Checks[name] = statusDegraded
			resp.Status = statusDegraded
			continue
		}
		resp.Checks[name] = statusOK
	}

	if resp.Status != statusOK {
		handlers.RespondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}
