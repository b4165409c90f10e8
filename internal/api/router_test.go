package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

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
	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	"github.com/m04kA/SMC-DetailingBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-DetailingBooking/internal/integrations/notifier"
	appointmentsService "github.com/m04kA/SMC-DetailingBooking/internal/service/appointments"
	scheduleService "github.com/m04kA/SMC-DetailingBooking/internal/service/schedule"
	createAppointmentUC "github.com/m04kA/SMC-DetailingBooking/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-DetailingBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-DetailingBooking/pkg/logger"
	"github.com/m04kA/SMC-DetailingBooking/pkg/metrics"
)

// понедельник
var fixedNow = time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()

	log := logger.NewNop()
	store := memory.NewStore()
	schedule := domain.DefaultSchedule(time.UTC)
	clock := fixedClock{now: fixedNow}
	publisher := notifier.NoopPublisher{}
	var observer *metrics.Metrics

	createUC := createAppointmentUC.NewUseCase(store, store, store, publisher, observer, schedule, time.Second, log).
		WithTimeProvider(clock)
	slotsUC := getAvailableSlotsUC.NewUseCase(store, schedule, time.Second, log).
		WithTimeProvider(clock)
	appointmentsSvc := appointmentsService.NewService(store, store, store, publisher, time.Second, log).
		WithTimeProvider(clock)
	scheduleSvc := scheduleService.NewService(schedule, log).WithTimeProvider(clock)

	h := Handlers{
		GetAvailableSlots:       getAvailableSlotsHandler.NewHandler(slotsUC, log),
		CreateAppointment:       createAppointmentHandler.NewHandler(createUC, log),
		ListAppointments:        listAppointmentsHandler.NewHandler(appointmentsSvc, log),
		GetAppointment:          getAppointmentHandler.NewHandler(appointmentsSvc, log),
		UpdateAppointmentStatus: updateAppointmentStatusHandler.NewHandler(appointmentsSvc, log),
		CancelAppointment:       cancelAppointmentHandler.NewHandler(appointmentsSvc, log),
		DeleteAppointment:       deleteAppointmentHandler.NewHandler(appointmentsSvc, log),
		GetSchedule:             getScheduleHandler.NewHandler(scheduleSvc, log),
		Health:                  healthHandler.NewHandler(log).WithCheck("storage", store.Ping),
	}

	return NewRouter(h, opts, log)
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type slotView struct {
	Time              string `json:"time"`
	Available         bool   `json:"available"`
	RemainingCapacity int    `json:"remaining_capacity"`
}

func slotsFor(t *testing.T, h http.Handler, date string) map[string]slotView {
	t.Helper()

	rec := do(t, h, http.MethodGet, "/slots/"+date, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var slots []slotView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slots))

	byTime := make(map[string]slotView, len(slots))
	for _, s := range slots {
		byTime[s.Time] = s
	}
	return byTime
}

func bookingBody(name, date, slot string) string {
	return `{
		"name": "` + name + `",
		"phone": "(11) 98765-4321",
		"email": "cliente@example.com",
		"vehicle": "Toyota Corolla",
		"service": "full_detailing",
		"date": "` + date + `",
		"time": "` + slot + `"
	}`
}

func TestRouter_ReservationLifecycle(t *testing.T) {
	h := newTestRouter(t, Options{})

	slots := slotsFor(t, h, "2025-06-10")
	require.Len(t, slots, 8)
	assert.Equal(t, slotView{Time: "09:00", Available: true, RemainingCapacity: 3}, slots["09:00"])

	ids := make([]string, 0, 3)
	for _, name := range []string{"Ana Lima", "Bruno Reis", "Carla Dias"} {
		rec := do(t, h, http.MethodPost, "/appointments", bookingBody(name, "2025-06-10", "09:00"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "pending", created.Status)
		ids = append(ids, created.ID)
	}

	rec := do(t, h, http.MethodPost, "/appointments", bookingBody("Diego Alves", "2025-06-10", "09:00"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	slots = slotsFor(t, h, "2025-06-10")
	assert.Equal(t, slotView{Time: "09:00", Available: false, RemainingCapacity: 0}, slots["09:00"])
	assert.True(t, slots["10:00"].Available)

	rec = do(t, h, http.MethodGet, "/appointments?date=2025-06-10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", rec.Header().Get(listAppointmentsHandler.HeaderTotalCount))

	rec = do(t, h, http.MethodDelete, "/appointments/"+ids[0], "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, slotsFor(t, h, "2025-06-10")["09:00"].RemainingCapacity)

	rec = do(t, h, http.MethodDelete, "/appointments/"+ids[0], "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, slotsFor(t, h, "2025-06-10")["09:00"].RemainingCapacity)

	rec = do(t, h, http.MethodPatch, "/appointments/"+ids[1]+"/status", `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, slotsFor(t, h, "2025-06-10")["09:00"].RemainingCapacity)

	rec = do(t, h, http.MethodPatch, "/appointments/"+ids[1]+"/cancel", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 2, slotsFor(t, h, "2025-06-10")["09:00"].RemainingCapacity)
}

func TestRouter_WeekendAndPastHaveNoSlots(t *testing.T) {
	h := newTestRouter(t, Options{})

	for _, date := range []string{"2025-06-14", "2025-06-15", "2025-06-06"} {
		rec := do(t, h, http.MethodGet, "/slots/"+date, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String(), date)
	}

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/slots/10-06-2025", "").Code)
}

func TestRouter_InvalidEmailDoesNotTouchSlot(t *testing.T) {
	h := newTestRouter(t, Options{})

	body := strings.Replace(bookingBody("Ana Lima", "2025-06-10", "09:00"), "cliente@example.com", "sem-arroba", 1)
	rec := do(t, h, http.MethodPost, "/appointments", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"email"`)
	assert.Equal(t, 3, slotsFor(t, h, "2025-06-10")["09:00"].RemainingCapacity)
}

func TestRouter_UnknownAppointment(t *testing.T) {
	h := newTestRouter(t, Options{})

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/appointments/not-a-uuid", "").Code)
	assert.Equal(t, http.StatusNotFound,
		do(t, h, http.MethodDelete, "/appointments/7f0c7c1e-2b9a-4a55-8d43-6a1b7a0f3e21", "").Code)
}

func TestRouter_AdminRoutesRequireToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("painel"), bcrypt.MinCost)
	require.NoError(t, err)

	h := newTestRouter(t, Options{AdminTokenHash: string(hash)})

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/appointments", "").Code)
	assert.Equal(t, http.StatusOK,
		do(t, h, http.MethodGet, "/appointments", "", middleware.AdminTokenHeader, "painel").Code)

	// форма записи остается публичной
	rec := do(t, h, http.MethodPost, "/appointments", bookingBody("Ana Lima", "2025-06-10", "08:00"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/slots/2025-06-10", "").Code)
}

func TestRouter_RateLimitOnCreate(t *testing.T) {
	h := newTestRouter(t, Options{Limiter: middleware.NewLocalLimiter(1, time.Hour)})

	first := do(t, h, http.MethodPost, "/appointments", bookingBody("Ana Lima", "2025-06-10", "08:00"))
	second := do(t, h, http.MethodPost, "/appointments", bookingBody("Ana Lima", "2025-06-10", "10:00"))

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRouter_HealthAndRequestID(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec := do(t, h, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/schedule", "").Code)
}
