package list_appointments

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	appointmentsService "github.com/m04kA/SMC-DetailingBooking/internal/service/appointments"
	"github.com/m04kA/SMC-DetailingBooking/internal/service/appointments/models"
	"github.com/m04kA/SMC-DetailingBooking/pkg/logger"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) List(ctx context.Context, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*models.AppointmentListResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func get(svc AppointmentService, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewHandler(svc, logger.NewNop()).Handle(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandle_PassesFilters(t *testing.T) {
	svc := &mockService{}
	svc.On("List", mock.Anything, &models.ListRequest{
		Status:  "pending",
		Date:    "2025-06-10",
		Service: "ppf_protection",
		Query:   "civic",
	}).Return(&models.AppointmentListResponse{
		Appointments: []models.AppointmentResponse{{ID: "a1", Status: "pending"}},
		Total:        1,
	}, nil)

	rec := get(svc, "/appointments?status=pending&date=2025-06-10&service=ppf_protection&q=civic")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get(HeaderTotalCount))
	assert.Contains(t, rec.Body.String(), `"id":"a1"`)
	svc.AssertExpectations(t)
}

func TestHandle_EmptyListIsArray(t *testing.T) {
	svc := &mockService{}
	svc.On("List", mock.Anything, mock.Anything).Return(&models.AppointmentListResponse{
		Appointments: []models.AppointmentResponse{},
	}, nil)

	rec := get(svc, "/appointments")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid filter", fmt.Errorf("%w: bad status", appointmentsService.ErrInvalidInput), http.StatusBadRequest},
		{"storage", fmt.Errorf("%w: down", appointmentsService.ErrStorageUnavailable), http.StatusServiceUnavailable},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("List", mock.Anything, mock.Anything).Return(nil, tt.err)

			assert.Equal(t, tt.status, get(svc, "/appointments?status=unknown").Code)
		})
	}
}
