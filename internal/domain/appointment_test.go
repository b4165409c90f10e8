package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAppointmentStatus_HoldsSlot(t *testing.T) {
	assert.True(t, StatusPending.HoldsSlot())
	assert.True(t, StatusConfirmed.HoldsSlot())
	assert.True(t, StatusCompleted.HoldsSlot())
	assert.False(t, StatusCancelled.HoldsSlot())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestParseAppointmentStatus(t *testing.T) {
	s, err := ParseAppointmentStatus(" Confirmed ")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	_, err = ParseAppointmentStatus("no_show")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestParseServiceCategory(t *testing.T) {
	c, err := ParseServiceCategory("ppf_protection")
	require.NoError(t, err)
	assert.Equal(t, ServicePPFProtection, c)

	c, err = ParseServiceCategory("Detalhamento Completo")
	require.NoError(t, err)
	assert.Equal(t, ServiceFullDetailing, c)
	assert.Equal(t, "Detalhamento Completo", c.Label())

	_, err = ParseServiceCategory("car wash")
	assert.ErrorIs(t, err, ErrUnknownService)
}

func TestAppointmentsFilter_Matches(t *testing.T) {
	a := &Appointment{
		CustomerName: "Maria Souza",
		Email:        "maria@example.com",
		Phone:        "11987654321",
		Vehicle:      "Honda Civic",
		Service:      ServiceCeramicCoating,
		SlotDate:     time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		SlotTime:     "09:00",
		Status:       StatusPending,
	}

	pending := StatusPending
	cancelled := StatusCancelled
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	other := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	service := ServiceCeramicCoating

	assert.True(t, AppointmentsFilter{}.Matches(a))
	assert.True(t, AppointmentsFilter{Status: &pending, Date: &date, Service: &service}.Matches(a))
	assert.True(t, AppointmentsFilter{Search: "civic"}.Matches(a))
	assert.False(t, AppointmentsFilter{Status: &cancelled}.Matches(a))
	assert.False(t, AppointmentsFilter{Date: &other}.Matches(a))
	assert.False(t, AppointmentsFilter{Search: "porsche"}.Matches(a))
}
