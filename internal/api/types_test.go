package api

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepoint/healthcare-records/internal/apperr"
	"github.com/carepoint/healthcare-records/internal/appointment"
)

func TestCreateSlotRequestValidate(t *testing.T) {
	providerID := uuid.New()
	scheduledAt := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		in, err := CreateSlotRequest{
			ProviderID:      providerID.String(),
			ScheduledAt:     &scheduledAt,
			AppointmentType: "CHECKUP",
		}.validate()
		require.NoError(t, err)
		assert.Equal(t, providerID, in.ProviderID)
		assert.Equal(t, scheduledAt, in.ScheduledAt)
		assert.Equal(t, appointment.TypeCheckup, in.Type)
	})

	t.Run("bad provider id", func(t *testing.T) {
		_, err := CreateSlotRequest{
			ProviderID:  "not-a-uuid",
			ScheduledAt: &scheduledAt,
		}.validate()
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("missing scheduled_at", func(t *testing.T) {
		_, err := CreateSlotRequest{ProviderID: providerID.String()}.validate()
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("oversized notes", func(t *testing.T) {
		_, err := CreateSlotRequest{
			ProviderID:  providerID.String(),
			ScheduledAt: &scheduledAt,
			Notes:       strings.Repeat("x", 2001),
		}.validate()
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestBookRequestValidate(t *testing.T) {
	patientID := uuid.New()

	got, err := BookRequest{PatientID: patientID.String()}.validate()
	require.NoError(t, err)
	assert.Equal(t, patientID, got)

	_, err = BookRequest{}.validate()
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCheckInRequestValidate(t *testing.T) {
	at := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)

	got, err := CheckInRequest{CheckinTime: &at}.validate()
	require.NoError(t, err)
	assert.Equal(t, at, got)

	_, err = CheckInRequest{}.validate()
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAppointmentResponseDerivesDuration(t *testing.T) {
	a := &appointment.Appointment{Type: appointment.TypeProcedure, Status: appointment.StatusAvailable}
	resp := toAppointmentResponse(a)
	assert.Equal(t, 60, resp.DurationMin)
	assert.Equal(t, "AVAILABLE", resp.Status)
}
