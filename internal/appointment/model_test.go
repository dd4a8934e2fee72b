package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStatusTerminal(t *testing.T) {
	terminal := []Status{StatusCompleted, StatusCancelled, StatusNoShow}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), "%s should be terminal", s)
	}

	open := []Status{StatusAvailable, StatusScheduled, StatusConfirmed, StatusInProgress}
	for _, s := range open {
		assert.False(t, s.Terminal(), "%s should not be terminal", s)
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusAvailable.Valid())
	assert.True(t, StatusNoShow.Valid())
	assert.False(t, Status("").Valid())
	assert.False(t, Status("BOOKED").Valid())
	assert.False(t, Status("available").Valid())
}

func TestTypeDuration(t *testing.T) {
	cases := []struct {
		typ  Type
		want time.Duration
	}{
		{TypeFollowUp, 15 * time.Minute},
		{TypeCheckup, 30 * time.Minute},
		{TypeConsultation, 45 * time.Minute},
		{TypeProcedure, 60 * time.Minute},
		{Type("UNKNOWN"), 30 * time.Minute},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.typ.Duration(), "duration of %s", tc.typ)
	}
}

func TestIsReadyForMedicalRecords(t *testing.T) {
	patientID := uuid.New()

	cases := []struct {
		name      string
		patientID *uuid.UUID
		status    Status
		want      bool
	}{
		{"in progress with patient", &patientID, StatusInProgress, true},
		{"completed with patient", &patientID, StatusCompleted, true},
		{"in progress without patient", nil, StatusInProgress, false},
		{"scheduled with patient", &patientID, StatusScheduled, false},
		{"cancelled with patient", &patientID, StatusCancelled, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &Appointment{PatientID: tc.patientID, Status: tc.status}
			assert.Equal(t, tc.want, a.IsReadyForMedicalRecords())
		})
	}
}

func TestHasExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name        string
		scheduledAt *time.Time
		status      Status
		want        bool
	}{
		{"past available", &past, StatusAvailable, true},
		{"past scheduled", &past, StatusScheduled, true},
		{"past completed", &past, StatusCompleted, false},
		{"past cancelled", &past, StatusCancelled, false},
		{"past no-show", &past, StatusNoShow, false},
		{"future available", &future, StatusAvailable, false},
		{"exactly now", &now, StatusAvailable, false},
		{"no scheduled time", nil, StatusAvailable, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &Appointment{ScheduledAt: tc.scheduledAt, Status: tc.status}
			assert.Equal(t, tc.want, a.HasExpired(now))
		})
	}
}

func TestIsInvalidForBooking(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	past := now.Add(-time.Hour)

	cases := []struct {
		name        string
		scheduledAt *time.Time
		status      Status
		want        bool
	}{
		{"open future slot", &future, StatusAvailable, false},
		{"already scheduled", &future, StatusScheduled, true},
		{"completed", &future, StatusCompleted, true},
		{"cancelled", &future, StatusCancelled, true},
		{"expired available", &past, StatusAvailable, true},
		{"confirmed", &future, StatusConfirmed, false},
		{"no-show", &future, StatusNoShow, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &Appointment{ScheduledAt: tc.scheduledAt, Status: tc.status}
			assert.Equal(t, tc.want, a.IsInvalidForBooking(now))
		})
	}
}

func TestCheckinWindowContains(t *testing.T) {
	scheduledAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	a := &Appointment{ScheduledAt: &scheduledAt}

	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"on time", scheduledAt, true},
		{"exactly two hours early", scheduledAt.Add(-CheckinWindow), true},
		{"exactly two hours late", scheduledAt.Add(CheckinWindow), true},
		{"one second too early", scheduledAt.Add(-CheckinWindow - time.Second), false},
		{"one second too late", scheduledAt.Add(CheckinWindow + time.Second), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, a.CheckinWindowContains(tc.t))
		})
	}

	t.Run("no scheduled time accepts any check-in", func(t *testing.T) {
		unscheduled := &Appointment{}
		assert.True(t, unscheduled.CheckinWindowContains(scheduledAt))
	})
}
