// Package appointment owns the appointment lifecycle: the status state
// machine, slot occupancy, scheduling windows and expiry detection.
package appointment

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/healthcare-records/internal/audited"
)

type Status string

const (
	StatusAvailable  Status = "AVAILABLE"
	StatusScheduled  Status = "SCHEDULED"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusNoShow     Status = "NO_SHOW"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusScheduled, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Terminal statuses end the lifecycle; appointments are never deleted, only
// transitioned here.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

type Type string

const (
	TypeFollowUp     Type = "FOLLOW_UP"
	TypeCheckup      Type = "CHECKUP"
	TypeConsultation Type = "CONSULTATION"
	TypeProcedure    Type = "PROCEDURE"
)

func (t Type) Valid() bool {
	switch t {
	case TypeFollowUp, TypeCheckup, TypeConsultation, TypeProcedure:
		return true
	}
	return false
}

// Duration returns the nominal length of an appointment of this type. It
// does not drive state transitions.
func (t Type) Duration() time.Duration {
	switch t {
	case TypeFollowUp:
		return 15 * time.Minute
	case TypeCheckup:
		return 30 * time.Minute
	case TypeConsultation:
		return 45 * time.Minute
	case TypeProcedure:
		return 60 * time.Minute
	default:
		return 30 * time.Minute
	}
}

const (
	// AdvanceNotice is the minimum lead time for a schedulable slot: the
	// scheduled time must be strictly more than this far in the future.
	AdvanceNotice = 24 * time.Hour

	// CheckinWindow bounds a valid check-in to scheduled_at +/- this much.
	CheckinWindow = 2 * time.Hour
)

type Appointment struct {
	audited.Fields
	ProviderID  uuid.UUID
	PatientID   *uuid.UUID
	ScheduledAt *time.Time
	CheckinTime *time.Time
	Status      Status
	Type        Type
	Notes       string
	CustomData  json.RawMessage
}

// IsReadyForMedicalRecords reports whether clinical documentation may be
// attached: a patient must be booked and the visit under way or finished.
func (a *Appointment) IsReadyForMedicalRecords() bool {
	return a.PatientID != nil &&
		(a.Status == StatusInProgress || a.Status == StatusCompleted)
}

// HasExpired reports whether this is an unresolved slot whose time has
// passed. Terminal statuses never expire regardless of time.
func (a *Appointment) HasExpired(now time.Time) bool {
	if a.ScheduledAt == nil || !a.ScheduledAt.Before(now) {
		return false
	}
	return a.Status == StatusAvailable || a.Status == StatusScheduled
}

// IsInvalidForBooking reports whether the slot is already taken or resolved.
// CONFIRMED and NO_SHOW are deliberately not listed; the booking path guards
// on Status == AVAILABLE directly and does not depend on this predicate.
func (a *Appointment) IsInvalidForBooking(now time.Time) bool {
	if a.HasExpired(now) {
		return true
	}
	return a.Status == StatusScheduled || a.Status == StatusCompleted || a.Status == StatusCancelled
}

// CheckinWindowContains reports whether t is an acceptable check-in time.
// An appointment not yet committed to a date accepts any check-in.
func (a *Appointment) CheckinWindowContains(t time.Time) bool {
	if a.ScheduledAt == nil {
		return true
	}
	lo := a.ScheduledAt.Add(-CheckinWindow)
	hi := a.ScheduledAt.Add(CheckinWindow)
	return !t.Before(lo) && !t.After(hi)
}
