package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrNotClaimable signals a compare-and-swap miss: the row was not in the
	// expected status at write time, typically because a concurrent booker won.
	ErrNotClaimable = errors.New("appointment not in expected status")
)

// Repository contains all DB interactions needed by the lifecycle engine.
// Implementations must join the transaction carried by ctx when present.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// GetForUpdate reads the row and locks it until the transaction carried
	// by ctx ends, so the invariant check and the write that follows see and
	// mutate the same row version. Must only be called inside a transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Appointment, error)

	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error)

	// ClaimForPatient atomically attaches the patient and moves
	// AVAILABLE -> SCHEDULED, failing with ErrNotClaimable if the row is no
	// longer AVAILABLE.
	ClaimForPatient(ctx context.Context, id, patientID uuid.UUID, updatedBy string, now time.Time) (*Appointment, error)

	// Update persists mutable fields (scheduled_at, checkin_time, status,
	// notes, custom_data) plus the audit stamp. Callers must hold the row
	// via GetForUpdate in the same transaction.
	Update(ctx context.Context, a *Appointment) error

	// SetCheckinTime persists only the check-in stamp. Status and patient
	// are deliberately not part of the column set: a check-in must never
	// carry a stale copy of them over a concurrent booking.
	SetCheckinTime(ctx context.Context, a *Appointment) error

	// CompareAndSetStatus moves id from one status to another, failing with
	// ErrNotClaimable on a status mismatch. Used by the overdue sweep.
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to Status, updatedBy string, now time.Time) (*Appointment, error)

	// FindOverdue returns unresolved appointments (AVAILABLE or SCHEDULED)
	// whose scheduled time has passed.
	FindOverdue(ctx context.Context, now time.Time, limit int) ([]Appointment, error)
}
