package medicalrecord

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/healthcare-records/internal/apperr"
	"github.com/carepoint/healthcare-records/internal/appointment"
	"github.com/carepoint/healthcare-records/internal/audit"
	"github.com/carepoint/healthcare-records/internal/db"
	"github.com/carepoint/healthcare-records/internal/identity"
)

// AppointmentSource is the slice of the appointment repository this service
// needs to check readiness.
type AppointmentSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
}

type Service struct {
	repo    Repository
	appts   AppointmentSource
	auditor *audit.Service
	tx      db.TxRunner
	now     func() time.Time
}

func NewService(repo Repository, appts AppointmentSource, auditor *audit.Service, tx db.TxRunner) *Service {
	return &Service{repo: repo, appts: appts, auditor: auditor, tx: tx, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type CreateInput struct {
	AppointmentID uuid.UUID
	Diagnosis     string
	Treatment     string
	Notes         string
}

// Create attaches clinical documentation to an appointment. The appointment
// must have a patient and be in progress or completed.
func (s *Service) Create(ctx context.Context, in CreateInput) (*MedicalRecord, error) {
	ident, ok := identity.FromContext(ctx)
	if !ok {
		return nil, apperr.Unauthorized("no caller identity")
	}
	if in.AppointmentID == uuid.Nil {
		return nil, apperr.Validation("appointment id is required")
	}
	if in.Diagnosis == "" {
		return nil, apperr.Validation("diagnosis is required")
	}

	appt, err := s.appts.GetByID(ctx, in.AppointmentID)
	if err != nil {
		if errors.Is(err, appointment.ErrAppointmentNotFound) {
			return nil, apperr.NotFound(appointment.ResourceType, in.AppointmentID)
		}
		return nil, apperr.Internal(err)
	}
	if !appt.IsReadyForMedicalRecords() {
		return nil, apperr.InvalidTransition(
			"appointment %s is not ready for medical records (status %s)", appt.ID, appt.Status)
	}

	m := &MedicalRecord{
		AppointmentID: appt.ID,
		PatientID:     *appt.PatientID,
		ProviderID:    appt.ProviderID,
		Diagnosis:     in.Diagnosis,
		Treatment:     in.Treatment,
		Notes:         in.Notes,
	}
	m.StampCreate(ctx, s.now())

	err = s.tx.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, m); err != nil {
			return err
		}
		_, err := s.auditor.Record(txCtx, ident.UserID, audit.ActionCreate, ResourceType, m.ID, audit.OutcomeSuccess)
		return err
	})
	if err != nil {
		return nil, apperr.From(err)
	}
	return m, nil
}

type UpdateInput struct {
	Diagnosis *string
	Treatment *string
	Notes     *string
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*MedicalRecord, error) {
	ident, ok := identity.FromContext(ctx)
	if !ok {
		return nil, apperr.Unauthorized("no caller identity")
	}

	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Diagnosis != nil {
		if *in.Diagnosis == "" {
			return nil, apperr.Validation("diagnosis cannot be empty")
		}
		m.Diagnosis = *in.Diagnosis
	}
	if in.Treatment != nil {
		m.Treatment = *in.Treatment
	}
	if in.Notes != nil {
		m.Notes = *in.Notes
	}
	m.StampUpdate(ctx, s.now())

	err = s.tx.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, m); err != nil {
			return err
		}
		_, err := s.auditor.Record(txCtx, ident.UserID, audit.ActionUpdate, ResourceType, m.ID, audit.OutcomeSuccess)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, apperr.NotFound(ResourceType, id)
		}
		return nil, apperr.From(err)
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, apperr.NotFound(ResourceType, id)
		}
		return nil, apperr.Internal(err)
	}
	return m, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]MedicalRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	records, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return records, nil
}
