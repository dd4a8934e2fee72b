package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carepoint/healthcare-records/internal/apperr"
	"github.com/carepoint/healthcare-records/internal/audit"
	"github.com/carepoint/healthcare-records/internal/db"
	"github.com/carepoint/healthcare-records/internal/identity"
	"github.com/carepoint/healthcare-records/internal/metrics"
	redisclient "github.com/carepoint/healthcare-records/internal/redis"
)

// ResourceType is the audit trail resource name for appointments.
const ResourceType = "appointment"

// Service is the appointment lifecycle engine. Every mutating operation runs
// the entity write and its audit entry in one transaction: both commit or
// neither does.
type Service struct {
	repo    Repository
	auditor *audit.Service
	tx      db.TxRunner
	locker  redisclient.Locker
	metrics *metrics.Metrics
	now     func() time.Time
	log     zerolog.Logger
}

func NewService(repo Repository, auditor *audit.Service, tx db.TxRunner, locker redisclient.Locker, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		tx:      tx,
		locker:  locker,
		metrics: m,
		now:     time.Now,
		log:     log,
	}
}

// WithClock substitutes the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type CreateSlotInput struct {
	ProviderID  uuid.UUID
	ScheduledAt time.Time
	Type        Type
	Notes       string
	CustomData  json.RawMessage
}

// CreateSlot opens a bookable slot. The scheduled time must be strictly more
// than AdvanceNotice ahead of server time.
func (s *Service) CreateSlot(ctx context.Context, in CreateSlotInput) (*Appointment, error) {
	a, err := s.createSlot(ctx, in)
	s.metrics.ObserveOp("create_slot", err)
	return a, err
}

func (s *Service) createSlot(ctx context.Context, in CreateSlotInput) (*Appointment, error) {
	ident, err := s.requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if in.ProviderID == uuid.Nil {
		return nil, apperr.Validation("provider id is required")
	}
	if !in.Type.Valid() {
		return nil, apperr.Validation("unknown appointment type %q", string(in.Type))
	}
	now := s.now()
	if in.ScheduledAt.IsZero() {
		return nil, apperr.Validation("scheduled time is required")
	}
	if !in.ScheduledAt.After(now.Add(AdvanceNotice)) {
		return nil, apperr.InvalidSchedule(
			"appointment must be scheduled more than %s in advance", AdvanceNotice)
	}

	scheduledAt := in.ScheduledAt
	a := &Appointment{
		ProviderID:  in.ProviderID,
		ScheduledAt: &scheduledAt,
		Status:      StatusAvailable,
		Type:        in.Type,
		Notes:       in.Notes,
		CustomData:  in.CustomData,
	}
	a.StampCreate(ctx, now)

	err = s.tx.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, a); err != nil {
			return err
		}
		_, err := s.auditor.Record(txCtx, ident.UserID, audit.ActionCreate, ResourceType, a.ID, audit.OutcomeSuccess)
		return err
	})
	if err != nil {
		return nil, apperr.From(err)
	}

	s.metrics.CountAuditEntry()
	return a, nil
}

// Book attaches a patient to an AVAILABLE slot. Concurrent bookers for the
// same slot are serialized by a per-appointment Redis lock, and the status is
// re-validated by a compare-and-swap immediately before commit, so at most
// one of them succeeds.
func (s *Service) Book(ctx context.Context, id, patientID uuid.UUID) (*Appointment, error) {
	a, err := s.book(ctx, id, patientID)
	s.metrics.ObserveOp("book", err)
	return a, err
}

func (s *Service) book(ctx context.Context, id, patientID uuid.UUID) (*Appointment, error) {
	ident, err := s.requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if patientID == uuid.Nil {
		return nil, apperr.Validation("patient id is required")
	}

	appt, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != StatusAvailable {
		s.auditFailure(ctx, ident.UserID, audit.ActionUpdate, id)
		return nil, apperr.InvalidTransition(
			"appointment %s cannot be booked from status %s", id, appt.Status)
	}

	var booked *Appointment
	err = s.locker.WithAppointmentLock(ctx, id, func(lockCtx context.Context) error {
		return s.tx.InTx(lockCtx, func(txCtx context.Context) error {
			b, err := s.repo.ClaimForPatient(txCtx, id, patientID, ident.UserID, s.now())
			if err != nil {
				return err
			}
			if _, err := s.auditor.Record(txCtx, ident.UserID, audit.ActionUpdate, ResourceType, id, audit.OutcomeSuccess); err != nil {
				return err
			}
			booked = b
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) || errors.Is(err, ErrNotClaimable) {
			s.auditFailure(ctx, ident.UserID, audit.ActionUpdate, id)
			return nil, apperr.InvalidTransition("appointment %s is no longer available", id)
		}
		return nil, apperr.From(err)
	}

	s.metrics.CountAuditEntry()
	return booked, nil
}

// CheckIn validates and records the check-in timestamp. It does not change
// the status; the check-in window is enforced independently.
func (s *Service) CheckIn(ctx context.Context, id uuid.UUID, checkinTime time.Time) (*Appointment, error) {
	a, err := s.checkIn(ctx, id, checkinTime)
	s.metrics.ObserveOp("check_in", err)
	return a, err
}

func (s *Service) checkIn(ctx context.Context, id uuid.UUID, checkinTime time.Time) (*Appointment, error) {
	ident, err := s.requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if checkinTime.IsZero() {
		return nil, apperr.Validation("check-in time is required")
	}

	return s.updateLocked(ctx, ident, id, func(txCtx context.Context, appt *Appointment) error {
		if !appt.CheckinWindowContains(checkinTime) {
			return apperr.InvalidSchedule(
				"check-in must be within %s of the scheduled time", CheckinWindow)
		}
		appt.CheckinTime = &checkinTime
		appt.StampUpdate(txCtx, s.now())
		return s.repo.SetCheckinTime(txCtx, appt)
	})
}

// SetStatus sets the appointment status. Beyond requiring a known status the
// engine enforces no transition table here; callers are expected to honor
// the derived predicates on the model.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, newStatus Status) (*Appointment, error) {
	a, err := s.setStatus(ctx, id, newStatus)
	s.metrics.ObserveOp("set_status", err)
	return a, err
}

func (s *Service) setStatus(ctx context.Context, id uuid.UUID, newStatus Status) (*Appointment, error) {
	ident, err := s.requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if newStatus == "" {
		return nil, apperr.Validation("status is required")
	}
	if !newStatus.Valid() {
		return nil, apperr.Validation("unknown status %q", string(newStatus))
	}

	return s.updateLocked(ctx, ident, id, func(txCtx context.Context, appt *Appointment) error {
		appt.Status = newStatus
		appt.StampUpdate(txCtx, s.now())
		return s.repo.Update(txCtx, appt)
	})
}

// Reschedule moves an unresolved appointment to a new time, subject to the
// same advance-notice rule as CreateSlot.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newTime time.Time) (*Appointment, error) {
	a, err := s.reschedule(ctx, id, newTime)
	s.metrics.ObserveOp("reschedule", err)
	return a, err
}

func (s *Service) reschedule(ctx context.Context, id uuid.UUID, newTime time.Time) (*Appointment, error) {
	ident, err := s.requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if newTime.IsZero() {
		return nil, apperr.Validation("new scheduled time is required")
	}

	return s.updateLocked(ctx, ident, id, func(txCtx context.Context, appt *Appointment) error {
		if appt.Status.Terminal() {
			return apperr.InvalidTransition(
				"appointment %s is already resolved as %s", id, appt.Status)
		}
		if !newTime.After(s.now().Add(AdvanceNotice)) {
			return apperr.InvalidSchedule(
				"appointment must be scheduled more than %s in advance", AdvanceNotice)
		}
		appt.ScheduledAt = &newTime
		appt.StampUpdate(txCtx, s.now())
		return s.repo.Update(txCtx, appt)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.get(ctx, id)
}

func (s *Service) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]Appointment, error) {
	limit, offset = clampPage(limit, offset)
	appts, err := s.repo.ListByProvider(ctx, providerID, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return appts, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	limit, offset = clampPage(limit, offset)
	appts, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return appts, nil
}

// ResolveOverdue sweeps unresolved appointments whose time has passed:
// expired SCHEDULED become NO_SHOW, expired AVAILABLE are cancelled. It runs
// as the system identity and is called by the expiry worker. Returns the
// number of appointments resolved.
func (s *Service) ResolveOverdue(ctx context.Context) (int, error) {
	sysCtx := identity.WithIdentity(ctx, identity.System())
	now := s.now()

	overdue, err := s.repo.FindOverdue(sysCtx, now, 100)
	if err != nil {
		return 0, apperr.Internal(err)
	}

	resolved := 0
	for _, appt := range overdue {
		target := StatusCancelled
		if appt.Status == StatusScheduled {
			target = StatusNoShow
		}

		err := s.tx.InTx(sysCtx, func(txCtx context.Context) error {
			if _, err := s.repo.CompareAndSetStatus(txCtx, appt.ID, appt.Status, target, identity.SystemUserID, now); err != nil {
				return err
			}
			_, err := s.auditor.Record(txCtx, identity.SystemUserID, audit.ActionUpdate, ResourceType, appt.ID, audit.OutcomeSuccess)
			return err
		})
		if err != nil {
			// Resolved concurrently by a caller or another worker instance.
			if errors.Is(err, ErrNotClaimable) {
				continue
			}
			s.log.Error().Err(err).
				Str("appointment_id", appt.ID.String()).
				Msg("failed to resolve overdue appointment")
			continue
		}
		s.metrics.CountAuditEntry()
		resolved++
	}

	return resolved, nil
}

func (s *Service) requireIdentity(ctx context.Context) (identity.Identity, error) {
	ident, ok := identity.FromContext(ctx)
	if !ok {
		return identity.Identity{}, apperr.Unauthorized("no caller identity")
	}
	return ident, nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, apperr.NotFound(ResourceType, id)
		}
		return nil, apperr.Internal(err)
	}
	return appt, nil
}

// updateLocked runs a mutation against the row held under a transactional
// lock: the read, the invariant checks inside fn, the write fn performs, and
// the audit entry all commit or roll back as one unit. A concurrent booker
// or the overdue sweep can never land between the check and the write.
func (s *Service) updateLocked(ctx context.Context, ident identity.Identity, id uuid.UUID, fn func(txCtx context.Context, appt *Appointment) error) (*Appointment, error) {
	var out *Appointment
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		appt, err := s.repo.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if err := fn(txCtx, appt); err != nil {
			return err
		}
		if _, err := s.auditor.Record(txCtx, ident.UserID, audit.ActionUpdate, ResourceType, id, audit.OutcomeSuccess); err != nil {
			return err
		}
		out = appt
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, apperr.NotFound(ResourceType, id)
		}
		ae := apperr.From(err)
		if ae.Kind == apperr.KindInvalidSchedule || ae.Kind == apperr.KindInvalidTransition {
			s.auditFailure(ctx, ident.UserID, audit.ActionUpdate, id)
		}
		return nil, ae
	}
	s.metrics.CountAuditEntry()
	return out, nil
}

// auditFailure records the FAILURE entry for a rejected operation. It runs
// outside any transaction; a failure to write it is logged, never surfaced,
// so the original rejection reaches the caller unchanged.
func (s *Service) auditFailure(ctx context.Context, userID string, action audit.ActionType, id uuid.UUID) {
	if _, err := s.auditor.Record(ctx, userID, action, ResourceType, id, audit.OutcomeFailure); err != nil {
		s.log.Error().Err(err).
			Str("appointment_id", id.String()).
			Msg("failed to record failure audit entry")
		return
	}
	s.metrics.CountAuditEntry()
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
