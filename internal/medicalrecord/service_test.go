package medicalrecord

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepoint/healthcare-records/internal/apperr"
	"github.com/carepoint/healthcare-records/internal/appointment"
	"github.com/carepoint/healthcare-records/internal/audit"
	"github.com/carepoint/healthcare-records/internal/identity"
)

type fakeRepo struct {
	records map[uuid.UUID]*MedicalRecord
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[uuid.UUID]*MedicalRecord{}}
}

func (r *fakeRepo) Create(_ context.Context, m *MedicalRecord) error {
	cp := *m
	r.records[m.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*MedicalRecord, error) {
	m, ok := r.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]MedicalRecord, error) {
	var out []MedicalRecord
	for _, m := range r.records {
		if m.PatientID == patientID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, m *MedicalRecord) error {
	if _, ok := r.records[m.ID]; !ok {
		return ErrRecordNotFound
	}
	cp := *m
	r.records[m.ID] = &cp
	return nil
}

type fakeAppointments struct {
	appts map[uuid.UUID]*appointment.Appointment
}

func (f *fakeAppointments) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, ok := f.appts[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return a, nil
}

type nopAuditRepo struct{}

func (nopAuditRepo) Insert(context.Context, audit.Entry) error { return nil }
func (nopAuditRepo) GetByID(context.Context, uuid.UUID) (*audit.Entry, error) {
	return nil, audit.ErrEntryNotFound
}
func (nopAuditRepo) ListByResource(context.Context, string, uuid.UUID, int, int) ([]audit.Entry, error) {
	return nil, nil
}
func (nopAuditRepo) ListByUser(context.Context, string, int, int) ([]audit.Entry, error) {
	return nil, nil
}

type passTxRunner struct{}

func (passTxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func clinicianCtx() context.Context {
	return identity.WithIdentity(context.Background(), identity.Identity{
		UserID: "dr-jones",
		Roles:  []string{"clinician"},
	})
}

func newFixture(appts ...*appointment.Appointment) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	src := &fakeAppointments{appts: map[uuid.UUID]*appointment.Appointment{}}
	for _, a := range appts {
		src.appts[a.ID] = a
	}
	svc := NewService(repo, src, audit.NewService(nopAuditRepo{}), passTxRunner{}).
		WithClock(func() time.Time { return now })
	return svc, repo
}

func visitAppointment(status appointment.Status, withPatient bool) *appointment.Appointment {
	a := &appointment.Appointment{
		ProviderID: uuid.New(),
		Status:     status,
		Type:       appointment.TypeConsultation,
	}
	a.ID = uuid.New()
	if withPatient {
		pid := uuid.New()
		a.PatientID = &pid
	}
	return a
}

func TestCreate(t *testing.T) {
	t.Run("attaches documentation to an in-progress visit", func(t *testing.T) {
		appt := visitAppointment(appointment.StatusInProgress, true)
		svc, repo := newFixture(appt)

		m, err := svc.Create(clinicianCtx(), CreateInput{
			AppointmentID: appt.ID,
			Diagnosis:     "acute sinusitis",
			Treatment:     "amoxicillin 500mg",
		})
		require.NoError(t, err)
		assert.Equal(t, appt.ID, m.AppointmentID)
		assert.Equal(t, *appt.PatientID, m.PatientID)
		assert.Equal(t, appt.ProviderID, m.ProviderID)
		assert.Equal(t, "dr-jones", m.UpdatedBy)

		stored, err := repo.GetByID(context.Background(), m.ID)
		require.NoError(t, err)
		assert.Equal(t, "acute sinusitis", stored.Diagnosis)
	})

	t.Run("accepts a completed visit", func(t *testing.T) {
		appt := visitAppointment(appointment.StatusCompleted, true)
		svc, _ := newFixture(appt)

		_, err := svc.Create(clinicianCtx(), CreateInput{AppointmentID: appt.ID, Diagnosis: "healed"})
		assert.NoError(t, err)
	})

	t.Run("rejects a visit that has not started", func(t *testing.T) {
		appt := visitAppointment(appointment.StatusScheduled, true)
		svc, _ := newFixture(appt)

		_, err := svc.Create(clinicianCtx(), CreateInput{AppointmentID: appt.ID, Diagnosis: "premature"})
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidTransition))
	})

	t.Run("rejects a visit without a patient", func(t *testing.T) {
		appt := visitAppointment(appointment.StatusInProgress, false)
		svc, _ := newFixture(appt)

		_, err := svc.Create(clinicianCtx(), CreateInput{AppointmentID: appt.ID, Diagnosis: "nobody here"})
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidTransition))
	})

	t.Run("requires a diagnosis", func(t *testing.T) {
		appt := visitAppointment(appointment.StatusInProgress, true)
		svc, _ := newFixture(appt)

		_, err := svc.Create(clinicianCtx(), CreateInput{AppointmentID: appt.ID})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("unknown appointment is not found", func(t *testing.T) {
		svc, _ := newFixture()
		_, err := svc.Create(clinicianCtx(), CreateInput{AppointmentID: uuid.New(), Diagnosis: "x"})
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestUpdate(t *testing.T) {
	appt := visitAppointment(appointment.StatusCompleted, true)
	svc, _ := newFixture(appt)

	m, err := svc.Create(clinicianCtx(), CreateInput{
		AppointmentID: appt.ID,
		Diagnosis:     "initial impression",
	})
	require.NoError(t, err)

	t.Run("partial update touches only the supplied fields", func(t *testing.T) {
		treatment := "rest and fluids"
		got, err := svc.Update(clinicianCtx(), m.ID, UpdateInput{Treatment: &treatment})
		require.NoError(t, err)
		assert.Equal(t, "initial impression", got.Diagnosis)
		assert.Equal(t, "rest and fluids", got.Treatment)
	})

	t.Run("diagnosis cannot be blanked", func(t *testing.T) {
		empty := ""
		_, err := svc.Update(clinicianCtx(), m.ID, UpdateInput{Diagnosis: &empty})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}
