package patient

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepoint/healthcare-records/internal/apperr"
	"github.com/carepoint/healthcare-records/internal/audit"
	"github.com/carepoint/healthcare-records/internal/identity"
)

type fakeRepo struct {
	patients map[uuid.UUID]*Patient
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{patients: map[uuid.UUID]*Patient{}}
}

func (r *fakeRepo) Create(_ context.Context, p *Patient) error {
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, activeOnly bool, limit, offset int) ([]Patient, error) {
	var out []Patient
	for _, p := range r.patients {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := r.patients[p.ID]; !ok {
		return ErrPatientNotFound
	}
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

type memAuditRepo struct {
	entries []audit.Entry
}

func (r *memAuditRepo) Insert(_ context.Context, e audit.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *memAuditRepo) GetByID(context.Context, uuid.UUID) (*audit.Entry, error) {
	return nil, audit.ErrEntryNotFound
}

func (r *memAuditRepo) ListByResource(context.Context, string, uuid.UUID, int, int) ([]audit.Entry, error) {
	return r.entries, nil
}

func (r *memAuditRepo) ListByUser(context.Context, string, int, int) ([]audit.Entry, error) {
	return r.entries, nil
}

type passTxRunner struct{}

func (passTxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func receptionCtx() context.Context {
	return identity.WithIdentity(context.Background(), identity.Identity{UserID: "reception"})
}

func newFixture() (*Service, *fakeRepo, *memAuditRepo) {
	repo := newFakeRepo()
	auditLog := &memAuditRepo{}
	svc := NewService(repo, audit.NewService(auditLog), passTxRunner{}).
		WithClock(func() time.Time { return now })
	return svc, repo, auditLog
}

func TestCreate(t *testing.T) {
	t.Run("creates an active patient with audit stamp", func(t *testing.T) {
		svc, _, auditLog := newFixture()

		p, err := svc.Create(receptionCtx(), CreateInput{Name: "Ada Osei", Email: "ada@example.com"})
		require.NoError(t, err)
		assert.True(t, p.Active)
		assert.Equal(t, "reception", p.UpdatedBy)
		assert.Equal(t, now, p.CreatedAt)

		require.Len(t, auditLog.entries, 1)
		assert.Equal(t, audit.ActionCreate, auditLog.entries[0].ActionType)
	})

	t.Run("rejects missing and oversized names", func(t *testing.T) {
		svc, _, _ := newFixture()

		_, err := svc.Create(receptionCtx(), CreateInput{})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))

		_, err = svc.Create(receptionCtx(), CreateInput{Name: strings.Repeat("a", 201)})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("requires an identity", func(t *testing.T) {
		svc, _, _ := newFixture()
		_, err := svc.Create(context.Background(), CreateInput{Name: "Ada Osei"})
		assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
	})
}

func TestUpdate(t *testing.T) {
	svc, _, _ := newFixture()
	p, err := svc.Create(receptionCtx(), CreateInput{Name: "Ada Osei", Phone: "555-0100"})
	require.NoError(t, err)

	t.Run("updates only supplied fields", func(t *testing.T) {
		email := "ada.osei@example.com"
		got, err := svc.Update(receptionCtx(), p.ID, UpdateInput{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, "Ada Osei", got.Name)
		assert.Equal(t, "555-0100", got.Phone)
		assert.Equal(t, email, got.Email)
	})

	t.Run("name cannot be blanked", func(t *testing.T) {
		empty := ""
		_, err := svc.Update(receptionCtx(), p.ID, UpdateInput{Name: &empty})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("unknown patient is not found", func(t *testing.T) {
		_, err := svc.Update(receptionCtx(), uuid.New(), UpdateInput{})
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestDeactivate(t *testing.T) {
	svc, repo, auditLog := newFixture()
	p, err := svc.Create(receptionCtx(), CreateInput{Name: "Ada Osei"})
	require.NoError(t, err)

	got, err := svc.Deactivate(receptionCtx(), p.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	// The row survives; only the flag changes.
	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.Equal(t, "Ada Osei", stored.Name)

	require.Len(t, auditLog.entries, 2)
	assert.Equal(t, audit.ActionDelete, auditLog.entries[1].ActionType)

	active, err := svc.List(context.Background(), true, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(context.Background(), false, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
