package provider

import (
	"context"
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
	providers map[uuid.UUID]*Provider
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{providers: map[uuid.UUID]*Provider{}}
}

func (r *fakeRepo) Create(_ context.Context, p *Provider) error {
	cp := *p
	r.providers[p.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, ErrProviderNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, specialty string, limit, offset int) ([]Provider, error) {
	var out []Provider
	for _, p := range r.providers {
		if specialty != "" && p.Specialty != specialty {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, p *Provider) error {
	if _, ok := r.providers[p.ID]; !ok {
		return ErrProviderNotFound
	}
	cp := *p
	r.providers[p.ID] = &cp
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

func adminCtx() context.Context {
	return identity.WithIdentity(context.Background(), identity.Identity{UserID: "practice-admin"})
}

func newFixture() (*Service, *fakeRepo, *memAuditRepo) {
	repo := newFakeRepo()
	auditLog := &memAuditRepo{}
	svc := NewService(repo, audit.NewService(auditLog), passTxRunner{}).
		WithClock(func() time.Time { return now })
	return svc, repo, auditLog
}

func TestCreate(t *testing.T) {
	t.Run("creates an active provider with audit stamp", func(t *testing.T) {
		svc, _, auditLog := newFixture()

		p, err := svc.Create(adminCtx(), CreateInput{
			Name:          "Dr. Imani Cole",
			Specialty:     "cardiology",
			LicenseNumber: "MD-44913",
			Email:         "icole@example.com",
		})
		require.NoError(t, err)
		assert.True(t, p.Active)
		assert.Equal(t, "practice-admin", p.UpdatedBy)
		assert.Equal(t, now, p.CreatedAt)

		require.Len(t, auditLog.entries, 1)
		assert.Equal(t, audit.ActionCreate, auditLog.entries[0].ActionType)
		assert.Equal(t, audit.OutcomeSuccess, auditLog.entries[0].Outcome)
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		svc, _, _ := newFixture()
		_, err := svc.Create(adminCtx(), CreateInput{LicenseNumber: "MD-44913"})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("rejects a missing license number", func(t *testing.T) {
		svc, _, _ := newFixture()
		_, err := svc.Create(adminCtx(), CreateInput{Name: "Dr. Imani Cole"})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("requires an identity", func(t *testing.T) {
		svc, _, _ := newFixture()
		_, err := svc.Create(context.Background(), CreateInput{
			Name:          "Dr. Imani Cole",
			LicenseNumber: "MD-44913",
		})
		assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
	})
}

func TestDeactivate(t *testing.T) {
	svc, repo, auditLog := newFixture()
	p, err := svc.Create(adminCtx(), CreateInput{
		Name:          "Dr. Imani Cole",
		Specialty:     "cardiology",
		LicenseNumber: "MD-44913",
	})
	require.NoError(t, err)

	got, err := svc.Deactivate(adminCtx(), p.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	// The row survives; only the flag changes.
	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.Equal(t, "MD-44913", stored.LicenseNumber)

	require.Len(t, auditLog.entries, 2)
	assert.Equal(t, audit.ActionDelete, auditLog.entries[1].ActionType)

	t.Run("unknown provider is not found", func(t *testing.T) {
		_, err := svc.Deactivate(adminCtx(), uuid.New())
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestList(t *testing.T) {
	svc, _, _ := newFixture()
	for _, in := range []CreateInput{
		{Name: "Dr. Imani Cole", Specialty: "cardiology", LicenseNumber: "MD-44913"},
		{Name: "Dr. Theo Mbeki", Specialty: "pediatrics", LicenseNumber: "MD-51207"},
	} {
		_, err := svc.Create(adminCtx(), in)
		require.NoError(t, err)
	}

	all, err := svc.List(context.Background(), "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cardio, err := svc.List(context.Background(), "cardiology", 10, 0)
	require.NoError(t, err)
	require.Len(t, cardio, 1)
	assert.Equal(t, "Dr. Imani Cole", cardio[0].Name)
}
