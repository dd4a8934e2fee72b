package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepoint/healthcare-records/internal/apperr"
)

type captureRepo struct {
	entries    []Entry
	lastLimit  int
	lastOffset int
}

func (r *captureRepo) Insert(_ context.Context, e Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *captureRepo) GetByID(_ context.Context, id uuid.UUID) (*Entry, error) {
	for i := range r.entries {
		if r.entries[i].ID == id {
			return &r.entries[i], nil
		}
	}
	return nil, ErrEntryNotFound
}

func (r *captureRepo) ListByResource(_ context.Context, resourceType string, resourceID uuid.UUID, limit, offset int) ([]Entry, error) {
	r.lastLimit, r.lastOffset = limit, offset
	return r.entries, nil
}

func (r *captureRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]Entry, error) {
	r.lastLimit, r.lastOffset = limit, offset
	return r.entries, nil
}

var recordedAt = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *captureRepo) {
	repo := &captureRepo{}
	svc := NewService(repo).WithClock(func() time.Time { return recordedAt })
	return svc, repo
}

func TestRecord(t *testing.T) {
	t.Run("assigns id and timestamp server-side", func(t *testing.T) {
		svc, repo := newTestService()
		resourceID := uuid.New()

		e, err := svc.Record(context.Background(), "dr-jones", ActionUpdate, "appointment", resourceID, OutcomeSuccess)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, e.ID)
		assert.Equal(t, recordedAt, e.Timestamp)
		assert.Equal(t, "dr-jones", e.UserID)
		assert.Equal(t, resourceID, e.ResourceID)
		require.Len(t, repo.entries, 1)
		assert.Equal(t, *e, repo.entries[0])
	})

	t.Run("rejects bad input", func(t *testing.T) {
		svc, repo := newTestService()
		id := uuid.New()

		cases := []struct {
			name         string
			userID       string
			action       ActionType
			resourceType string
			outcome      Outcome
		}{
			{"empty user", "", ActionCreate, "appointment", OutcomeSuccess},
			{"unknown action", "u1", ActionType("PATCH"), "appointment", OutcomeSuccess},
			{"empty resource type", "u1", ActionCreate, "", OutcomeSuccess},
			{"unknown outcome", "u1", ActionCreate, "appointment", Outcome("MAYBE")},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Record(context.Background(), tc.userID, tc.action, tc.resourceType, id, tc.outcome)
				assert.True(t, apperr.IsKind(err, apperr.KindValidation))
			})
		}
		assert.Empty(t, repo.entries, "rejected records must not be inserted")
	})
}

func TestListClampsPagination(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.ListByResource(context.Background(), "appointment", uuid.New(), 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastLimit)
	assert.Equal(t, 0, repo.lastOffset)

	_, err = svc.ListByUser(context.Background(), "dr-jones", 10_000, 30)
	require.NoError(t, err)
	assert.Equal(t, 200, repo.lastLimit)
	assert.Equal(t, 30, repo.lastOffset)
}

func TestListByResourceRequiresType(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.ListByResource(context.Background(), "", uuid.New(), 10, 0)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestActionTypeValid(t *testing.T) {
	for _, a := range []ActionType{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionLogin, ActionLogout} {
		assert.True(t, a.Valid(), "%s", a)
	}
	assert.False(t, ActionType("").Valid())
	assert.False(t, ActionType("create").Valid())
}
