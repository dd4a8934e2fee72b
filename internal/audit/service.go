package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/healthcare-records/internal/apperr"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock substitutes the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Record appends one entry. The id and timestamp are server-assigned; there
// is no way to amend an entry afterwards. When called inside a transaction
// the insert commits or rolls back with the surrounding state change.
func (s *Service) Record(ctx context.Context, userID string, action ActionType, resourceType string, resourceID uuid.UUID, outcome Outcome) (*Entry, error) {
	if userID == "" {
		return nil, apperr.Validation("audit user id is required")
	}
	if !action.Valid() {
		return nil, apperr.Validation("unknown audit action %q", string(action))
	}
	if resourceType == "" {
		return nil, apperr.Validation("audit resource type is required")
	}
	if !outcome.Valid() {
		return nil, apperr.Validation("unknown audit outcome %q", string(outcome))
	}

	e := Entry{
		ID:           uuid.New(),
		UserID:       userID,
		ActionType:   action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Outcome:      outcome,
		Timestamp:    s.now().UTC(),
	}

	if err := s.repo.Insert(ctx, e); err != nil {
		return nil, apperr.Internal(err)
	}
	return &e, nil
}

func (s *Service) ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID, limit, offset int) ([]Entry, error) {
	if resourceType == "" {
		return nil, apperr.Validation("resource type is required")
	}
	limit, offset = clampPage(limit, offset)
	entries, err := s.repo.ListByResource(ctx, resourceType, resourceID, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return entries, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Entry, error) {
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}
	limit, offset = clampPage(limit, offset)
	entries, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return entries, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
