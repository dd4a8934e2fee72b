package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/healthcare-records/internal/apperr"
	"github.com/carepoint/healthcare-records/internal/audit"
	"github.com/carepoint/healthcare-records/internal/db"
	"github.com/carepoint/healthcare-records/internal/identity"
)

type Service struct {
	repo    Repository
	auditor *audit.Service
	tx      db.TxRunner
	now     func() time.Time
}

func NewService(repo Repository, auditor *audit.Service, tx db.TxRunner) *Service {
	return &Service{repo: repo, auditor: auditor, tx: tx, now: time.Now}
}

// WithClock substitutes the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type CreateInput struct {
	Name      string
	BirthDate *time.Time
	Email     string
	Phone     string
}

func (in CreateInput) validate() error {
	if in.Name == "" {
		return apperr.Validation("patient name is required")
	}
	if len(in.Name) > 200 {
		return apperr.Validation("patient name must be at most %d characters", 200)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Patient, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &Patient{
		Name:      in.Name,
		BirthDate: in.BirthDate,
		Email:     in.Email,
		Phone:     in.Phone,
		Active:    true,
	}
	p.StampCreate(ctx, s.now())

	err = s.tx.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, p); err != nil {
			return err
		}
		_, err := s.auditor.Record(txCtx, ident.UserID, audit.ActionCreate, ResourceType, p.ID, audit.OutcomeSuccess)
		return err
	})
	if err != nil {
		return nil, apperr.From(err)
	}
	return p, nil
}

type UpdateInput struct {
	Name      *string
	BirthDate *time.Time
	Email     *string
	Phone     *string
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Patient, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, apperr.Validation("patient name cannot be empty")
		}
		p.Name = *in.Name
	}
	if in.BirthDate != nil {
		p.BirthDate = in.BirthDate
	}
	if in.Email != nil {
		p.Email = *in.Email
	}
	if in.Phone != nil {
		p.Phone = *in.Phone
	}
	p.StampUpdate(ctx, s.now())

	if err := s.persistUpdate(ctx, ident.UserID, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Deactivate is the only removal path; patient rows are never deleted.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*Patient, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Active = false
	p.StampUpdate(ctx, s.now())

	err = s.tx.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, p); err != nil {
			return err
		}
		_, err := s.auditor.Record(txCtx, ident.UserID, audit.ActionDelete, ResourceType, p.ID, audit.OutcomeSuccess)
		return err
	})
	if err != nil {
		return nil, apperr.From(err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, apperr.NotFound(ResourceType, id)
		}
		return nil, apperr.Internal(err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, activeOnly bool, limit, offset int) ([]Patient, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	patients, err := s.repo.List(ctx, activeOnly, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return patients, nil
}

func (s *Service) persistUpdate(ctx context.Context, userID string, p *Patient) error {
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, p); err != nil {
			return err
		}
		_, err := s.auditor.Record(txCtx, userID, audit.ActionUpdate, ResourceType, p.ID, audit.OutcomeSuccess)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return apperr.NotFound(ResourceType, p.ID)
		}
		return apperr.From(err)
	}
	return nil
}

func requireIdentity(ctx context.Context) (identity.Identity, error) {
	ident, ok := identity.FromContext(ctx)
	if !ok {
		return identity.Identity{}, apperr.Unauthorized("no caller identity")
	}
	return ident, nil
}
