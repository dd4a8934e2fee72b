package provider

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

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type CreateInput struct {
	Name          string
	Specialty     string
	LicenseNumber string
	Email         string
}

func (in CreateInput) validate() error {
	if in.Name == "" {
		return apperr.Validation("provider name is required")
	}
	if in.LicenseNumber == "" {
		return apperr.Validation("provider license number is required")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Provider, error) {
	ident, ok := identity.FromContext(ctx)
	if !ok {
		return nil, apperr.Unauthorized("no caller identity")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		Name:          in.Name,
		Specialty:     in.Specialty,
		LicenseNumber: in.LicenseNumber,
		Email:         in.Email,
		Active:        true,
	}
	p.StampCreate(ctx, s.now())

	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
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

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*Provider, error) {
	ident, ok := identity.FromContext(ctx)
	if !ok {
		return nil, apperr.Unauthorized("no caller identity")
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

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Provider, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			return nil, apperr.NotFound(ResourceType, id)
		}
		return nil, apperr.Internal(err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, specialty string, limit, offset int) ([]Provider, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	providers, err := s.repo.List(ctx, specialty, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return providers, nil
}
