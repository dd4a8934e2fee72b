package provider

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrProviderNotFound = errors.New("provider not found")

type Repository interface {
	Create(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	List(ctx context.Context, specialty string, limit, offset int) ([]Provider, error)
	Update(ctx context.Context, p *Provider) error
}
