package audit

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrEntryNotFound = errors.New("audit entry not found")

// Repository is insert-and-query only. The absence of update and delete
// methods is the safety property, not an omission.
type Repository interface {
	Insert(ctx context.Context, e Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID, limit, offset int) ([]Entry, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Entry, error)
}
