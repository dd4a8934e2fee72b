// Package audited holds the audit-stamped fields shared by every persisted
// entity. Stamping is explicit and server-controlled: created_at, updated_at
// and updated_by are derived from server time and the context identity, and
// any client-supplied value for them is discarded before a write.
package audited

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/healthcare-records/internal/identity"
)

type Fields struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	UpdatedBy string
}

// StampCreate assigns a fresh id and sets all audit fields from server time
// and the acting identity.
func (f *Fields) StampCreate(ctx context.Context, now time.Time) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.CreatedAt = now
	f.StampUpdate(ctx, now)
}

// StampUpdate overwrites updated_at and updated_by. UpdatedAt never moves
// backwards even if the supplied clock does.
func (f *Fields) StampUpdate(ctx context.Context, now time.Time) {
	if now.After(f.UpdatedAt) {
		f.UpdatedAt = now
	}
	f.UpdatedBy = identity.FromContextOrSystem(ctx).UserID
}
