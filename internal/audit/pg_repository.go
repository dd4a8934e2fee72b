package audit

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepoint/healthcare-records/internal/db"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.ActionType,
		&e.ResourceType,
		&e.ResourceID,
		&e.Outcome,
		&e.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *PgRepository) Insert(ctx context.Context, e Entry) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO audit_log (id, user_id, action_type, resource_type, resource_id, outcome, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.UserID, e.ActionType, e.ResourceType, e.ResourceID, e.Outcome, e.Timestamp)
	return err
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT id, user_id, action_type, resource_type, resource_id, outcome, recorded_at
		FROM audit_log
		WHERE id = $1
	`, id)
	return scanEntry(row)
}

func (r *PgRepository) ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID, limit, offset int) ([]Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, user_id, action_type, resource_type, resource_id, outcome, recorded_at
		FROM audit_log
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY recorded_at DESC
		LIMIT $3 OFFSET $4
	`, resourceType, resourceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *PgRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, user_id, action_type, resource_type, resource_id, outcome, recorded_at
		FROM audit_log
		WHERE user_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]Entry, error) {
	var result []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
