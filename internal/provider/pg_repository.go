package provider

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

const providerCols = `id, name, specialty, license_number, email, active, created_at, updated_at, updated_by`

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Specialty,
		&p.LicenseNumber,
		&p.Email,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PgRepository) Create(ctx context.Context, p *Provider) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO providers (id, name, specialty, license_number, email, active, created_at, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.Name, p.Specialty, p.LicenseNumber, p.Email, p.Active, p.CreatedAt, p.UpdatedAt, p.UpdatedBy)
	return err
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+providerCols+`
		FROM providers
		WHERE id = $1
	`, id)
	return scanProvider(row)
}

func (r *PgRepository) List(ctx context.Context, specialty string, limit, offset int) ([]Provider, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+providerCols+`
		FROM providers
		WHERE active
		  AND ($1 = '' OR specialty = $1)
		ORDER BY name
		LIMIT $2 OFFSET $3
	`, specialty, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) Update(ctx context.Context, p *Provider) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE providers
		SET name = $2,
		    specialty = $3,
		    license_number = $4,
		    email = $5,
		    active = $6,
		    updated_at = $7,
		    updated_by = $8
		WHERE id = $1
	`, p.ID, p.Name, p.Specialty, p.LicenseNumber, p.Email, p.Active, p.UpdatedAt, p.UpdatedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProviderNotFound
	}
	return nil
}
