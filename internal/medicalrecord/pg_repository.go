package medicalrecord

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

const recordCols = `id, appointment_id, patient_id, provider_id, diagnosis, treatment, notes,
	created_at, updated_at, updated_by`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var m MedicalRecord
	err := row.Scan(
		&m.ID,
		&m.AppointmentID,
		&m.PatientID,
		&m.ProviderID,
		&m.Diagnosis,
		&m.Treatment,
		&m.Notes,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PgRepository) Create(ctx context.Context, m *MedicalRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_records (id, appointment_id, patient_id, provider_id,
			diagnosis, treatment, notes, created_at, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, m.ID, m.AppointmentID, m.PatientID, m.ProviderID,
		m.Diagnosis, m.Treatment, m.Notes, m.CreatedAt, m.UpdatedAt, m.UpdatedBy)
	return err
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+recordCols+`
		FROM medical_records
		WHERE id = $1
	`, id)
	return scanRecord(row)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]MedicalRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+recordCols+`
		FROM medical_records
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MedicalRecord
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) Update(ctx context.Context, m *MedicalRecord) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_records
		SET diagnosis = $2,
		    treatment = $3,
		    notes = $4,
		    updated_at = $5,
		    updated_by = $6
		WHERE id = $1
	`, m.ID, m.Diagnosis, m.Treatment, m.Notes, m.UpdatedAt, m.UpdatedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}
