package appointment

import (
	"context"
	"errors"
	"time"

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

const apptCols = `id, provider_id, patient_id, scheduled_at, checkin_time, status,
	appointment_type, notes, custom_data, created_at, updated_at, updated_by`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID,
		&a.ProviderID,
		&a.PatientID,
		&a.ScheduledAt,
		&a.CheckinTime,
		&a.Status,
		&a.Type,
		&a.Notes,
		&a.CustomData,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PgRepository) Create(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, provider_id, patient_id, scheduled_at, checkin_time,
			status, appointment_type, notes, custom_data, created_at, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, a.ID, a.ProviderID, a.PatientID, a.ScheduledAt, a.CheckinTime,
		a.Status, a.Type, a.Notes, a.CustomData, a.CreatedAt, a.UpdatedAt, a.UpdatedBy)
	return err
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+apptCols+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

// GetForUpdate takes the row lock for the rest of the transaction. Any
// concurrent ClaimForPatient, CompareAndSetStatus or Update on the same row
// blocks until this transaction commits or rolls back.
func (r *PgRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+apptCols+`
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+`
		FROM appointments
		WHERE provider_id = $1
		ORDER BY scheduled_at NULLS LAST
		LIMIT $2 OFFSET $3
	`, providerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY scheduled_at NULLS LAST
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// ClaimForPatient is the optimistic check-then-write guard: the WHERE clause
// re-validates the status immediately before commit, so a losing concurrent
// booker gets ErrNotClaimable instead of silently overwriting the winner.
func (r *PgRepository) ClaimForPatient(ctx context.Context, id, patientID uuid.UUID, updatedBy string, now time.Time) (*Appointment, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE appointments
		SET patient_id = $2,
		    status = $3,
		    updated_at = $4,
		    updated_by = $5
		WHERE id = $1
		  AND status = $6
		RETURNING `+apptCols+`
	`, id, patientID, StatusScheduled, now, updatedBy, StatusAvailable)

	a, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrNotClaimable
		}
		return nil, err
	}
	return a, nil
}

func (r *PgRepository) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments
		SET scheduled_at = $2,
		    checkin_time = $3,
		    status = $4,
		    notes = $5,
		    custom_data = $6,
		    updated_at = $7,
		    updated_by = $8
		WHERE id = $1
	`, a.ID, a.ScheduledAt, a.CheckinTime, a.Status, a.Notes, a.CustomData, a.UpdatedAt, a.UpdatedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// SetCheckinTime writes the check-in stamp and nothing else; status and
// patient_id stay whatever they are at commit time.
func (r *PgRepository) SetCheckinTime(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments
		SET checkin_time = $2,
		    updated_at = $3,
		    updated_by = $4
		WHERE id = $1
	`, a.ID, a.CheckinTime, a.UpdatedAt, a.UpdatedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to Status, updatedBy string, now time.Time) (*Appointment, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = $3,
		    updated_by = $4
		WHERE id = $1
		  AND status = $5
		RETURNING `+apptCols+`
	`, id, to, now, updatedBy, from)

	a, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrNotClaimable
		}
		return nil, err
	}
	return a, nil
}

func (r *PgRepository) FindOverdue(ctx context.Context, now time.Time, limit int) ([]Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+`
		FROM appointments
		WHERE scheduled_at IS NOT NULL
		  AND scheduled_at < $1
		  AND status IN ($2, $3)
		ORDER BY scheduled_at
		LIMIT $4
	`, now, StatusAvailable, StatusScheduled, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
