package medicalrecord

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrRecordNotFound = errors.New("medical record not found")

type Repository interface {
	Create(ctx context.Context, m *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]MedicalRecord, error)
	Update(ctx context.Context, m *MedicalRecord) error
}
