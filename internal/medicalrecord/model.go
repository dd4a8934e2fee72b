// Package medicalrecord provides clinical documentation attached to
// appointments. A record may only be created once its appointment is ready:
// a patient booked and the visit in progress or completed.
package medicalrecord

import (
	"github.com/google/uuid"

	"github.com/carepoint/healthcare-records/internal/audited"
)

const ResourceType = "medical_record"

type MedicalRecord struct {
	audited.Fields
	AppointmentID uuid.UUID
	PatientID     uuid.UUID
	ProviderID    uuid.UUID
	Diagnosis     string
	Treatment     string
	Notes         string
}
