package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/healthcare-records/internal/apperr"
	"github.com/carepoint/healthcare-records/internal/appointment"
	"github.com/carepoint/healthcare-records/internal/audit"
	"github.com/carepoint/healthcare-records/internal/medicalrecord"
	"github.com/carepoint/healthcare-records/internal/patient"
	"github.com/carepoint/healthcare-records/internal/provider"
)

// Request shapes carry explicit validate() methods invoked before any domain
// logic runs. Audit fields (created_at, updated_at, updated_by) deliberately
// have no request counterpart: whatever a client sends for them is dropped
// during decoding and re-derived server-side.

type CreateSlotRequest struct {
	ProviderID      string          `json:"provider_id"`
	ScheduledAt     *time.Time      `json:"scheduled_at"`
	AppointmentType string          `json:"appointment_type"`
	Notes           string          `json:"notes,omitempty"`
	CustomData      json.RawMessage `json:"custom_data,omitempty"`
}

func (r CreateSlotRequest) validate() (appointment.CreateSlotInput, error) {
	providerID, err := uuid.Parse(r.ProviderID)
	if err != nil {
		return appointment.CreateSlotInput{}, apperr.Validation("provider_id must be a valid UUID")
	}
	if r.ScheduledAt == nil {
		return appointment.CreateSlotInput{}, apperr.Validation("scheduled_at is required")
	}
	if len(r.Notes) > 2000 {
		return appointment.CreateSlotInput{}, apperr.Validation("notes must be at most %d characters", 2000)
	}
	return appointment.CreateSlotInput{
		ProviderID:  providerID,
		ScheduledAt: *r.ScheduledAt,
		Type:        appointment.Type(r.AppointmentType),
		Notes:       r.Notes,
		CustomData:  r.CustomData,
	}, nil
}

type BookRequest struct {
	PatientID string `json:"patient_id"`
}

func (r BookRequest) validate() (uuid.UUID, error) {
	patientID, err := uuid.Parse(r.PatientID)
	if err != nil {
		return uuid.Nil, apperr.Validation("patient_id must be a valid UUID")
	}
	return patientID, nil
}

type CheckInRequest struct {
	CheckinTime *time.Time `json:"checkin_time"`
}

func (r CheckInRequest) validate() (time.Time, error) {
	if r.CheckinTime == nil {
		return time.Time{}, apperr.Validation("checkin_time is required")
	}
	return *r.CheckinTime, nil
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type RescheduleRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
}

func (r RescheduleRequest) validate() (time.Time, error) {
	if r.ScheduledAt == nil {
		return time.Time{}, apperr.Validation("scheduled_at is required")
	}
	return *r.ScheduledAt, nil
}

type AppointmentResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProviderID  uuid.UUID       `json:"provider_id"`
	PatientID   *uuid.UUID      `json:"patient_id,omitempty"`
	ScheduledAt *time.Time      `json:"scheduled_at,omitempty"`
	CheckinTime *time.Time      `json:"checkin_time,omitempty"`
	Status      string          `json:"status"`
	Type        string          `json:"appointment_type"`
	DurationMin int             `json:"duration_minutes"`
	Notes       string          `json:"notes,omitempty"`
	CustomData  json.RawMessage `json:"custom_data,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	UpdatedBy   string          `json:"updated_by"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		ProviderID:  a.ProviderID,
		PatientID:   a.PatientID,
		ScheduledAt: a.ScheduledAt,
		CheckinTime: a.CheckinTime,
		Status:      string(a.Status),
		Type:        string(a.Type),
		DurationMin: int(a.Type.Duration().Minutes()),
		Notes:       a.Notes,
		CustomData:  a.CustomData,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		UpdatedBy:   a.UpdatedBy,
	}
}

func toAppointmentResponses(appts []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	return out
}

type CreatePatientRequest struct {
	Name      string     `json:"name"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
}

type UpdatePatientRequest struct {
	Name      *string    `json:"name,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
}

type PatientResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	UpdatedBy string     `json:"updated_by"`
}

func toPatientResponse(p *patient.Patient) PatientResponse {
	return PatientResponse{
		ID:        p.ID,
		Name:      p.Name,
		BirthDate: p.BirthDate,
		Email:     p.Email,
		Phone:     p.Phone,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		UpdatedBy: p.UpdatedBy,
	}
}

type CreateProviderRequest struct {
	Name          string `json:"name"`
	Specialty     string `json:"specialty,omitempty"`
	LicenseNumber string `json:"license_number"`
	Email         string `json:"email,omitempty"`
}

type ProviderResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Specialty     string    `json:"specialty,omitempty"`
	LicenseNumber string    `json:"license_number"`
	Email         string    `json:"email,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	UpdatedBy     string    `json:"updated_by"`
}

func toProviderResponse(p *provider.Provider) ProviderResponse {
	return ProviderResponse{
		ID:            p.ID,
		Name:          p.Name,
		Specialty:     p.Specialty,
		LicenseNumber: p.LicenseNumber,
		Email:         p.Email,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		UpdatedBy:     p.UpdatedBy,
	}
}

type CreateMedicalRecordRequest struct {
	AppointmentID string `json:"appointment_id"`
	Diagnosis     string `json:"diagnosis"`
	Treatment     string `json:"treatment,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

func (r CreateMedicalRecordRequest) validate() (medicalrecord.CreateInput, error) {
	apptID, err := uuid.Parse(r.AppointmentID)
	if err != nil {
		return medicalrecord.CreateInput{}, apperr.Validation("appointment_id must be a valid UUID")
	}
	return medicalrecord.CreateInput{
		AppointmentID: apptID,
		Diagnosis:     r.Diagnosis,
		Treatment:     r.Treatment,
		Notes:         r.Notes,
	}, nil
}

type UpdateMedicalRecordRequest struct {
	Diagnosis *string `json:"diagnosis,omitempty"`
	Treatment *string `json:"treatment,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

type MedicalRecordResponse struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientID     uuid.UUID `json:"patient_id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	Diagnosis     string    `json:"diagnosis"`
	Treatment     string    `json:"treatment,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	UpdatedBy     string    `json:"updated_by"`
}

func toMedicalRecordResponse(m *medicalrecord.MedicalRecord) MedicalRecordResponse {
	return MedicalRecordResponse{
		ID:            m.ID,
		AppointmentID: m.AppointmentID,
		PatientID:     m.PatientID,
		ProviderID:    m.ProviderID,
		Diagnosis:     m.Diagnosis,
		Treatment:     m.Treatment,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		UpdatedBy:     m.UpdatedBy,
	}
}

type AuditEntryResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       string    `json:"user_id"`
	ActionType   string    `json:"action_type"`
	ResourceType string    `json:"resource_type"`
	ResourceID   uuid.UUID `json:"resource_id"`
	Outcome      string    `json:"outcome"`
	Timestamp    time.Time `json:"timestamp"`
}

func toAuditEntryResponses(entries []audit.Entry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			ID:           e.ID,
			UserID:       e.UserID,
			ActionType:   string(e.ActionType),
			ResourceType: e.ResourceType,
			ResourceID:   e.ResourceID,
			Outcome:      string(e.Outcome),
			Timestamp:    e.Timestamp,
		})
	}
	return out
}
