package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carepoint/healthcare-records/internal/medicalrecord"
)

func createMedicalRecordHandler(svc *medicalrecord.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateMedicalRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, logger, "could not parse JSON body")
			return
		}

		in, err := req.validate()
		if err != nil {
			writeError(w, logger, err)
			return
		}

		m, err := svc.Create(r.Context(), in)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMedicalRecordResponse(m))
	}
}

func getMedicalRecordHandler(svc *medicalrecord.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			badRequest(w, logger, "id must be a valid UUID")
			return
		}

		m, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicalRecordResponse(m))
	}
}

func updateMedicalRecordHandler(svc *medicalrecord.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			badRequest(w, logger, "id must be a valid UUID")
			return
		}

		var req UpdateMedicalRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, logger, "could not parse JSON body")
			return
		}

		m, err := svc.Update(r.Context(), id, medicalrecord.UpdateInput{
			Diagnosis: req.Diagnosis,
			Treatment: req.Treatment,
			Notes:     req.Notes,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicalRecordResponse(m))
	}
}

func listPatientMedicalRecordsHandler(svc *medicalrecord.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			badRequest(w, logger, "id must be a valid UUID")
			return
		}
		limit, offset := pagination(r)

		records, err := svc.ListByPatient(r.Context(), patientID, limit, offset)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		out := make([]MedicalRecordResponse, 0, len(records))
		for i := range records {
			out = append(out, toMedicalRecordResponse(&records[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}
