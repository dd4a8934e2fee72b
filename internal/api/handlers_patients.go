package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carepoint/healthcare-records/internal/patient"
)

func createPatientHandler(svc *patient.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, logger, "could not parse JSON body")
			return
		}

		p, err := svc.Create(r.Context(), patient.CreateInput{
			Name:      req.Name,
			BirthDate: req.BirthDate,
			Email:     req.Email,
			Phone:     req.Phone,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPatientResponse(p))
	}
}

func getPatientHandler(svc *patient.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			badRequest(w, logger, "id must be a valid UUID")
			return
		}

		p, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

func listPatientsHandler(svc *patient.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r)
		activeOnly := r.URL.Query().Get("include_inactive") != "true"

		patients, err := svc.List(r.Context(), activeOnly, limit, offset)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		out := make([]PatientResponse, 0, len(patients))
		for i := range patients {
			out = append(out, toPatientResponse(&patients[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func updatePatientHandler(svc *patient.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			badRequest(w, logger, "id must be a valid UUID")
			return
		}

		var req UpdatePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, logger, "could not parse JSON body")
			return
		}

		p, err := svc.Update(r.Context(), id, patient.UpdateInput{
			Name:      req.Name,
			BirthDate: req.BirthDate,
			Email:     req.Email,
			Phone:     req.Phone,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

func deactivatePatientHandler(svc *patient.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			badRequest(w, logger, "id must be a valid UUID")
			return
		}

		p, err := svc.Deactivate(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}
