package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carepoint/healthcare-records/internal/appointment"
)

func createSlotHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSlotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, logger, "could not parse JSON body")
			return
		}

		in, err := req.validate()
		if err != nil {
			writeError(w, logger, err)
			return
		}

		appt, err := svc.CreateSlot(r.Context(), in)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func bookAppointmentHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r, logger)
		if !ok {
			return
		}

		var req BookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, logger, "could not parse JSON body")
			return
		}
		patientID, err := req.validate()
		if err != nil {
			writeError(w, logger, err)
			return
		}

		appt, err := svc.Book(r.Context(), id, patientID)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func checkInHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r, logger)
		if !ok {
			return
		}

		var req CheckInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, logger, "could not parse JSON body")
			return
		}
		checkinTime, err := req.validate()
		if err != nil {
			writeError(w, logger, err)
			return
		}

		appt, err := svc.CheckIn(r.Context(), id, checkinTime)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func setStatusHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r, logger)
		if !ok {
			return
		}

		var req SetStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, logger, "could not parse JSON body")
			return
		}

		appt, err := svc.SetStatus(r.Context(), id, appointment.Status(req.Status))
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func rescheduleHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r, logger)
		if !ok {
			return
		}

		var req RescheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, logger, "could not parse JSON body")
			return
		}
		newTime, err := req.validate()
		if err != nil {
			writeError(w, logger, err)
			return
		}

		appt, err := svc.Reschedule(r.Context(), id, newTime)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r, logger)
		if !ok {
			return
		}

		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

// listAppointmentsHandler filters by exactly one of provider_id or
// patient_id.
func listAppointmentsHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r)

		if v := r.URL.Query().Get("provider_id"); v != "" {
			providerID, err := uuid.Parse(v)
			if err != nil {
				badRequest(w, logger, "provider_id must be a valid UUID")
				return
			}
			appts, err := svc.ListByProvider(r.Context(), providerID, limit, offset)
			if err != nil {
				writeError(w, logger, err)
				return
			}
			writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
			return
		}

		if v := r.URL.Query().Get("patient_id"); v != "" {
			patientID, err := uuid.Parse(v)
			if err != nil {
				badRequest(w, logger, "patient_id must be a valid UUID")
				return
			}
			appts, err := svc.ListByPatient(r.Context(), patientID, limit, offset)
			if err != nil {
				writeError(w, logger, err)
				return
			}
			writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
			return
		}

		badRequest(w, logger, "provider_id or patient_id query parameter is required")
	}
}

func appointmentID(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, logger, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}
