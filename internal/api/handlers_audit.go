package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/carepoint/healthcare-records/internal/appointment"
	"github.com/carepoint/healthcare-records/internal/audit"
)

// appointmentAuditHandler returns the trail for one appointment.
func appointmentAuditHandler(svc *audit.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r, logger)
		if !ok {
			return
		}
		limit, offset := pagination(r)

		entries, err := svc.ListByResource(r.Context(), appointment.ResourceType, id, limit, offset)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toAuditEntryResponses(entries))
	}
}

// userAuditHandler returns all actions recorded for one acting identity.
func userAuditHandler(svc *audit.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			badRequest(w, logger, "user_id query parameter is required")
			return
		}
		limit, offset := pagination(r)

		entries, err := svc.ListByUser(r.Context(), userID, limit, offset)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toAuditEntryResponses(entries))
	}
}
