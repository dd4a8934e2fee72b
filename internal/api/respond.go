package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/carepoint/healthcare-records/internal/apperr"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError classifies err through the error taxonomy and renders its
// stable code. Internal causes are logged server-side and never rendered.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	ae := apperr.From(err)
	if ae.Kind == apperr.KindInternal {
		logger.Error().Str("detail", ae.Detail()).Msg("internal error")
	}
	writeJSON(w, ae.HTTPStatus(), ErrorResponse{
		Error:   ae.Code,
		Details: ae.Error(),
	})
}

func badRequest(w http.ResponseWriter, logger zerolog.Logger, format string, args ...any) {
	writeError(w, logger, apperr.Validation(format, args...))
}
