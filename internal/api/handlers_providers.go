package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carepoint/healthcare-records/internal/provider"
)

func createProviderHandler(svc *provider.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProviderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, logger, "could not parse JSON body")
			return
		}

		p, err := svc.Create(r.Context(), provider.CreateInput{
			Name:          req.Name,
			Specialty:     req.Specialty,
			LicenseNumber: req.LicenseNumber,
			Email:         req.Email,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, toProviderResponse(p))
	}
}

func getProviderHandler(svc *provider.Service, logger zerolog.Logger) http.HandlerFunc {
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
		writeJSON(w, http.StatusOK, toProviderResponse(p))
	}
}

func listProvidersHandler(svc *provider.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r)

		providers, err := svc.List(r.Context(), r.URL.Query().Get("specialty"), limit, offset)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		out := make([]ProviderResponse, 0, len(providers))
		for i := range providers {
			out = append(out, toProviderResponse(&providers[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func deactivateProviderHandler(svc *provider.Service, logger zerolog.Logger) http.HandlerFunc {
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
		writeJSON(w, http.StatusOK, toProviderResponse(p))
	}
}
