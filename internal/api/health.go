package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// livenessHandler reports that the process is up. It never touches
// dependencies, so a wedged database cannot get the pod restarted.
func livenessHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: version})
	}
}

// readinessHandler pings postgres and redis with a short deadline.
func readinessHandler(pool *pgxpool.Pool, rdb *redis.Client, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"postgres": "ok", "redis": "ok"}
		status := http.StatusOK

		if err := pool.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("readiness: postgres ping failed")
			checks["postgres"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("readiness: redis ping failed")
			checks["redis"] = "unreachable"
			status = http.StatusServiceUnavailable
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		writeJSON(w, status, healthResponse{Status: state, Checks: checks})
	}
}
