package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/carepoint/healthcare-records/internal/appointment"
	"github.com/carepoint/healthcare-records/internal/audit"
	"github.com/carepoint/healthcare-records/internal/medicalrecord"
	"github.com/carepoint/healthcare-records/internal/metrics"
	"github.com/carepoint/healthcare-records/internal/patient"
	"github.com/carepoint/healthcare-records/internal/provider"
)

// RouterConfig carries everything the HTTP layer needs. Services are
// required; Metrics and Registry may be nil (the middleware and the
// /metrics route are skipped).
type RouterConfig struct {
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	JWTSigningKey []byte

	Appointments   *appointment.Service
	Patients       *patient.Service
	Providers      *provider.Service
	MedicalRecords *medicalrecord.Service
	Audit          *audit.Service

	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(MetricsMiddleware(cfg.Metrics))
	}

	r.Get("/health/live", livenessHandler(cfg.Version))
	r.Get("/health/ready", readinessHandler(cfg.Pool, cfg.Redis, cfg.Logger))
	if cfg.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(Authenticator(cfg.JWTSigningKey, cfg.Logger))

		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", createSlotHandler(cfg.Appointments, cfg.Logger))
			r.Get("/", listAppointmentsHandler(cfg.Appointments, cfg.Logger))
			r.Get("/{id}", getAppointmentHandler(cfg.Appointments, cfg.Logger))
			r.Post("/{id}/book", bookAppointmentHandler(cfg.Appointments, cfg.Logger))
			r.Post("/{id}/checkin", checkInHandler(cfg.Appointments, cfg.Logger))
			r.Post("/{id}/status", setStatusHandler(cfg.Appointments, cfg.Logger))
			r.Post("/{id}/reschedule", rescheduleHandler(cfg.Appointments, cfg.Logger))
			r.Get("/{id}/audit", appointmentAuditHandler(cfg.Audit, cfg.Logger))
		})

		r.Route("/patients", func(r chi.Router) {
			r.Post("/", createPatientHandler(cfg.Patients, cfg.Logger))
			r.Get("/", listPatientsHandler(cfg.Patients, cfg.Logger))
			r.Get("/{id}", getPatientHandler(cfg.Patients, cfg.Logger))
			r.Patch("/{id}", updatePatientHandler(cfg.Patients, cfg.Logger))
			r.Delete("/{id}", deactivatePatientHandler(cfg.Patients, cfg.Logger))
			r.Get("/{id}/medical-records", listPatientMedicalRecordsHandler(cfg.MedicalRecords, cfg.Logger))
		})

		r.Route("/providers", func(r chi.Router) {
			r.Post("/", createProviderHandler(cfg.Providers, cfg.Logger))
			r.Get("/", listProvidersHandler(cfg.Providers, cfg.Logger))
			r.Get("/{id}", getProviderHandler(cfg.Providers, cfg.Logger))
			r.Delete("/{id}", deactivateProviderHandler(cfg.Providers, cfg.Logger))
		})

		r.Route("/medical-records", func(r chi.Router) {
			r.Post("/", createMedicalRecordHandler(cfg.MedicalRecords, cfg.Logger))
			r.Get("/{id}", getMedicalRecordHandler(cfg.MedicalRecords, cfg.Logger))
			r.Patch("/{id}", updateMedicalRecordHandler(cfg.MedicalRecords, cfg.Logger))
		})

		r.Get("/audit", userAuditHandler(cfg.Audit, cfg.Logger))
	})

	return r
}
