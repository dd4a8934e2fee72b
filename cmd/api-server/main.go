package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/carepoint/healthcare-records/internal/api"
	"github.com/carepoint/healthcare-records/internal/appointment"
	"github.com/carepoint/healthcare-records/internal/audit"
	"github.com/carepoint/healthcare-records/internal/config"
	"github.com/carepoint/healthcare-records/internal/db"
	"github.com/carepoint/healthcare-records/internal/medicalrecord"
	"github.com/carepoint/healthcare-records/internal/metrics"
	"github.com/carepoint/healthcare-records/internal/patient"
	"github.com/carepoint/healthcare-records/internal/provider"
	redisclient "github.com/carepoint/healthcare-records/internal/redis"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config load error")
	}

	logger := newLogger(cfg.Env)
	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Str("version", version).
		Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	if err := db.Migrate(rootCtx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migration error")
	}

	rdb, err := redisclient.NewRedisClient(redisclient.Options{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		PoolSize: cfg.RedisPoolSize,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn().Err(err).Msg("error closing redis")
		}
	}()
	logger.Info().Msg("connected to redis")

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	txRunner := db.NewPgTxRunner(pool)
	auditSvc := audit.NewService(audit.NewPgRepository(pool))
	locker := redisclient.NewRedisAppointmentLocker(rdb, cfg.LockTTL)

	apptSvc := appointment.NewService(
		appointment.NewPgRepository(pool), auditSvc, txRunner, locker, m, logger)
	patientSvc := patient.NewService(patient.NewPgRepository(pool), auditSvc, txRunner)
	providerSvc := provider.NewService(provider.NewPgRepository(pool), auditSvc, txRunner)
	recordSvc := medicalrecord.NewService(
		medicalrecord.NewPgRepository(pool), appointment.NewPgRepository(pool), auditSvc, txRunner)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Metrics:        m,
		Registry:       registry,
		JWTSigningKey:  []byte(cfg.JWTSigningKey),
		Appointments:   apptSvc,
		Patients:       patientSvc,
		Providers:      providerSvc,
		MedicalRecords: recordSvc,
		Audit:          auditSvc,
		Pool:           pool,
		Redis:          rdb,
		Version:        version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	logger.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newLogger(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "dev" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
