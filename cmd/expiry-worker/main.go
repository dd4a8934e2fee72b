package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/carepoint/healthcare-records/internal/appointment"
	"github.com/carepoint/healthcare-records/internal/audit"
	"github.com/carepoint/healthcare-records/internal/config"
	"github.com/carepoint/healthcare-records/internal/db"
	redisclient "github.com/carepoint/healthcare-records/internal/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config load error")
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("component", "expiry-worker").Logger()
	logger.Info().Str("env", cfg.Env).Dur("interval", cfg.WorkerInterval).Msg("expiry-worker starting up")

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

	auditSvc := audit.NewService(audit.NewPgRepository(pool))
	locker := redisclient.NewRedisAppointmentLocker(rdb, cfg.LockTTL)
	svc := appointment.NewService(
		appointment.NewPgRepository(pool), auditSvc, db.NewPgTxRunner(pool), locker, nil, logger)

	// Run once at startup so a crash-looping worker still makes progress.
	runOnce(rootCtx, svc, logger)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info().Msg("shutdown signal received, stopping expiry worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, logger)
		}
	}
}

func runOnce(ctx context.Context, svc *appointment.Service, logger zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	n, err := svc.ResolveOverdue(runCtx)
	if err != nil {
		logger.Error().Err(err).Msg("overdue resolution run error")
		return
	}
	logger.Info().Int("resolved", n).Dur("took", time.Since(start)).Msg("overdue resolution run complete")
}
