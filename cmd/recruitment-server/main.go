// cmd/recruitment-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/SOL-ICT/recruitment-core/internal/common/config"
	"github.com/SOL-ICT/recruitment-core/internal/common/database"
	"github.com/SOL-ICT/recruitment-core/internal/common/logger"
	"github.com/SOL-ICT/recruitment-core/internal/common/observability"
	httpapi "github.com/SOL-ICT/recruitment-core/internal/http"
	"github.com/SOL-ICT/recruitment-core/internal/recruitment/application"
	"github.com/SOL-ICT/recruitment-core/internal/recruitment/assessment"
	"github.com/SOL-ICT/recruitment-core/internal/recruitment/directory"
	"github.com/SOL-ICT/recruitment-core/internal/recruitment/eligibility"
	"github.com/SOL-ICT/recruitment-core/internal/recruitment/interview"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting recruitment server...",
		zap.String("name", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("recruitment-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Wire the pipeline services ---
	dir := directory.NewCachedStore(
		directory.NewPostgresStore(pg.DB),
		redis.Client,
		config.GetDuration(cfg.Pipeline.Directory.CacheTTL),
		log,
	)

	evaluator := eligibility.New(eligibility.Policy{
		Weights:  cfg.Pipeline.Eligibility.Weights,
		Required: cfg.Pipeline.Eligibility.Required,
	})

	apps := application.NewService(pg, application.NewStore(pg.DB), dir, evaluator, log)

	assessments := assessment.NewService(
		pg,
		assessment.NewStore(pg.DB),
		apps,
		redis,
		config.GetDuration(cfg.Pipeline.Assessment.SubmitLockTTL),
		log,
	)

	interviews := interview.NewService(
		pg,
		interview.NewStore(pg.DB),
		apps,
		cfg.Pipeline.Interview.RescheduleWindowHours,
		log,
	)

	router := httpapi.NewRouter(httpapi.Services{
		Applications: apps,
		Assessments:  assessments,
		Interviews:   interviews,
	}, log, obs, cfg.App.Environment == "development")

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutdown signal received, draining connections...")

	shutdownCtx, cancel := context.WithTimeout(ctx, config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}

	zapLog.Info("Server stopped")
}
