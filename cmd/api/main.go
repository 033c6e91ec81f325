// Command api runs the compliance platform backend: it wires configuration,
// logging, tracing, storage and the domain services, starts the scheduled
// publish promoter and serves the operational HTTP endpoints.
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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/auditready/auditready-backend/internal/infrastructure/ai"
	"github.com/auditready/auditready-backend/internal/infrastructure/auth"
	"github.com/auditready/auditready-backend/internal/infrastructure/cache"
	"github.com/auditready/auditready-backend/internal/infrastructure/config"
	"github.com/auditready/auditready-backend/internal/infrastructure/database"
	"github.com/auditready/auditready-backend/internal/infrastructure/telemetry"
	"github.com/auditready/auditready-backend/internal/service/benchmark"
	guidancesvc "github.com/auditready/auditready-backend/internal/service/guidance"
	"github.com/auditready/auditready-backend/internal/service/library"
	"github.com/auditready/auditready-backend/internal/service/mapper"
	"github.com/auditready/auditready-backend/internal/service/orgreq"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := telemetry.SetupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracingCfg := telemetry.DefaultTracingConfig()
	tracingCfg.ServiceVersion = cfg.Version
	tracingCfg.Environment = cfg.Environment
	shutdownTracing, err := telemetry.InitTracing(ctx, tracingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	pool, err := database.NewPool(ctx, &cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := cache.NewRedisClient(&cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	verifier := auth.NewVerifier(cfg.Security.JWTSecret, cfg.Security.TokenExpiry)
	svcs := buildServices(cfg, logger, pool, redisClient)

	promoterDone := make(chan struct{})
	go runPublishPromoter(ctx, logger, svcs.guidance, cfg.Guidance.SchedulerInterval, promoterDone)

	mux := operationalMux(pool, redisClient)
	handler := &apiHandler{services: svcs, verifier: verifier, logger: logger}
	handler.register(mux)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	<-promoterDone
	return nil
}

type services struct {
	library   library.Service
	mapper    mapper.Service
	guidance  guidancesvc.Service
	orgreq    orgreq.Service
	benchmark benchmark.Service
}

func buildServices(cfg *config.Config, logger *zap.Logger, pool *database.Pool, redisClient *redis.Client) services {
	standards := database.NewStandardRepository(pool)
	requirements := database.NewRequirementRepository(pool)
	unified := database.NewUnifiedRepository(pool)
	reconcile := database.NewReconcileRepository(pool)
	versions := database.NewGuidanceRepository(pool)
	suggestions := database.NewSuggestionRepository(pool)
	knowledge := database.NewKnowledgeRepository(pool)
	instances := database.NewOrgRequirementRepository(pool)
	organizations := database.NewOrganizationRepository(pool)

	guidanceCache := cache.NewGuidanceCache(redisClient, logger, cfg.Redis.TTL)
	aiClient := ai.NewClient(cfg.Guidance.AIEndpoint, logger)

	return services{
		library: library.NewService(logger, standards, requirements),
		mapper:  mapper.NewService(logger, unified, requirements, reconcile),
		guidance: guidancesvc.NewService(logger, versions, suggestions, knowledge, aiClient, guidanceCache, guidancesvc.Config{
			RowCap:              cfg.Guidance.RowCap,
			MinWords:            cfg.Guidance.MinWords,
			MaxWords:            cfg.Guidance.MaxWords,
			AITimeout:           cfg.Guidance.AITimeout,
			AIRequestsPerMinute: cfg.Guidance.AIRequestsPerMinute,
		}),
		orgreq:    orgreq.NewService(logger, instances, organizations, database.NewLibraryReader(pool)),
		benchmark: benchmark.NewService(logger, database.NewBenchmarkRepository(pool), cfg.Benchmark.MinCohortSize),
	}
}

// runPublishPromoter periodically promotes approved versions whose scheduled
// publish time has passed
func runPublishPromoter(ctx context.Context, logger *zap.Logger, svc guidancesvc.Service, interval time.Duration, done chan<- struct{}) {
	defer close(done)
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			promoted, err := svc.PromoteScheduled(ctx, now)
			if err != nil {
				logger.Error("scheduled publish promotion failed", zap.Error(err))
				continue
			}
			if promoted > 0 {
				logger.Info("promoted scheduled versions", zap.Int("count", promoted))
			}
		}
	}
}

// operationalMux serves the health and metrics endpoints
func operationalMux(pool *database.Pool, redisClient *redis.Client) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.HealthCheck(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := redisClient.Ping(r.Context()).Err(); err != nil {
			http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}
