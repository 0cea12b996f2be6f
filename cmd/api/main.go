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

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/feedback-api/internal/api/router"
	"github.com/wolfman30/feedback-api/internal/app/bootstrap"
	appconfig "github.com/wolfman30/feedback-api/internal/config"
	"github.com/wolfman30/feedback-api/internal/contacts"
	"github.com/wolfman30/feedback-api/internal/http/handlers"
	"github.com/wolfman30/feedback-api/internal/messages"
	"github.com/wolfman30/feedback-api/internal/observability/metrics"
	"github.com/wolfman30/feedback-api/internal/storage"
	"github.com/wolfman30/feedback-api/pkg/logging"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting feedback API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MigrateOnStart {
		if err := migrate(ctx, cfg.DatabaseURL, logger); err != nil {
			logger.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	pool, err := storage.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer func() { _ = sqlDB.Close() }()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	store := messages.NewPostgresStore(pool)
	health := handlers.NewHealthHandler(pool, sqlDB, logger)
	r := buildRouter(cfg, store, health, redisClient, prometheus.DefaultRegisterer, promhttp.Handler(), logger)
	srv := newServer(cfg, r)

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildRouter wires the submission pipeline over store and mounts it with
// the probes.
func buildRouter(
	cfg *appconfig.Config,
	store messages.Store,
	health http.Handler,
	redisClient *redis.Client,
	reg prometheus.Registerer,
	metricsHandler http.Handler,
	logger *logging.Logger,
) http.Handler {
	service := messages.NewService(messages.ServiceConfig{
		Store:         store,
		Topics:        bootstrap.BuildTopicSource(store, redisClient, cfg, logger),
		Verifier:      bootstrap.BuildVerifier(cfg, logger),
		Resolver:      contacts.NewResolver(logger),
		Metrics:       metrics.NewSubmissionMetrics(reg),
		Logger:        logger,
		VerifyTimeout: cfg.RecaptchaTimeout,
	})

	return router.New(&router.Config{
		Logger:                 logger,
		MessagesHandler:        messages.NewHandler(service, logger),
		HealthHandler:          health,
		MetricsHandler:         metricsHandler,
		CORSAllowedOrigins:     cfg.CORSAllowedOrigins,
		EnableHTTPSRedirection: cfg.EnableHTTPSRedirection,
	})
}

// newServer leaves room in the write timeout for the verification call.
func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RecaptchaTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func migrate(ctx context.Context, databaseURL string, logger *logging.Logger) error {
	db, err := storage.OpenSQL(ctx, databaseURL)
	if err != nil {
		return err
	}
	applied, err := storage.MigrateUp(db)
	if err != nil {
		return err
	}
	logger.Info("schema migrations checked", "applied", applied)
	return nil
}
