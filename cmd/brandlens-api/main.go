// Package main is the entry point for the brandlens-api server.
// Identity is carried by HS256 bearer tokens; prompt executions run on an
// external workflow engine that reports back over a signed webhook.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/brandlens/brandlens-api/internal/config"
	"github.com/brandlens/brandlens-api/internal/crypto"
	"github.com/brandlens/brandlens-api/internal/database"
	"github.com/brandlens/brandlens-api/internal/http/handlers"
	"github.com/brandlens/brandlens-api/internal/http/mw"
	"github.com/brandlens/brandlens-api/internal/http/routes"
	"github.com/brandlens/brandlens-api/internal/localdb"
	"github.com/brandlens/brandlens-api/internal/logging"
	"github.com/brandlens/brandlens-api/internal/repository"
	"github.com/brandlens/brandlens-api/internal/service"
	"github.com/brandlens/brandlens-api/internal/shutdown"
	"github.com/brandlens/brandlens-api/internal/version"
	"github.com/brandlens/brandlens-api/internal/worker"
)

func main() {
	// Initialize logger with TTY detection, source paths, and format control
	logger := logging.SetDefault()

	v := version.Get()
	logger.Info("starting brandlens-api",
		"version", v.Version,
		"commit", v.Commit,
		"built", v.Date,
		"go_version", v.GoVersion,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Storage: the server database by default, or the snapshot-persisted
	// embedded store for local and demo deployments.
	var (
		db    *sql.DB
		store *localdb.Store
		repos *repository.Repositories
	)
	switch cfg.StorageBackend {
	case "embedded":
		store, err = openEmbeddedStore(cfg, logger)
		if err != nil {
			logger.Error("failed to initialize embedded store", "error", err)
			os.Exit(1)
		}
		repos = localdb.NewRepositories(store)
		logger.Info("storage ready", "backend", "embedded", "s3", cfg.SnapshotS3Enabled())
	default:
		db, err = database.New(cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()

		if err := database.MigrateWithLogger(db, logger); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		repos = repository.NewRepositories(db)
		logger.Info("storage ready", "backend", "sqlite")
	}

	// Fail executions stuck from previous server runs so metrics and
	// quota views do not show them as forever in flight.
	staleCount, err := repos.Execution.MarkStaleProcessingFailed(context.Background(), cfg.StaleExecutionAge)
	if err != nil {
		logger.Warn("failed to clean up stale executions", "error", err)
	} else if staleCount > 0 {
		logger.Info("marked stale executions failed", "count", staleCount)
	}

	services := service.New(repos, cfg, logger)

	if !cfg.DispatchEnabled() {
		logger.Warn("WORKFLOW_WEBHOOK_URL not set - prompt dispatch is disabled")
	}

	// Background scheduler for due prompts
	ctx, cancel := context.WithCancel(context.Background())
	var scheduler *worker.Scheduler
	if cfg.SchedulerEnabled && cfg.DispatchEnabled() {
		scheduler = worker.New(repos.Prompt, services.Dispatch, services.Quota,
			worker.Config{PollInterval: cfg.SchedulerPollInterval}, logger)
		scheduler.Start(ctx)
	}

	// Create router
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Request size limit (1MB) - prevent large payload attacks
	router.Use(middleware.RequestSize(1 * 1024 * 1024))

	// Global rate limit by IP
	router.Use(mw.RateLimitByIP(100))

	// Idle monitor for scale-to-zero deployments; probes don't count as
	// activity.
	idle := shutdown.NewIdleMonitor(cfg.IdleTimeout, []string{"/healthz", "/readyz"}, nil, logger)
	router.Use(idle.Middleware)
	idle.Start()

	// Huma API with OpenAPI docs and bearer auth
	api := humachi.New(router, routes.NewHumaConfig(cfg.BaseURL))
	api.UseMiddleware(mw.HumaAuth(api, []byte(cfg.JWTSecret)))

	h := handlers.New(db, repos, services, cfg, logger)
	routes.Register(api, h)

	// Raw webhook endpoints verify signatures over the unparsed body, so
	// they mount on the router directly.
	router.Post("/api/v1/webhooks/executions", h.ExecutionWebhook.HandleWebhook)
	if cfg.StripeWebhookSecret != "" {
		router.Post("/api/v1/webhooks/stripe", h.StripeWebhook.HandleWebhook)
		logger.Info("stripe webhook endpoint enabled")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on signal or idle timeout
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		select {
		case <-sigChan:
			logger.Info("shutting down server", "reason", "signal")
		case <-idle.Done():
			logger.Info("shutting down server", "reason", "idle")
		}

		cancel()
		if scheduler != nil {
			scheduler.Stop()
		}
		idle.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}

		// Persist the final snapshot before exit.
		if store != nil {
			if err := store.Close(shutdownCtx); err != nil {
				logger.Error("embedded store close error", "error", err)
			}
		}
	}()

	logger.Info("starting server", "port", cfg.Port, "base_url", cfg.BaseURL, "backend", cfg.StorageBackend)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	// Wait for the shutdown goroutine so the final snapshot lands.
	<-shutdownDone
	logger.Info("server stopped")
}

// openEmbeddedStore builds the snapshot-persisted store with the configured
// blob backend and encryption, and loads or creates the schema.
func openEmbeddedStore(cfg *config.Config, logger *slog.Logger) (*localdb.Store, error) {
	encryptor, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot encryptor: %w", err)
	}

	ctx := context.Background()

	var snapshots localdb.SnapshotStore
	if cfg.SnapshotS3Enabled() {
		snapshots, err = localdb.NewS3SnapshotStore(ctx, localdb.S3Config{
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Region:    cfg.StorageRegion,
			Bucket:    cfg.SnapshotBucket,
			Key:       cfg.SnapshotKey,
		}, encryptor)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 snapshot store: %w", err)
		}
	} else {
		snapshots = localdb.NewFileSnapshotStore(cfg.SnapshotPath, encryptor)
	}

	store := localdb.New(snapshots, logger)
	if err := store.Initialize(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
