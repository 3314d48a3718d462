package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/estimaware/estima-engine/pkg/apperrors"
	"github.com/estimaware/estima-engine/pkg/config"
	"github.com/estimaware/estima-engine/pkg/database"
	"github.com/estimaware/estima-engine/pkg/handlers"
	"github.com/estimaware/estima-engine/pkg/llm"
	"github.com/estimaware/estima-engine/pkg/logging"
	"github.com/estimaware/estima-engine/pkg/middleware"
	"github.com/estimaware/estima-engine/pkg/repositories"
	"github.com/estimaware/estima-engine/pkg/retry"
	"github.com/estimaware/estima-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.Bool("ai_configured", cfg.AI.IsConfigured()))

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		// pgx connection errors echo back the DSN.
		return fmt.Errorf("failed to connect to database: %s", logging.SanitizeError(err))
	}
	defer db.Close()

	// golang-migrate needs database/sql, not pgx.
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	_ = sqlDB.Close()

	// Repositories
	projectRepo := repositories.NewProjectRepository(db)
	needRepo := repositories.NewNeedRepository(db)
	requirementRepo := repositories.NewRequirementRepository(db)
	functionPointRepo := repositories.NewFunctionPointRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)

	// AI client is optional; extraction endpoints report the absence.
	var aiClient llm.Client
	client, err := llm.NewFromConfig(&cfg.AI, logger)
	switch {
	case err == nil:
		aiClient = client
		logger.Info("AI client ready",
			zap.String("provider", client.Provider()),
			zap.String("model", client.Model()))
	case errors.Is(err, apperrors.ErrAINotConfigured):
		logger.Warn("No AI endpoint configured, extraction endpoints disabled")
	default:
		return fmt.Errorf("failed to create AI client: %w", err)
	}

	workerPool := llm.NewWorkerPool(llm.WorkerPoolConfig{
		MaxConcurrent: cfg.Extraction.MaxConcurrent,
	}, logger)
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.Extraction.MaxRetries

	// Services
	catalogService := services.NewCatalogService(catalogRepo, logger)
	factorResolver := services.NewFactorResolver(catalogRepo, logger)
	estimateService := services.NewEstimateService(
		catalogService, factorResolver,
		projectRepo, needRepo, requirementRepo, functionPointRepo,
		services.EstimateOptions{AdditiveOnEmpty: cfg.Estimation.AdditiveOnEmpty},
		logger)
	projectService := services.NewProjectService(projectRepo, catalogService, logger)
	needService := services.NewNeedService(needRepo, projectRepo, logger)
	requirementService := services.NewRequirementService(
		requirementRepo, needRepo, functionPointRepo, catalogService, logger)
	extractionService := services.NewExtractionService(
		aiClient, workerPool, retryCfg, needRepo, requirementRepo, catalogService, logger)

	// Handlers
	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewProjectsHandler(projectService, estimateService, logger).RegisterRoutes(mux)
	handlers.NewNeedsHandler(needService, estimateService, extractionService, logger).RegisterRoutes(mux)
	handlers.NewRequirementsHandler(requirementService, estimateService, logger).RegisterRoutes(mux)
	handlers.NewCatalogHandler(catalogService, extractionService, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting estima-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
