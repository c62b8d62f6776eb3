package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/wordwell/wordwell-api/internal/config"
	"github.com/wordwell/wordwell-api/internal/events"
	"github.com/wordwell/wordwell-api/internal/generation"
	"github.com/wordwell/wordwell-api/internal/platform/gemini"
	"github.com/wordwell/wordwell-api/internal/platform/postgres"
	"github.com/wordwell/wordwell-api/internal/service"
	"github.com/wordwell/wordwell-api/internal/service/auth"
	"github.com/wordwell/wordwell-api/internal/store"
	"github.com/wordwell/wordwell-api/internal/worker"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore       store.UserStore
	jobStore        store.JobStore
	jobItemStore    store.JobItemStore
	definitionStore store.DefinitionStore

	// Service interfaces
	jwtService     auth.JWTService
	passwordHasher auth.PasswordHasher
	generator      generation.Generator
	vocabService   service.VocabService
	streamService  *service.StreamService

	// Event system
	eventEmitter events.EventEmitter

	// Background processing
	workerRunner *worker.Runner
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize password hasher
	app.passwordHasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	// Initialize stores
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.jobStore = postgres.NewPostgresJobStore(db, logger)
	app.jobItemStore = postgres.NewPostgresJobItemStore(db, logger)
	app.definitionStore = postgres.NewPostgresDefinitionStore(db, logger)

	// Create the LLM generator service
	app.generator, err = gemini.NewGeminiGenerator(
		ctx,
		logger.With("component", "llm_generator"),
		cfg.LLM,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized successfully")

	// Initialize event emitter
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	// Initialize the queue worker
	app.workerRunner = worker.NewRunner(
		app.jobStore,
		app.jobItemStore,
		app.definitionStore,
		app.generator,
		worker.Config{
			ClaimBatchSize:    cfg.Worker.ClaimBatchSize,
			ItemDelay:         cfg.Worker.ItemDelay,
			IdleDelay:         cfg.Worker.IdleDelay,
			ErrorMessageLimit: cfg.Worker.ErrorMessageLimit,
		},
		logger,
	)

	// Wake the worker whenever a batch is submitted so pending items are
	// picked up before the next poll interval elapses.
	wakeHandler := worker.NewWakeHandler(app.workerRunner, logger)
	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(wakeHandler)
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register wake handler")
	}

	// Initialize vocab service
	app.vocabService, err = service.NewVocabService(
		db,
		app.jobStore,
		app.jobItemStore,
		app.eventEmitter,
		cfg.Worker.MaxBatchWords,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vocab service: %w", err)
	}

	// Initialize stream service
	app.streamService, err = service.NewStreamService(
		app.definitionStore,
		app.generator,
		cfg.Stream,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the background worker and the HTTP server, handling lifecycle
// and cleanup. It returns an error if the server fails to start or
// encounters problems.
func (app *application) Run(ctx context.Context) error {
	app.workerRunner.Start()

	router := app.setupRouter()

	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Stop the worker first so no item is mid-flight when the database
	// connection closes.
	if app.workerRunner != nil {
		app.workerRunner.Stop()
	}

	// Close database connection
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
