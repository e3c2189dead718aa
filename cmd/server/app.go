package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mwhitlock/paddock-api/internal/config"
	"github.com/mwhitlock/paddock-api/internal/enrich"
	"github.com/mwhitlock/paddock-api/internal/events"
	"github.com/mwhitlock/paddock-api/internal/platform/openf1"
	"github.com/mwhitlock/paddock-api/internal/platform/postgres"
	"github.com/mwhitlock/paddock-api/internal/results"
	"github.com/mwhitlock/paddock-api/internal/scoring"
	"github.com/mwhitlock/paddock-api/internal/service"
	"github.com/mwhitlock/paddock-api/internal/task"
)

// application holds the wired dependency graph of the server.
type application struct {
	config        *config.Config
	logger        *slog.Logger
	db            *sql.DB
	seasonService *service.SeasonService
	queryService  *service.QueryService
	runner        *task.Runner
}

// newApplication wires the full dependency graph: database, stores, the
// aggregation core, the upstream client, services and the job runner.
func newApplication(cfg *config.Config) (*application, error) {
	logger := slog.Default()

	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	resultStore := postgres.NewPostgresResultStore(db, logger)
	standingStore := postgres.NewPostgresStandingStore(db, logger)
	calendarStore := postgres.NewPostgresCalendarStore(db, logger)

	calculator, err := scoring.NewCalculator(scoring.DefaultPointsTable())
	if err != nil {
		return nil, fmt.Errorf("failed to create points calculator: %w", err)
	}

	client := openf1.NewClient(cfg.OpenF1, logger)
	builder := results.NewBuilder(calculator, logger)
	enricher := enrich.New(client, logger)

	seasonService, err := service.NewSeasonService(
		db, client, calendarStore, resultStore, standingStore,
		builder, enricher, logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create season service: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLoggingHandler(logger))
	seasonService.SetEventEmitter(emitter)

	queryService, err := service.NewQueryService(
		resultStore, standingStore, calendarStore, logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create query service: %w", err)
	}

	jobStore := postgres.NewPostgresJobStore(db, seasonService, logger)
	runner := task.NewRunner(jobStore, task.RunnerConfig{
		WorkerCount: cfg.Ingest.WorkerCount,
		QueueSize:   cfg.Ingest.QueueSize,
	}, logger)

	return &application{
		config:        cfg,
		logger:        logger,
		db:            db,
		seasonService: seasonService,
		queryService:  queryService,
		runner:        runner,
	}, nil
}

// run starts the job runner and the HTTP server, blocking until shutdown.
func (app *application) run() error {
	if err := app.runner.Start(); err != nil {
		return fmt.Errorf("failed to start ingest runner: %w", err)
	}

	err := app.startHTTPServer(app.setupRouter())

	app.runner.Stop()
	app.cleanup()
	return err
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection",
			slog.String("error", err.Error()))
	}
}
