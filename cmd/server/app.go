package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mwelles/retention-api/internal/config"
	"github.com/mwelles/retention-api/internal/domain/srs"
	"github.com/mwelles/retention-api/internal/platform/postgres"
	"github.com/mwelles/retention-api/internal/service/review"
	"github.com/mwelles/retention-api/internal/store"
)

// application holds the shared dependencies of the running server.
type application struct {
	config           *config.Config
	logger           *slog.Logger
	db               *sql.DB
	retentionService review.RetentionService
}

// newApplication wires up the application dependency graph: database
// connection, stores, scheduler, and the retention service.
func newApplication(cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	conceptStore := postgres.NewPostgresConceptStore(db, appLogger)
	recordStore := postgres.NewPostgresMemoryRecordStore(db, appLogger)
	txManager := store.NewTxManager(db)

	params := srs.NewParams(srs.ParamsConfig{
		MinEaseFactor: cfg.Scheduler.MinEaseFactor,
		MaxEaseFactor: cfg.Scheduler.MaxEaseFactor,
		JitterLow:     cfg.Scheduler.JitterLow,
		JitterHigh:    cfg.Scheduler.JitterHigh,
	})
	scheduler := srs.NewService(params, nil)

	retentionService, err := review.NewService(conceptStore, recordStore, txManager, scheduler, appLogger)
	if err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			appLogger.Error("failed to close database", slog.String("error", closeErr.Error()))
		}
		return nil, fmt.Errorf("failed to create retention service: %w", err)
	}

	return &application{
		config:           cfg,
		logger:           appLogger,
		db:               db,
		retentionService: retentionService,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		}
	}
}
