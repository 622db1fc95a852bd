package main

import (
	"context"
	"fmt"
	"os"

	"secmaster/src/config"
	"secmaster/src/data_source/tda"
	"secmaster/src/interfaces"
	"secmaster/src/logger"
	"secmaster/src/network"
	"secmaster/src/storage"
	"secmaster/src/updater"
	"secmaster/src/utils"
)

// -----------------------------------------------------------------------------

// app holds the components shared by every command.
type app struct {
	Config *config.Config
	Logger *logger.Logger
	DB     interfaces.IDatabase
}

// -----------------------------------------------------------------------------

// setup loads the configuration and opens the database.
func setup(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, err
	}

	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	db, err := setupDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &app{Config: cfg, Logger: appLogger, DB: db}, nil
}

// -----------------------------------------------------------------------------

// setupDatabase opens the configured backend and creates missing tables.
func setupDatabase(ctx context.Context, cfg *config.Config) (interfaces.IDatabase, error) {
	dbLogger := logger.NewLogger(cfg.LogLevel, "Storage")

	db, err := storage.New(cfg, dbLogger)
	if err != nil {
		return nil, err
	}
	if err := db.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize %s database: %w", cfg.Storage.DBType, err)
	}
	return db, nil
}

// -----------------------------------------------------------------------------

// setupNetwork initializes the HTTP client shared by the upstream sources.
func setupNetwork(cfg *config.Config) interfaces.INetworkManager {
	return network.NewNetworkManager(cfg.MConfig, logger.NewLogger(cfg.LogLevel, "NetworkManager"))
}

// -----------------------------------------------------------------------------

// setupDriver wires the bar update pipeline behind a batch driver.
func setupDriver(a *app, reporter interfaces.IProgressReporter) (*updater.Driver, error) {
	cfg := a.Config

	source, err := tda.NewTDASource(cfg.Upstream, setupNetwork(cfg), logger.NewLogger(cfg.LogLevel, "TDASource"))
	if err != nil {
		return nil, err
	}

	cal := utils.NewUSCalendar(a.Logger)
	pipeline := updater.NewPipeline(cfg.Updater, cfg.Upstream.HistoryYears, a.DB, source, cal,
		logger.NewLogger(cfg.LogLevel, "Pipeline"))

	return updater.NewDriver(cfg.Updater, pipeline, a.DB, reporter, logger.NewLogger(cfg.LogLevel, "Updater")), nil
}

// -----------------------------------------------------------------------------

// consoleProgress draws a progress bar on stdout unless debug logs are on,
// where it would interleave with log lines.
func consoleProgress(cfg *config.Config, prefix string) interfaces.IProgressReporter {
	if logger.ParseLevel(cfg.LogLevel) < 0 {
		return nil
	}
	return utils.NewConsoleProgress(os.Stdout, prefix)
}
