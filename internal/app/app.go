package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gradesync/internal/config"
	apperrors "gradesync/internal/errors"
	"gradesync/internal/infrastructure"
	contracts "gradesync/pkg/contracts"
)

// shutdownTimeout bounds flushing spans and metrics at exit
const shutdownTimeout = 5 * time.Second

// Application is the process-wide container: configuration, the global
// logger, OpenTelemetry providers and the Runner that executes commands.
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.ReconcileMetrics
	Runner        *Runner
}

// LoadConfig reads the configuration from path, or from the default
// locations when path is empty.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(cfg *config.Config) (*Application, error) {
	paths := cfg.GetPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, apperrors.NewStorageError("failed to ensure directories", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize logger", err)
	}

	logger.Debug("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("config", cfg.Source()))
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Observability), logger)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize OpenTelemetry", err)
	}

	metrics, err := infrastructure.NewReconcileMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	return &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		Runner:        NewRunner(cfg, logger, providers.Tracer, metrics),
	}, nil
}

// Close writes the metrics textfile, flushes telemetry and closes the log
// file. Errors are logged, the first one is returned.
func (a *Application) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	a.Metrics.RecordRuntime(ctx)
	if path := a.Paths.MetricsFile; path != "" {
		if err := a.OTelProviders.WriteMetrics(path); err != nil {
			a.Logger.Error("Failed to write metrics", slog.String("path", path), slog.String("error", err.Error()))
			keep(err)
		}
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.Error("Failed to shut down telemetry", slog.String("error", err.Error()))
		keep(err)
	}
	keep(infrastructure.CloseLogFile())
	return first
}
