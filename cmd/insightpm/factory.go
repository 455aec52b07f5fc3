package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"insightpm/internal/app"
	"insightpm/internal/cli"
	"insightpm/internal/config"
	"insightpm/internal/logging"
	"insightpm/internal/remote"
	"insightpm/internal/remote/rest"
	"insightpm/internal/remote/sqlstore"
)

// BackendFactory creates the data and auth backend for the configured
// environment.
type BackendFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewBackendFactory creates a new backend factory for cfg
func NewBackendFactory(cfg *config.Config, logger *zap.Logger) *BackendFactory {
	return &BackendFactory{cfg: cfg, logger: logging.OrNop(logger)}
}

// CreateBackend creates a backend based on the current environment
func (bf *BackendFactory) CreateBackend(ctx context.Context) (*remote.Backend, error) {
	switch bf.cfg.Application.Environment {
	case config.Development:
		return bf.createDevelopmentBackend(ctx)
	case config.Testing:
		return bf.createTestingBackend(ctx)
	default:
		return bf.createProductionBackend()
	}
}

// createProductionBackend talks to the hosted data service.
func (bf *BackendFactory) createProductionBackend() (*remote.Backend, error) {
	client, err := rest.New(rest.Options{
		BaseURL: bf.cfg.Remote.URL,
		AnonKey: bf.cfg.Remote.AnonKey,
		Timeout: bf.cfg.Remote.Timeout,
		Logger:  bf.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize data service client: %w", err)
	}
	return client.Backend(), nil
}

// createDevelopmentBackend uses the embedded SQL store at the configured path
func (bf *BackendFactory) createDevelopmentBackend(ctx context.Context) (*remote.Backend, error) {
	logging.Debugf("opening %s store at %s", bf.cfg.Database.Driver, bf.cfg.GetDatabasePath())
	store, err := sqlstore.Open(ctx, sqlstore.Options{
		Driver:         bf.cfg.Database.Driver,
		DSN:            bf.cfg.GetDatabasePath(),
		DirPermissions: os.FileMode(bf.cfg.Database.DirPermissions),
		JWTSecret:      bf.cfg.Auth.JWTSecret,
		SessionTTL:     bf.cfg.Auth.SessionTTL,
		Logger:         bf.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize development database: %w", err)
	}
	return store.Backend(), nil
}

// createTestingBackend uses an in-memory store
func (bf *BackendFactory) createTestingBackend(ctx context.Context) (*remote.Backend, error) {
	store, err := sqlstore.Open(ctx, sqlstore.Options{
		Driver:     sqlstore.DriverSQLite,
		DSN:        sqlstore.MemoryDSN,
		JWTSecret:  bf.cfg.Auth.JWTSecret,
		SessionTTL: bf.cfg.Auth.SessionTTL,
		Logger:     bf.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize testing database: %w", err)
	}
	return store.Backend(), nil
}

// openRuntime builds the logger, backend and application for cfg and starts
// the session gate.
func openRuntime(ctx context.Context, cfg *config.Config) (*cli.Runtime, error) {
	logger, err := logging.New(logging.Options{
		Verbose:     cfg.Application.Verbose,
		Development: cfg.Application.Environment != config.Production,
	})
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	backend, err := NewBackendFactory(cfg, logger).CreateBackend(ctx)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	a := app.New(cfg, backend, logger)
	if err := a.Start(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	logging.Debugf("started in %s mode", cfg.Application.Environment)

	return &cli.Runtime{API: a, Logger: logger, Close: a.Close}, nil
}
