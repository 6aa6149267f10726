package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/tarefas/internal/config"
	"github.com/roach88/tarefas/internal/pgstore"
	"github.com/roach88/tarefas/internal/service"
	"github.com/roach88/tarefas/internal/store"
)

// backend is a store the CLI opened and must close.
type backend interface {
	service.Store
	Close() error
}

// session bundles what a command needs to talk to the store.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	store  backend
	svc    *service.Service
	out    *OutputFormatter
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// loadConfig layers the root flags over the config file and environment.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Database != "" {
		cfg.DBPath = opts.Database
	}
	if opts.Driver != "" {
		cfg.Driver = opts.Driver
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger configures slog on the command's stderr at the configured level.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})
	return slog.New(handler)
}

// openSession loads config, opens the configured store and builds the
// service. Failures here are command errors (exit code 2).
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	logger := newLogger(cmd, cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var st backend
	switch cfg.Driver {
	case config.DriverPostgres:
		logger.Debug("opening database", "driver", cfg.Driver)
		pc := pgstore.ConfigFromEnv()
		pc.DSN = cfg.PgDSN
		pc.LockTimeout = cfg.BusyTimeout()
		pc.IDs = opts.IDs
		st, err = pgstore.Open(ctx, pc)
	default:
		logger.Debug("opening database", "driver", cfg.Driver, "path", cfg.DBPath)
		storeOpts := []store.Option{store.WithBusyTimeout(cfg.BusyTimeout())}
		if opts.IDs != nil {
			storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDs))
		}
		st, err = store.Open(cfg.DBPath, storeOpts...)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	return &session{
		cfg:    cfg,
		logger: logger,
		store:  st,
		svc:    service.New(st, logger),
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}, nil
}

// opFailed wraps a service error as an operation failure (exit code 1).
func opFailed(message string, err error) error {
	return WrapExitError(ExitFailure, message, err)
}
