package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/roach88/tarefas/internal/task"
)

// Environment variable constants
const (
	EnvDSN          = "TAREFAS_PG_DSN"
	EnvMaxConns     = "TAREFAS_PG_MAX_CONNS"
	EnvIdleConns    = "TAREFAS_PG_IDLE_CONNS"
	EnvConnLifetime = "TAREFAS_PG_CONN_LIFETIME"
	EnvLockTimeout  = "TAREFAS_PG_LOCK_TIMEOUT_MS"

	DefaultMaxConns     = 10
	DefaultIdleConns    = 5
	DefaultConnLifetime = time.Hour
	DefaultLockTimeout  = 5 * time.Second
)

// Config holds PostgreSQL configuration options.
type Config struct {
	DSN          string
	MaxConns     int
	IdleConns    int
	ConnLifetime time.Duration
	LockTimeout  time.Duration

	// IDs generates task ids. Defaults to task.UUIDv7Generator.
	IDs task.IDGenerator
}

// ConfigFromEnv reads Config from the TAREFAS_PG_* environment variables.
// Unset or unparsable numeric values fall back to the defaults.
func ConfigFromEnv() Config {
	cfg := Config{DSN: os.Getenv(EnvDSN)}
	if n, err := strconv.Atoi(os.Getenv(EnvMaxConns)); err == nil {
		cfg.MaxConns = n
	}
	if n, err := strconv.Atoi(os.Getenv(EnvIdleConns)); err == nil {
		cfg.IdleConns = n
	}
	if n, err := strconv.Atoi(os.Getenv(EnvConnLifetime)); err == nil {
		cfg.ConnLifetime = time.Duration(n) * time.Second
	}
	if n, err := strconv.Atoi(os.Getenv(EnvLockTimeout)); err == nil {
		cfg.LockTimeout = time.Duration(n) * time.Millisecond
	}
	return cfg
}

func (c Config) withDefaults() Config {
	if c.MaxConns <= 0 {
		c.MaxConns = DefaultMaxConns
	}
	if c.IdleConns <= 0 {
		c.IdleConns = DefaultIdleConns
	}
	if c.ConnLifetime <= 0 {
		c.ConnLifetime = DefaultConnLifetime
	}
	if c.LockTimeout <= 0 {
		c.LockTimeout = DefaultLockTimeout
	}
	if c.IDs == nil {
		c.IDs = task.UUIDv7Generator{}
	}
	return c
}

// Store implements the task store on PostgreSQL.
type Store struct {
	db  *sql.DB
	cfg Config
}

// Open connects to PostgreSQL and runs pending migrations.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, errors.New("postgres connection string cannot be empty")
	}
	cfg = cfg.withDefaults()

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.IdleConns)
	db.SetConnMaxLifetime(cfg.ConnLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.runMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// beginWrite opens a transaction holding the writer lock on tasks.
func (s *Store) beginWrite(ctx context.Context, op string) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(op+": begin tx", err)
	}

	// SET does not take bind parameters.
	timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.cfg.LockTimeout.Milliseconds())
	if _, err := tx.ExecContext(ctx, timeout); err != nil {
		tx.Rollback()
		return nil, classify(op+": lock timeout", err)
	}
	if _, err := tx.ExecContext(ctx, `LOCK TABLE tasks IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		tx.Rollback()
		return nil, classify(op+": lock tasks", err)
	}
	return tx, nil
}
