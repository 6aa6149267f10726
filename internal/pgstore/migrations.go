package pgstore

import (
	"context"
	"fmt"
)

// Migration represents a database schema migration.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// migrations in order. Never edit an applied migration; append a new one.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial tasks table",
		SQL: `
CREATE TABLE IF NOT EXISTS tasks (
    id       TEXT             PRIMARY KEY,
    name     TEXT             NOT NULL,
    cost     DOUBLE PRECISION NOT NULL,
    due_date DATE             NOT NULL,
    rank     INTEGER          NOT NULL,

    CONSTRAINT tasks_name_key UNIQUE (name),
    CONSTRAINT tasks_rank_key UNIQUE (rank) DEFERRABLE INITIALLY DEFERRED,
    CONSTRAINT tasks_cost_check CHECK (cost >= 0),
    CONSTRAINT tasks_rank_check CHECK (rank > 0)
);
`,
	},
}

// runMigrations applies pending migrations in one transaction. An advisory
// lock keeps two processes from migrating at the same time.
func (s *Store) runMigrations(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext('tarefas_migrations'))`); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS tasks_schema_version (
    version     INTEGER     PRIMARY KEY,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    description TEXT        NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("create schema version table: %w", err)
	}

	var current int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM tasks_schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	latest := migrations[len(migrations)-1].Version
	if current > latest {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, latest)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tasks_schema_version (version, description) VALUES ($1, $2)`,
			m.Version, m.Description,
		); err != nil {
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
	}

	return tx.Commit()
}
