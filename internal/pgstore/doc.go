// Package pgstore provides a PostgreSQL-backed task store with the same
// contract as package store.
//
// Rank uniqueness is declared DEFERRABLE INITIALLY DEFERRED, so a rank
// batch is written as plain row updates and the constraint is checked at
// commit, after the store has verified density itself.
//
// Every mutating transaction sets a lock_timeout and takes
//
//	LOCK TABLE tasks IN SHARE ROW EXCLUSIVE MODE
//
// which serializes writers against each other while plain SELECTs keep
// running. A lock wait that times out is reported as a BUSY error.
//
// Connection settings come from Config, usually built by ConfigFromEnv:
//
//	TAREFAS_PG_DSN              connection string (required)
//	TAREFAS_PG_MAX_CONNS        pool size (default 10)
//	TAREFAS_PG_IDLE_CONNS       idle connections (default 5)
//	TAREFAS_PG_CONN_LIFETIME    connection lifetime in seconds (default 3600)
//	TAREFAS_PG_LOCK_TIMEOUT_MS  writer lock wait in milliseconds (default 5000)
package pgstore
