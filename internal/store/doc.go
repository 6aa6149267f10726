// Package store provides SQLite-backed durable storage for tarefas.
//
// The store owns the tasks table and the rank invariant: the ranks of the
// N live tasks are always exactly 1..N. Every operation that reads and then
// writes ranks (create, delete, rerank) runs inside one transaction, and
// the store checks density before committing a rank change.
//
// # Applying Rank Batches
//
// SQLite checks UNIQUE constraints row by row, so a cyclic shift such as
// moving rank 2 to rank 4 cannot be written as plain per-row updates. The
// store instead deletes the affected rows and re-inserts them with their
// new ranks, all inside the transaction. No row ever holds a placeholder
// rank and nothing is visible to other connections until commit.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout: Wait for locks (default 5 seconds), then fail BUSY
//   - _txlock=immediate: Writers take the write lock at BEGIN
//   - One open connection: Every transaction is serialized in-process
package store
