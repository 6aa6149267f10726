package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/tarefas/internal/task"
)

// classify converts a driver error into the task error taxonomy.
//
//   - SQLITE_BUSY / SQLITE_LOCKED: BUSY (retryable)
//   - UNIQUE on tasks.name: CONFLICT
//   - UNIQUE or CHECK on tasks.rank: INVARIANT_VIOLATION
//
// Errors that already carry a task code pass through unchanged; anything
// else is wrapped with the operation name.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var te *task.Error
	if errors.As(err, &te) {
		return err
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return task.NewBusyError(op, err)
		case sqlite3.ErrConstraint:
			msg := se.Error()
			switch {
			case strings.Contains(msg, "tasks.name"):
				return &task.Error{Code: task.CodeConflict, Message: op + ": task name already exists", Err: err}
			case strings.Contains(msg, "tasks.rank"), strings.Contains(msg, "rank > 0"):
				return &task.Error{Code: task.CodeInvariantViolation, Message: op + ": rank constraint violated", Err: err}
			}
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
