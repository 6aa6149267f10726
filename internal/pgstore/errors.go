package pgstore

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/roach88/tarefas/internal/task"
)

// classify converts a driver error into the task error taxonomy.
//
//   - lock_not_available, serialization_failure, deadlock_detected: BUSY
//   - unique_violation on tasks_name_key: CONFLICT
//   - unique_violation on tasks_rank_key, check on tasks_rank_check: INVARIANT_VIOLATION
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var te *task.Error
	if errors.As(err, &te) {
		return err
	}

	var pe *pq.Error
	if errors.As(err, &pe) {
		switch pe.Code.Name() {
		case "lock_not_available", "serialization_failure", "deadlock_detected":
			return task.NewBusyError(op, err)
		case "unique_violation":
			switch pe.Constraint {
			case "tasks_name_key":
				return &task.Error{Code: task.CodeConflict, Message: op + ": task name already exists", Err: err}
			case "tasks_rank_key":
				return &task.Error{Code: task.CodeInvariantViolation, Message: op + ": rank constraint violated", Err: err}
			}
		case "check_violation":
			if pe.Constraint == "tasks_rank_check" {
				return &task.Error{Code: task.CodeInvariantViolation, Message: op + ": rank constraint violated", Err: err}
			}
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
