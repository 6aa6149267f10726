package ordering

import (
	"fmt"

	"github.com/roach88/tarefas/internal/task"
)

// Span returns the inclusive rank range a move from current to target
// touches.
func Span(current, target int) (lo, hi int) {
	if target < current {
		return target, current
	}
	return current, target
}

// PlanMove computes the batch that moves id from current to target.
//
// slots must be exactly the tasks ranked within Span(current, target), as
// read in the same transaction the batch will be applied in. A slot list
// that does not match (missing ranks, id not at current) means the caller
// read inconsistent state and yields an invariant violation.
func PlanMove(id string, current, target int, slots []task.Slot) (task.RankBatch, error) {
	if current == target {
		return task.RankBatch{}, nil
	}

	lo, hi := Span(current, target)
	if want := hi - lo + 1; len(slots) != want {
		return nil, task.NewInvariantError(fmt.Sprintf("move span [%d, %d] holds %d tasks, want %d", lo, hi, len(slots), want))
	}

	others := make([]task.Slot, 0, len(slots)-1)
	found := false
	for i, s := range slots {
		if s.Rank != lo+i {
			return nil, task.NewInvariantError(fmt.Sprintf("move span [%d, %d] has rank %d at position %d", lo, hi, s.Rank, i))
		}
		if s.ID == id {
			if s.Rank != current {
				return nil, &task.Error{Code: task.CodeInvariantViolation, Message: fmt.Sprintf("task is at rank %d, expected %d", s.Rank, current), ID: id}
			}
			found = true
			continue
		}
		others = append(others, s)
	}
	if !found {
		return nil, &task.Error{Code: task.CodeInvariantViolation, Message: "moved task missing from its span", ID: id}
	}

	delta := 1
	if target > current {
		delta = -1
	}
	batch := task.ShiftBatch(others, delta)
	batch[id] = target
	return batch, nil
}
