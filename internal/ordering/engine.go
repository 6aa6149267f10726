package ordering

import (
	"context"

	"github.com/roach88/tarefas/internal/task"
)

// Reranker runs a rank plan and applies its batch atomically.
// Implemented by store.Store and pgstore.Store.
type Reranker interface {
	Rerank(ctx context.Context, plan task.RankPlan) error
}

// Engine relocates tasks within the rank order.
//
// Thread-safety: Engine holds no state of its own; serialization of
// concurrent moves is provided by the Reranker's transaction.
type Engine struct {
	store Reranker
}

// New creates an engine over store.
func New(store Reranker) *Engine {
	return &Engine{store: store}
}

// Move places task id at rank target, shifting the tasks in between.
//
// Errors:
//   - VALIDATION: target < 1 or target > N (never clamped)
//   - NOT_FOUND: id does not exist
//   - INVARIANT_VIOLATION: the store rejected the computed batch
//   - BUSY: the store lock could not be acquired
//
// Moving a task to its current rank succeeds without writing anything. On
// any error the ranks are unchanged.
func (e *Engine) Move(ctx context.Context, id string, target int) error {
	if target < 1 {
		return task.ValidateTarget(target, 0)
	}
	return e.store.Rerank(ctx, func(ctx context.Context, snap task.RankSnapshot) (task.RankBatch, error) {
		current, err := snap.RankOf(ctx, id)
		if err != nil {
			return nil, err
		}
		n, err := snap.Count(ctx)
		if err != nil {
			return nil, err
		}
		if err := task.ValidateTarget(target, n); err != nil {
			return nil, err
		}
		if target == current {
			return nil, nil
		}

		lo, hi := Span(current, target)
		slots, err := snap.Between(ctx, lo, hi)
		if err != nil {
			return nil, err
		}
		return PlanMove(id, current, target, slots)
	})
}
