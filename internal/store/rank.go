package store

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/roach88/tarefas/internal/task"
)

// maxRankBound is the open upper end of a rank range query.
const maxRankBound = math.MaxInt32

// Rerank runs plan against a snapshot of the rank column and applies the
// batch it returns, all inside one write transaction. If the plan fails,
// the batch is rejected, or the resulting ranks are not dense, the
// transaction is rolled back and nothing changes.
func (s *Store) Rerank(ctx context.Context, plan task.RankPlan) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("rerank: begin tx", err)
	}
	defer tx.Rollback()

	batch, err := plan(ctx, &txSnapshot{tx: tx})
	if err != nil {
		return classify("rerank: plan", err)
	}
	if len(batch) == 0 {
		return nil
	}

	if err := s.applyBatch(ctx, tx, batch); err != nil {
		return classify("rerank: apply", err)
	}
	if err := verifyDense(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("rerank: commit", err)
	}
	return nil
}

// ApplyRankBatch applies batch atomically. The caller is responsible for
// the batch producing dense ranks; the store only verifies it and rejects
// the whole batch with an invariant violation when it does not.
func (s *Store) ApplyRankBatch(ctx context.Context, batch task.RankBatch) error {
	return s.Rerank(ctx, func(context.Context, task.RankSnapshot) (task.RankBatch, error) {
		return batch, nil
	})
}

// Verify checks the rank invariant over the whole table.
func (s *Store) Verify(ctx context.Context) error {
	return verifyDense(ctx, s.db)
}

// applyBatch rewrites the ranks in batch. Affected rows are deleted and
// re-inserted with their new rank, so the per-row UNIQUE check never sees
// two rows sharing a rank mid-batch.
func (s *Store) applyBatch(ctx context.Context, tx *sql.Tx, batch task.RankBatch) error {
	if len(batch) == 0 {
		return nil
	}
	if err := batch.Validate(); err != nil {
		return err
	}

	ids := batch.IDs()
	rows := make([]task.Task, 0, len(ids))
	for _, id := range ids {
		t, err := getByID(ctx, tx, id)
		if task.IsNotFound(err) {
			return &task.Error{
				Code:    task.CodeInvariantViolation,
				Message: "rank batch references a task that does not exist",
				ID:      id,
			}
		}
		if err != nil {
			return err
		}
		rows = append(rows, t)
	}

	step := 0
	for _, t := range rows {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, t.ID); err != nil {
			return err
		}
		step++
		if err := s.wrote(step); err != nil {
			return err
		}
	}

	for _, t := range rows {
		t.Rank = batch[t.ID]
		if err := insertTask(ctx, tx, t); err != nil {
			return err
		}
		step++
		if err := s.wrote(step); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) wrote(step int) error {
	if s.afterWrite == nil {
		return nil
	}
	return s.afterWrite(step)
}

// verifyDense returns an invariant violation unless ranks are exactly 1..N.
func verifyDense(ctx context.Context, q querier) error {
	var stats task.RankStats
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT rank), COALESCE(MIN(rank), 0), COALESCE(MAX(rank), 0)
		FROM tasks
	`).Scan(&stats.Count, &stats.Distinct, &stats.Min, &stats.Max)
	if err != nil {
		return classify("verify ranks", err)
	}
	return stats.CheckDense()
}

// txSnapshot implements task.RankSnapshot over an open transaction.
type txSnapshot struct {
	tx *sql.Tx
}

func (s *txSnapshot) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, classify("count tasks", err)
	}
	return n, nil
}

func (s *txSnapshot) RankOf(ctx context.Context, id string) (int, error) {
	var rank int
	err := s.tx.QueryRowContext(ctx, `SELECT rank FROM tasks WHERE id = ?`, id).Scan(&rank)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, task.NewNotFoundError(id)
	}
	if err != nil {
		return 0, classify("rank of task", err)
	}
	return rank, nil
}

func (s *txSnapshot) Between(ctx context.Context, lo, hi int) ([]task.Slot, error) {
	rows, err := s.tx.QueryContext(ctx, `
		SELECT id, rank FROM tasks
		WHERE rank BETWEEN ? AND ?
		ORDER BY rank ASC
	`, lo, hi)
	if err != nil {
		return nil, classify("ranks between", err)
	}
	defer rows.Close()

	var slots []task.Slot
	for rows.Next() {
		var slot task.Slot
		if err := rows.Scan(&slot.ID, &slot.Rank); err != nil {
			return nil, classify("ranks between: scan", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("ranks between: iterate", err)
	}
	return slots, nil
}
