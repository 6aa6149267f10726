package pgstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roach88/tarefas/internal/task"
)

// Rerank runs plan on a snapshot taken under the writer lock and applies
// the batch it returns in the same transaction.
func (s *Store) Rerank(ctx context.Context, plan task.RankPlan) error {
	tx, err := s.beginWrite(ctx, "rerank")
	if err != nil {
		return err
	}
	defer tx.Rollback()

	batch, err := plan(ctx, &txSnapshot{tx: tx})
	if err != nil {
		return classify("rerank: plan", err)
	}
	if len(batch) == 0 {
		return nil
	}

	if err := applyBatch(ctx, tx, batch); err != nil {
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

// ApplyRankBatch applies batch atomically, rejecting it whole when the
// result is not dense.
func (s *Store) ApplyRankBatch(ctx context.Context, batch task.RankBatch) error {
	return s.Rerank(ctx, func(context.Context, task.RankSnapshot) (task.RankBatch, error) {
		return batch, nil
	})
}

// Verify checks the rank invariant over the whole table.
func (s *Store) Verify(ctx context.Context) error {
	return verifyDense(ctx, s.db)
}

// applyBatch updates each row in place. tasks_rank_key is deferred, so
// intermediate duplicates are allowed until commit.
func applyBatch(ctx context.Context, tx *sql.Tx, batch task.RankBatch) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	for _, id := range batch.IDs() {
		res, err := tx.ExecContext(ctx, `UPDATE tasks SET rank = $1 WHERE id = $2`, batch[id], id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &task.Error{
				Code:    task.CodeInvariantViolation,
				Message: "rank batch references a task that does not exist",
				ID:      id,
			}
		}
	}
	return nil
}

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
	err := s.tx.QueryRowContext(ctx, `SELECT rank FROM tasks WHERE id = $1`, id).Scan(&rank)
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
		WHERE rank BETWEEN $1 AND $2
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
