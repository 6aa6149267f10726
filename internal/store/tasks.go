package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tarefas/internal/task"
)

const taskColumns = "id, name, cost, due_date, rank"

// querier is the subset of *sql.DB and *sql.Tx the read helpers need.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Create inserts a new task at the end of the list (rank = N+1).
//
// Fails with a validation error for an invalid draft and with a conflict
// error when another task already has the (normalized) name.
func (s *Store) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	d, err := d.Normalize()
	if err != nil {
		return task.Task{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return task.Task{}, classify("create task: begin tx", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := checkNameFree(ctx, tx, d.Name, ""); err != nil {
		return task.Task{}, err
	}

	var maxRank int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(rank), 0) FROM tasks`).Scan(&maxRank); err != nil {
		return task.Task{}, classify("create task: max rank", err)
	}

	t := task.Task{
		ID:      s.ids.Generate(),
		Name:    d.Name,
		Cost:    d.Cost,
		DueDate: d.DueDate,
		Rank:    maxRank + 1,
	}
	if err := insertTask(ctx, tx, t); err != nil {
		return task.Task{}, classify("create task: insert", err)
	}

	if err := tx.Commit(); err != nil {
		return task.Task{}, classify("create task: commit", err)
	}
	return t, nil
}

// GetByID returns the task with id, or a not-found error.
func (s *Store) GetByID(ctx context.Context, id string) (task.Task, error) {
	t, err := getByID(ctx, s.db, id)
	if err != nil {
		return task.Task{}, classify("get task", err)
	}
	return t, nil
}

// GetByName returns the task whose normalized name equals the normalized
// form of name, or a not-found error.
func (s *Store) GetByName(ctx context.Context, name string) (task.Task, error) {
	normalized, err := task.NormalizeName(name)
	if err != nil {
		// A name that fails normalization cannot be stored, so nothing holds it.
		return task.Task{}, task.NewNameNotFoundError(name)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE name = ?`, normalized)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, task.NewNameNotFoundError(normalized)
	}
	if err != nil {
		return task.Task{}, classify("get task by name", err)
	}
	return t, nil
}

// List returns all tasks ordered by ascending rank.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) List(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY rank ASC`)
	if err != nil {
		return nil, classify("list tasks", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, classify("list tasks: scan", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list tasks: iterate", err)
	}

	return tasks, nil
}

// Update replaces the name, cost and due date of task id. The rank is not
// touched.
func (s *Store) Update(ctx context.Context, id string, d task.Draft) (task.Task, error) {
	d, err := d.Normalize()
	if err != nil {
		return task.Task{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return task.Task{}, classify("update task: begin tx", err)
	}
	defer tx.Rollback()

	current, err := getByID(ctx, tx, id)
	if err != nil {
		return task.Task{}, classify("update task", err)
	}

	if err := checkNameFree(ctx, tx, d.Name, id); err != nil {
		return task.Task{}, err
	}

	updated := current.Apply(d)
	_, err = tx.ExecContext(ctx, `
		UPDATE tasks SET name = ?, cost = ?, due_date = ?
		WHERE id = ?
	`, updated.Name, updated.Cost, updated.DueDate.String(), id)
	if err != nil {
		return task.Task{}, classify("update task", err)
	}

	if err := tx.Commit(); err != nil {
		return task.Task{}, classify("update task: commit", err)
	}
	return updated, nil
}

// Delete removes task id and compacts the ranks above it by one, in the
// same transaction.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("delete task: begin tx", err)
	}
	defer tx.Rollback()

	snap := &txSnapshot{tx: tx}
	rank, err := snap.RankOf(ctx, id)
	if err != nil {
		return classify("delete task", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return classify("delete task", err)
	}

	above, err := snap.Between(ctx, rank+1, maxRankBound)
	if err != nil {
		return classify("delete task: ranks above", err)
	}
	if err := s.applyBatch(ctx, tx, task.ShiftBatch(above, -1)); err != nil {
		return classify("delete task: compact", err)
	}
	if err := verifyDense(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("delete task: commit", err)
	}
	return nil
}

// checkNameFree returns a conflict error when a task other than exceptID
// already holds name.
func checkNameFree(ctx context.Context, q querier, name, exceptID string) error {
	var holder string
	err := q.QueryRowContext(ctx, `SELECT id FROM tasks WHERE name = ?`, name).Scan(&holder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return classify("check name", err)
	}
	if holder == exceptID {
		return nil
	}
	return task.NewConflictError(name)
}

func getByID(ctx context.Context, q querier, id string) (task.Task, error) {
	row := q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, task.NewNotFoundError(id)
	}
	return t, err
}

func insertTask(ctx context.Context, q querier, t task.Task) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Cost, t.DueDate.String(), t.Rank)
	return err
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask scans a row selected with taskColumns.
func scanTask(row scanner) (task.Task, error) {
	var t task.Task
	var due string
	if err := row.Scan(&t.ID, &t.Name, &t.Cost, &due, &t.Rank); err != nil {
		return task.Task{}, err
	}
	d, err := task.ParseDate(due)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %s has corrupt due date %q: %v", t.ID, due, err)
	}
	t.DueDate = d
	return t, nil
}
