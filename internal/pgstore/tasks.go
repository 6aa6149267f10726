package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tarefas/internal/task"
)

// selectColumns renders due_date as YYYY-MM-DD independent of DateStyle.
const selectColumns = "id, name, cost, to_char(due_date, 'YYYY-MM-DD'), rank"

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Create inserts a new task at rank N+1.
func (s *Store) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	d, err := d.Normalize()
	if err != nil {
		return task.Task{}, err
	}

	tx, err := s.beginWrite(ctx, "create task")
	if err != nil {
		return task.Task{}, err
	}
	defer tx.Rollback()

	if err := checkNameFree(ctx, tx, d.Name, ""); err != nil {
		return task.Task{}, err
	}

	var maxRank int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(rank), 0) FROM tasks`).Scan(&maxRank); err != nil {
		return task.Task{}, classify("create task: max rank", err)
	}

	t := task.Task{
		ID:      s.cfg.IDs.Generate(),
		Name:    d.Name,
		Cost:    d.Cost,
		DueDate: d.DueDate,
		Rank:    maxRank + 1,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (id, name, cost, due_date, rank)
		VALUES ($1, $2, $3, $4::date, $5)
	`, t.ID, t.Name, t.Cost, t.DueDate.String(), t.Rank)
	if err != nil {
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

// GetByName looks a task up by its normalized name.
func (s *Store) GetByName(ctx context.Context, name string) (task.Task, error) {
	normalized, err := task.NormalizeName(name)
	if err != nil {
		// A name that fails normalization cannot be stored, so nothing holds it.
		return task.Task{}, task.NewNameNotFoundError(name)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM tasks WHERE name = $1`, normalized)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, task.NewNameNotFoundError(normalized)
	}
	if err != nil {
		return task.Task{}, classify("get task by name", err)
	}
	return t, nil
}

// List returns all tasks by ascending rank, never nil.
func (s *Store) List(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM tasks ORDER BY rank ASC`)
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

// Update replaces name, cost and due date of task id, keeping its rank.
func (s *Store) Update(ctx context.Context, id string, d task.Draft) (task.Task, error) {
	d, err := d.Normalize()
	if err != nil {
		return task.Task{}, err
	}

	tx, err := s.beginWrite(ctx, "update task")
	if err != nil {
		return task.Task{}, err
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
		UPDATE tasks SET name = $1, cost = $2, due_date = $3::date
		WHERE id = $4
	`, updated.Name, updated.Cost, updated.DueDate.String(), id)
	if err != nil {
		return task.Task{}, classify("update task", err)
	}

	if err := tx.Commit(); err != nil {
		return task.Task{}, classify("update task: commit", err)
	}
	return updated, nil
}

// Delete removes task id and shifts every rank above it down by one.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.beginWrite(ctx, "delete task")
	if err != nil {
		return err
	}
	defer tx.Rollback()

	snap := &txSnapshot{tx: tx}
	rank, err := snap.RankOf(ctx, id)
	if err != nil {
		return classify("delete task", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return classify("delete task", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE tasks SET rank = rank - 1 WHERE rank > $1`, rank); err != nil {
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

func checkNameFree(ctx context.Context, q querier, name, exceptID string) error {
	var holder string
	err := q.QueryRowContext(ctx, `SELECT id FROM tasks WHERE name = $1`, name).Scan(&holder)
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
	row := q.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, task.NewNotFoundError(id)
	}
	return t, err
}

type scanner interface {
	Scan(dest ...any) error
}

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
