// Package service orchestrates task operations on top of a store and the
// ordering engine. It is the single entry point used by the HTTP API, the
// CLI and the importer.
package service

import (
	"context"
	"log/slog"

	"github.com/roach88/tarefas/internal/ordering"
	"github.com/roach88/tarefas/internal/task"
)

// Store is the record store contract. Implemented by store.Store (SQLite)
// and pgstore.Store (PostgreSQL).
type Store interface {
	ordering.Reranker

	Create(ctx context.Context, d task.Draft) (task.Task, error)
	GetByID(ctx context.Context, id string) (task.Task, error)
	GetByName(ctx context.Context, name string) (task.Task, error)
	List(ctx context.Context) ([]task.Task, error)
	Update(ctx context.Context, id string, d task.Draft) (task.Task, error)
	Delete(ctx context.Context, id string) error
	Verify(ctx context.Context) error
}

// Input is a request-shaped task: what a client submits to create or
// update a task.
type Input struct {
	Name    string  `json:"name" yaml:"name"`
	Cost    float64 `json:"cost" yaml:"cost"`
	DueDate string  `json:"due_date" yaml:"due_date"`
}

// Draft validates the input and converts it to a normalized task.Draft.
func (in Input) Draft() (task.Draft, error) {
	return task.NewDraft(in.Name, in.Cost, in.DueDate)
}

// Service implements the task operations.
//
// Thread-safety: safe for concurrent use; serialization is the store's job.
type Service struct {
	store  Store
	engine *ordering.Engine
	logger *slog.Logger
}

// New creates a service over store. A nil logger means slog.Default().
func New(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		engine: ordering.New(store),
		logger: logger,
	}
}

// List returns all tasks ordered by rank.
func (s *Service) List(ctx context.Context) ([]task.Task, error) {
	return s.store.List(ctx)
}

// Get returns task id.
func (s *Service) Get(ctx context.Context, id string) (task.Task, error) {
	return s.store.GetByID(ctx, id)
}

// FindByName returns the task holding name (normalized).
func (s *Service) FindByName(ctx context.Context, name string) (task.Task, error) {
	return s.store.GetByName(ctx, name)
}

// CheckName reports whether name is free. A task being edited passes its
// own id as exceptID so keeping its current name counts as available.
func (s *Service) CheckName(ctx context.Context, name, exceptID string) (bool, error) {
	if _, err := task.NormalizeName(name); err != nil {
		return false, err
	}
	holder, err := s.store.GetByName(ctx, name)
	if task.IsNotFound(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return exceptID != "" && holder.ID == exceptID, nil
}

// Create validates in and appends the task at rank N+1.
func (s *Service) Create(ctx context.Context, in Input) (task.Task, error) {
	d, err := in.Draft()
	if err != nil {
		return task.Task{}, s.fail("create", "", err)
	}
	t, err := s.store.Create(ctx, d)
	if err != nil {
		return task.Task{}, s.fail("create", "", err)
	}
	s.logger.Debug("task created", "id", t.ID, "name", t.Name, "rank", t.Rank)
	return t, nil
}

// Update replaces the editable fields of task id.
func (s *Service) Update(ctx context.Context, id string, in Input) (task.Task, error) {
	d, err := in.Draft()
	if err != nil {
		return task.Task{}, s.fail("update", id, err)
	}
	t, err := s.store.Update(ctx, id, d)
	if err != nil {
		return task.Task{}, s.fail("update", id, err)
	}
	s.logger.Debug("task updated", "id", t.ID, "name", t.Name)
	return t, nil
}

// Delete removes task id and compacts the ranks above it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return s.fail("delete", id, err)
	}
	s.logger.Debug("task deleted", "id", id)
	return nil
}

// Move relocates task id to rank target.
func (s *Service) Move(ctx context.Context, id string, target int) error {
	if err := s.engine.Move(ctx, id, target); err != nil {
		return s.fail("move", id, err)
	}
	s.logger.Debug("task moved", "id", id, "rank", target)
	return nil
}

// Verify checks the rank invariant across the whole store.
func (s *Service) Verify(ctx context.Context) error {
	if err := s.store.Verify(ctx); err != nil {
		return s.fail("verify", "", err)
	}
	return nil
}

func (s *Service) fail(op, id string, err error) error {
	level := slog.LevelWarn
	if task.IsInvariantViolation(err) || task.CodeOf(err) == "" {
		level = slog.LevelError
	}
	s.logger.Log(context.Background(), level, "task operation failed",
		"op", op, "id", id, "code", string(task.CodeOf(err)), "error", err)
	return err
}
