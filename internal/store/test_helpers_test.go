package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tarefas/internal/task"
	"github.com/roach88/tarefas/internal/testutil"
)

// createTestStore creates a new store in a temporary directory with
// sequential ids (task-1, task-2, ...).
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDs("")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedTasks creates one task per name, in order, with ranks 1..len(names).
func seedTasks(t *testing.T, s *Store, names ...string) []task.Task {
	t.Helper()
	created := make([]task.Task, 0, len(names))
	for _, name := range names {
		tk, err := s.Create(context.Background(), testutil.Draft(t, name, 10, "2025-06-01"))
		require.NoError(t, err)
		created = append(created, tk)
	}
	return created
}

// listTasks lists the store and asserts the rank invariant.
func listTasks(t *testing.T, s *Store) []task.Task {
	t.Helper()
	tasks, err := s.List(context.Background())
	require.NoError(t, err)
	testutil.RequireDense(t, tasks)
	return tasks
}
