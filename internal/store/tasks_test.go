package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tarefas/internal/task"
	"github.com/roach88/tarefas/internal/testutil"
)

func TestCreate_EmptyStoreStartsAtRankOne(t *testing.T) {
	s := createTestStore(t)

	tk, err := s.Create(context.Background(), testutil.Draft(t, "first", 1.5, "2025-01-10"))
	require.NoError(t, err)

	assert.Equal(t, "task-1", tk.ID)
	assert.Equal(t, 1, tk.Rank)
	assert.Equal(t, "first", tk.Name)
	assert.Equal(t, 1.5, tk.Cost)
	assert.Equal(t, task.NewDate(2025, time.January, 10), tk.DueDate)
}

func TestCreate_AppendsAfterMaxRank(t *testing.T) {
	s := createTestStore(t)
	seedTasks(t, s, "A", "B", "C", "D", "E")

	tk, err := s.Create(context.Background(), testutil.Draft(t, "F", 1, "2025-01-10"))
	require.NoError(t, err)
	assert.Equal(t, 6, tk.Rank)

	listTasks(t, s)
}

func TestCreate_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, testutil.Draft(t, "Pay rent", 1200.75, "2025-02-01"))
	require.NoError(t, err)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreate_ValidatesDraft(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, task.Draft{Name: "", Cost: 1, DueDate: task.NewDate(2025, 1, 1)})
	assert.True(t, task.IsValidation(err))

	_, err = s.Create(ctx, task.Draft{Name: "x", Cost: -1, DueDate: task.NewDate(2025, 1, 1)})
	assert.True(t, task.IsValidation(err))

	_, err = s.Create(ctx, task.Draft{Name: "x", Cost: 1})
	assert.True(t, task.IsValidation(err))

	tasks := listTasks(t, s)
	assert.Empty(t, tasks)
}

func TestCreate_DuplicateNameConflicts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedTasks(t, s, "A", "B")

	_, err := s.Create(ctx, testutil.Draft(t, "B", 99, "2030-01-01"))
	require.Error(t, err)
	assert.True(t, task.IsConflict(err), "got %v", err)

	tasks := listTasks(t, s)
	assert.Equal(t, []string{"A", "B"}, testutil.Names(tasks))
	assert.Equal(t, 10.0, tasks[1].Cost)
}

func TestCreate_NormalizedNamesConflict(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, testutil.Draft(t, "café", 1, "2025-01-01"))
	require.NoError(t, err)

	_, err = s.Create(ctx, task.Draft{Name: " café ", Cost: 1, DueDate: task.NewDate(2025, 1, 1)})
	assert.True(t, task.IsConflict(err), "got %v", err)
}

func TestGetByID_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetByID(context.Background(), "missing")
	assert.True(t, task.IsNotFound(err))
}

func TestGetByName(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seeded := seedTasks(t, s, "Alpha", "Beta")

	got, err := s.GetByName(ctx, "  Beta ")
	require.NoError(t, err)
	assert.Equal(t, seeded[1], got)

	_, err = s.GetByName(ctx, "Gamma")
	assert.True(t, task.IsNotFound(err))

	for _, blank := range []string{"", "   "} {
		_, err = s.GetByName(ctx, blank)
		assert.True(t, task.IsNotFound(err), "%q: got %v", blank, err)
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)

	tasks, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Len(t, tasks, 0)
}

func TestList_OrderedByRank(t *testing.T) {
	s := createTestStore(t)
	seedTasks(t, s, "A", "B", "C")

	require.NoError(t, s.ApplyRankBatch(context.Background(), task.RankBatch{"task-1": 3, "task-3": 1}))

	tasks := listTasks(t, s)
	assert.Equal(t, []string{"C", "B", "A"}, testutil.Names(tasks))
}

func TestUpdate_KeepsRank(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seeded := seedTasks(t, s, "A", "B", "C")

	updated, err := s.Update(ctx, seeded[1].ID, testutil.Draft(t, "B2", 42, "2026-03-03"))
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rank)
	assert.Equal(t, "B2", updated.Name)
	assert.Equal(t, 42.0, updated.Cost)

	got, err := s.GetByID(ctx, seeded[1].ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	listTasks(t, s)
}

func TestUpdate_SameNameOnSelfAllowed(t *testing.T) {
	s := createTestStore(t)
	seeded := seedTasks(t, s, "A")

	_, err := s.Update(context.Background(), seeded[0].ID, testutil.Draft(t, "A", 5, "2025-01-01"))
	assert.NoError(t, err)
}

func TestUpdate_NameOfOtherTaskConflicts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seeded := seedTasks(t, s, "A", "B")

	_, err := s.Update(ctx, seeded[0].ID, testutil.Draft(t, "B", 5, "2025-01-01"))
	assert.True(t, task.IsConflict(err), "got %v", err)

	got, err := s.GetByID(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, seeded[0], got)
}

func TestUpdate_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Update(context.Background(), "missing", testutil.Draft(t, "A", 1, "2025-01-01"))
	assert.True(t, task.IsNotFound(err))
}

func TestUpdate_Validation(t *testing.T) {
	s := createTestStore(t)
	seeded := seedTasks(t, s, "A")

	_, err := s.Update(context.Background(), seeded[0].ID, task.Draft{Name: "A", Cost: -3, DueDate: task.NewDate(2025, 1, 1)})
	assert.True(t, task.IsValidation(err))
}

func TestDelete_CompactsRanks(t *testing.T) {
	s := createTestStore(t)
	seeded := seedTasks(t, s, "A", "B", "C", "D", "E")

	require.NoError(t, s.Delete(context.Background(), seeded[2].ID))

	tasks := listTasks(t, s)
	assert.Equal(t, []string{"A", "B", "D", "E"}, testutil.Names(tasks))
	assert.Equal(t, map[string]int{"A": 1, "B": 2, "D": 3, "E": 4}, testutil.RankByName(tasks))
}

func TestDelete_FirstAndLast(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seeded := seedTasks(t, s, "A", "B", "C")

	require.NoError(t, s.Delete(ctx, seeded[2].ID))
	require.NoError(t, s.Delete(ctx, seeded[0].ID))

	tasks := listTasks(t, s)
	assert.Equal(t, []string{"B"}, testutil.Names(tasks))

	require.NoError(t, s.Delete(ctx, seeded[1].ID))
	assert.Empty(t, listTasks(t, s))
}

func TestDelete_NotFound(t *testing.T) {
	s := createTestStore(t)
	seedTasks(t, s, "A")

	err := s.Delete(context.Background(), "missing")
	assert.True(t, task.IsNotFound(err))
	assert.Len(t, listTasks(t, s), 1)
}

func TestDelete_IDsAreNotReused(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seeded := seedTasks(t, s, "A", "B")

	require.NoError(t, s.Delete(ctx, seeded[1].ID))
	tk, err := s.Create(ctx, testutil.Draft(t, "C", 1, "2025-01-01"))
	require.NoError(t, err)
	assert.Equal(t, "task-3", tk.ID)
	assert.Equal(t, 2, tk.Rank)
}

func TestWritesBusyWhenLockHeldElsewhere(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	ctx := context.Background()

	holder, err := Open(path, WithIDGenerator(testutil.NewSequentialIDs("")))
	require.NoError(t, err)
	defer holder.Close()
	seedTasks(t, holder, "A", "B", "C")

	waiter, err := Open(path, WithBusyTimeout(100*time.Millisecond))
	require.NoError(t, err)
	defer waiter.Close()
	before := listTasks(t, waiter)

	// BEGIN IMMEDIATE: holder now owns the write lock.
	tx, err := holder.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = waiter.Create(ctx, testutil.Draft(t, "blocked", 1, "2025-01-01"))
	assert.True(t, task.IsBusy(err), "create: got %v", err)

	err = waiter.ApplyRankBatch(ctx, task.RankBatch{"task-1": 3, "task-3": 1})
	assert.True(t, task.IsBusy(err), "rerank: got %v", err)

	err = waiter.Delete(ctx, "task-2")
	assert.True(t, task.IsBusy(err), "delete: got %v", err)

	// WAL readers are not blocked by the writer.
	assert.Equal(t, before, listTasks(t, waiter))

	require.NoError(t, tx.Rollback())
	_, err = waiter.Create(ctx, testutil.Draft(t, "unblocked", 1, "2025-01-01"))
	require.NoError(t, err)
	testutil.RequireDense(t, listTasks(t, waiter))
}
