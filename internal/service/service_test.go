package service

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tarefas/internal/store"
	"github.com/roach88/tarefas/internal/task"
	"github.com/roach88/tarefas/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *bytes.Buffer) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tasks.db"), store.WithIDGenerator(testutil.NewSequentialIDs("")))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(st, logger), &logs
}

func create(t *testing.T, svc *Service, names ...string) []task.Task {
	t.Helper()
	out := make([]task.Task, 0, len(names))
	for _, name := range names {
		tk, err := svc.Create(context.Background(), Input{Name: name, Cost: 5, DueDate: "2025-03-01"})
		require.NoError(t, err)
		out = append(out, tk)
	}
	return out
}

func TestService_CreateAppends(t *testing.T) {
	svc, logs := newTestService(t)
	created := create(t, svc, "A", "B", "C")

	assert.Equal(t, 3, created[2].Rank)
	assert.Contains(t, logs.String(), "task created")

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	testutil.RequireDense(t, list)
}

func TestService_CreateValidation(t *testing.T) {
	svc, logs := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"empty name", Input{Name: "  ", Cost: 1, DueDate: "2025-01-01"}, "name"},
		{"negative cost", Input{Name: "x", Cost: -1, DueDate: "2025-01-01"}, "cost"},
		{"bad date", Input{Name: "x", Cost: 1, DueDate: "tomorrow"}, "due_date"},
		{"missing date", Input{Name: "x", Cost: 1}, "due_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			require.True(t, task.IsValidation(err), "got %v", err)

			var te *task.Error
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.field, te.Field)
		})
	}
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestService_GetAndFind(t *testing.T) {
	svc, _ := newTestService(t)
	created := create(t, svc, "Groceries")
	ctx := context.Background()

	got, err := svc.Get(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, created[0], got)

	found, err := svc.FindByName(ctx, " Groceries ")
	require.NoError(t, err)
	assert.Equal(t, created[0].ID, found.ID)

	_, err = svc.Get(ctx, "nope")
	assert.True(t, task.IsNotFound(err))
}

func TestService_CheckName(t *testing.T) {
	svc, _ := newTestService(t)
	created := create(t, svc, "A")
	ctx := context.Background()

	free, err := svc.CheckName(ctx, "B", "")
	require.NoError(t, err)
	assert.True(t, free)

	free, err = svc.CheckName(ctx, "A", "")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = svc.CheckName(ctx, "A", created[0].ID)
	require.NoError(t, err)
	assert.True(t, free, "a task keeps its own name")

	_, err = svc.CheckName(ctx, "", "")
	assert.True(t, task.IsValidation(err), "a blank name is invalid, not available")

	_, err = svc.FindByName(ctx, "  ")
	assert.True(t, task.IsNotFound(err))
}

func TestService_UpdateConflict(t *testing.T) {
	svc, _ := newTestService(t)
	created := create(t, svc, "A", "B")

	_, err := svc.Update(context.Background(), created[1].ID, Input{Name: "A", Cost: 1, DueDate: "2025-01-01"})
	assert.True(t, task.IsConflict(err))

	updated, err := svc.Update(context.Background(), created[1].ID, Input{Name: "B", Cost: 9, DueDate: "2025-02-02"})
	require.NoError(t, err)
	assert.Equal(t, 9.0, updated.Cost)
	assert.Equal(t, 2, updated.Rank)
}

func TestService_MoveAndDelete(t *testing.T) {
	svc, logs := newTestService(t)
	created := create(t, svc, "A", "B", "C", "D", "E")
	ctx := context.Background()

	require.NoError(t, svc.Move(ctx, created[1].ID, 4))
	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "D", "B", "E"}, testutil.Names(list))

	require.NoError(t, svc.Delete(ctx, created[0].ID))
	list, err = svc.List(ctx)
	require.NoError(t, err)
	testutil.RequireDense(t, list)
	assert.Equal(t, []string{"C", "D", "B", "E"}, testutil.Names(list))

	err = svc.Move(ctx, created[1].ID, 5)
	assert.True(t, task.IsValidation(err))
	assert.Contains(t, logs.String(), "op=move")

	require.NoError(t, svc.Verify(ctx))
}
