package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tarefas/internal/task"
)

// RequireDense fails the test unless tasks, in the order given, carry
// ranks 1..N. Stores return List ordered by rank, so a listed slice must
// pass.
func RequireDense(t testing.TB, tasks []task.Task) {
	t.Helper()
	for i, tk := range tasks {
		require.Equalf(t, i+1, tk.Rank, "task %s (%q) at position %d", tk.ID, tk.Name, i)
	}
}

// Names returns the task names in slice order.
func Names(tasks []task.Task) []string {
	names := make([]string, len(tasks))
	for i, tk := range tasks {
		names[i] = tk.Name
	}
	return names
}

// RankByName maps each task name to its rank.
func RankByName(tasks []task.Task) map[string]int {
	ranks := make(map[string]int, len(tasks))
	for _, tk := range tasks {
		ranks[tk.Name] = tk.Rank
	}
	return ranks
}

// Draft builds a valid draft or fails the test.
func Draft(t testing.TB, name string, cost float64, due string) task.Draft {
	t.Helper()
	d, err := task.NewDraft(name, cost, due)
	require.NoError(t, err)
	return d
}
