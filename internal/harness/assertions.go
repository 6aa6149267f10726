package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/tarefas/internal/task"
)

// EvaluateAssertions checks the assertions against the final task list
// (ordered by rank) and returns one message per failed assertion.
func EvaluateAssertions(tasks []task.Task, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(tasks, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion[%d] %s: %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluate(tasks []task.Task, a Assertion) error {
	switch a.Type {
	case AssertOrder:
		got := make([]string, len(tasks))
		for i, t := range tasks {
			got[i] = t.Name
		}
		want := a.Names
		if want == nil {
			want = []string{}
		}
		if !slices.Equal(got, want) {
			return fmt.Errorf("expected order %v, got %v", want, got)
		}
	case AssertCount:
		if len(tasks) != a.Count {
			return fmt.Errorf("expected %d task(s), got %d", a.Count, len(tasks))
		}
	case AssertRank:
		i := slices.IndexFunc(tasks, func(t task.Task) bool { return t.Name == a.Task })
		if i < 0 {
			return fmt.Errorf("task %q not found", a.Task)
		}
		if tasks[i].Rank != a.Rank {
			return fmt.Errorf("expected %q at rank %d, got %d", a.Task, a.Rank, tasks[i].Rank)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
