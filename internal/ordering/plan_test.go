package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tarefas/internal/task"
)

func slots(ids ...string) func(lo int) []task.Slot {
	return func(lo int) []task.Slot {
		out := make([]task.Slot, len(ids))
		for i, id := range ids {
			out[i] = task.Slot{ID: id, Rank: lo + i}
		}
		return out
	}
}

func TestSpan(t *testing.T) {
	lo, hi := Span(2, 4)
	assert.Equal(t, [2]int{2, 4}, [2]int{lo, hi})
	lo, hi = Span(4, 2)
	assert.Equal(t, [2]int{2, 4}, [2]int{lo, hi})
	lo, hi = Span(3, 3)
	assert.Equal(t, [2]int{3, 3}, [2]int{lo, hi})
}

func TestPlanMove(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		current int
		target  int
		slots   []task.Slot
		want    task.RankBatch
	}{
		{
			name: "later in list", id: "B", current: 2, target: 4,
			slots: slots("B", "C", "D")(2),
			want:  task.RankBatch{"B": 4, "C": 2, "D": 3},
		},
		{
			name: "earlier in list", id: "D", current: 4, target: 2,
			slots: slots("B", "C", "D")(2),
			want:  task.RankBatch{"D": 2, "B": 3, "C": 4},
		},
		{
			name: "to front", id: "E", current: 5, target: 1,
			slots: slots("A", "B", "C", "D", "E")(1),
			want:  task.RankBatch{"E": 1, "A": 2, "B": 3, "C": 4, "D": 5},
		},
		{
			name: "to back", id: "A", current: 1, target: 5,
			slots: slots("A", "B", "C", "D", "E")(1),
			want:  task.RankBatch{"A": 5, "B": 1, "C": 2, "D": 3, "E": 4},
		},
		{
			name: "adjacent swap", id: "C", current: 3, target: 4,
			slots: slots("C", "D")(3),
			want:  task.RankBatch{"C": 4, "D": 3},
		},
		{
			name: "no-op", id: "C", current: 3, target: 3,
			slots: nil,
			want:  task.RankBatch{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanMove(tt.id, tt.current, tt.target, tt.slots)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanMove_BatchIsPermutationOfSpan(t *testing.T) {
	for current := 1; current <= 6; current++ {
		for target := 1; target <= 6; target++ {
			ids := []string{"a", "b", "c", "d", "e", "f"}
			lo, hi := Span(current, target)
			span := slots(ids[lo-1 : hi]...)(lo)

			batch, err := PlanMove(ids[current-1], current, target, span)
			require.NoError(t, err)

			seen := make(map[int]bool)
			for _, r := range batch {
				assert.GreaterOrEqual(t, r, lo)
				assert.LessOrEqual(t, r, hi)
				assert.False(t, seen[r], "rank %d assigned twice", r)
				seen[r] = true
			}
			if current != target {
				assert.Len(t, batch, hi-lo+1)
				assert.Equal(t, target, batch[ids[current-1]])
			}
		}
	}
}

func TestPlanMove_InconsistentSlots(t *testing.T) {
	tests := []struct {
		name  string
		slots []task.Slot
	}{
		{"missing slot", []task.Slot{{ID: "B", Rank: 2}, {ID: "C", Rank: 3}}},
		{"gap in span", []task.Slot{{ID: "B", Rank: 2}, {ID: "C", Rank: 3}, {ID: "D", Rank: 5}}},
		{"task not in span", []task.Slot{{ID: "X", Rank: 2}, {ID: "C", Rank: 3}, {ID: "D", Rank: 4}}},
		{"task at wrong rank", []task.Slot{{ID: "C", Rank: 2}, {ID: "B", Rank: 3}, {ID: "D", Rank: 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanMove("B", 2, 4, tt.slots)
			assert.True(t, task.IsInvariantViolation(err), "got %v", err)
		})
	}
}
