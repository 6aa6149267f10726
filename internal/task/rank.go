package task

import (
	"context"
	"fmt"
	"sort"
)

// Slot is a task id together with its current rank.
type Slot struct {
	ID   string
	Rank int
}

// RankBatch maps task ids to their new ranks. A batch is applied as one
// atomic unit or not at all.
type RankBatch map[string]int

// IDs returns the batch ids in ascending order, so stores write rows in a
// deterministic sequence.
func (b RankBatch) IDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate rejects entries with an empty id or a rank below 1.
func (b RankBatch) Validate() error {
	for _, id := range b.IDs() {
		if id == "" {
			return NewInvariantError("rank batch contains an empty task id")
		}
		if r := b[id]; r < 1 {
			return &Error{Code: CodeInvariantViolation, Message: fmt.Sprintf("rank batch assigns rank %d", r), ID: id}
		}
	}
	return nil
}

// ShiftBatch returns a batch moving every slot by delta.
// Delete compaction uses delta -1; a move shifts its span by +1 or -1.
func ShiftBatch(slots []Slot, delta int) RankBatch {
	batch := make(RankBatch, len(slots))
	for _, s := range slots {
		batch[s.ID] = s.Rank + delta
	}
	return batch
}

// RankStats summarizes the rank column of a store.
type RankStats struct {
	Count    int
	Distinct int
	Min      int
	Max      int
}

// CheckDense returns an invariant violation unless the ranks are exactly
// {1, ..., Count}.
func (s RankStats) CheckDense() error {
	if s.Count == 0 {
		return nil
	}
	if s.Distinct != s.Count {
		return NewInvariantError(fmt.Sprintf("ranks are not unique: %d tasks share %d ranks", s.Count, s.Distinct))
	}
	if s.Min != 1 || s.Max != s.Count {
		return NewInvariantError(fmt.Sprintf("ranks are not dense: range [%d, %d] over %d tasks", s.Min, s.Max, s.Count))
	}
	return nil
}

// RankSnapshot is a read view of the rank column taken inside the
// transaction that will apply the resulting batch.
type RankSnapshot interface {
	// Count returns the number of live tasks.
	Count(ctx context.Context) (int, error)

	// RankOf returns the current rank of id, or a not-found error.
	RankOf(ctx context.Context, id string) (int, error)

	// Between returns the slots with lo <= rank <= hi, ascending by rank.
	Between(ctx context.Context, lo, hi int) ([]Slot, error)
}

// RankPlan computes a batch from a snapshot. Returning an empty batch
// commits nothing; returning an error aborts the transaction.
type RankPlan func(ctx context.Context, snap RankSnapshot) (RankBatch, error)
