package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ScenarioFiles(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)

	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), ".yaml")
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(f)
			require.NoError(t, err)

			result, err := Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Trace, len(s.Flow))
		})
	}
}

func TestRun_Golden(t *testing.T) {
	for _, name := range []string{"move_down", "delete_compacts"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(filepath.Join("testdata/scenarios", name+".yaml"))
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass)
		})
	}
}

func TestRun_UnmetExpectationFails(t *testing.T) {
	s := &Scenario{
		Name:        "wrong_expectation",
		Description: "a valid move declared as failing",
		Setup:       []string{"A", "B"},
		Flow:        []FlowStep{{Op: OpMove, Task: "B", Rank: 1, Expect: "VALIDATION"}},
		Assertions:  []Assertion{{Type: AssertOrder, Names: []string{"B", "A"}}},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected VALIDATION, got ok")
	assert.Equal(t, []string{"B", "A"}, result.Final)
}

func TestRun_FailedAssertion(t *testing.T) {
	s := &Scenario{
		Name:        "bad_order",
		Description: "asserts the wrong order",
		Setup:       []string{"A", "B", "C"},
		Flow:        []FlowStep{{Op: OpMove, Task: "A", Rank: 3}},
		Assertions: []Assertion{
			{Type: AssertOrder, Names: []string{"A", "B", "C"}},
			{Type: AssertCount, Count: 3},
		},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "assertion[0] order")
	assert.Equal(t, []string{"B", "C", "A"}, result.Trace[0].Order)
}

func TestRun_CheckNameOutcomes(t *testing.T) {
	s := &Scenario{
		Name:        "check_name",
		Description: "check_name reports TAKEN and FREE",
		Setup:       []string{"Report"},
		Flow: []FlowStep{
			{Op: OpCheckName, Name: "  Report  ", Expect: OutcomeTaken},
			{Op: OpCheckName, Name: "Other"},
			{Op: OpCheckName, Task: "Report", Name: "Report"},
		},
		Assertions: []Assertion{{Type: AssertCount, Count: 1}},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, OutcomeTaken, result.Trace[0].Outcome)
	assert.Equal(t, OutcomeFree, result.Trace[1].Outcome)
	assert.Equal(t, OutcomeFree, result.Trace[2].Outcome)
}

func TestRun_DuplicateSetupIsAnError(t *testing.T) {
	s := &Scenario{
		Name:        "dup",
		Description: "setup names must be unique",
		Setup:       []string{"A", "A"},
		Flow:        []FlowStep{{Op: OpCreate, Name: "B", Cost: 1, Due: "2025-01-01"}},
		Assertions:  []Assertion{{Type: AssertCount, Count: 2}},
	}

	_, err := Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute setup")
}

func TestRun_SequentialIDs(t *testing.T) {
	// Unknown names are passed through as ids, so setup ids are addressable.
	s := &Scenario{
		Name:        "by_id",
		Description: "setup tasks are numbered task-1, task-2, ...",
		Setup:       []string{"A", "B", "C"},
		Flow:        []FlowStep{{Op: OpMove, Task: "task-3", Rank: 1}},
		Assertions:  []Assertion{{Type: AssertOrder, Names: []string{"C", "A", "B"}}},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}
