package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_TestCommand(t *testing.T) {
	h := newHarness(t)

	t.Run("passing filter", func(t *testing.T) {
		res := h.run("test", "testdata/scenarios", "--filter", "app*")
		require.Equal(t, ExitSuccess, res.code, res.stderr)
		assert.Contains(t, res.stdout, "PASS  append")
		assert.Contains(t, res.stdout, "1 passed, 0 failed, 1 total")
	})

	t.Run("failure reported once", func(t *testing.T) {
		res := h.run("test", "testdata/scenarios", "--format", "json")
		assert.Equal(t, ExitFailure, res.code)

		var resp struct {
			Status string     `json:"status"`
			Data   TestResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, 2, resp.Data.Total)
		assert.Equal(t, 1, resp.Data.Passed)
		require.Len(t, resp.Data.Scenarios, 2)
		assert.Equal(t, "append", resp.Data.Scenarios[0].Name)
		assert.False(t, resp.Data.Scenarios[1].Pass)
		assert.NotEmpty(t, resp.Data.Scenarios[1].Errors)
	})

	t.Run("no matches", func(t *testing.T) {
		res := h.run("test", "testdata/scenarios", "--filter", "zzz*")
		require.Equal(t, ExitSuccess, res.code)
		assert.Contains(t, res.stdout, "No scenarios found.")
	})

	t.Run("missing directory", func(t *testing.T) {
		res := h.run("test", filepath.Join(t.TempDir(), "nope"))
		assert.Equal(t, ExitCommandError, res.code)
		assert.Contains(t, res.stderr, "scenarios directory not found")
	})
}

func TestFindScenarioFiles_BadFilter(t *testing.T) {
	_, err := findScenarioFiles("testdata/scenarios", "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter")
}
