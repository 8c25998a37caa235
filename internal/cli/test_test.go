package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clausal/internal/testutil"
)

const passingScenario = `name: likes
theory: |
  likes(mary, wine).
  likes(john, wine).
queries:
  - goal: likes(Who, wine)
    expect:
      solutions:
        - {Who: mary}
        - {Who: john}
`

const failingScenario = `name: wrong
theory: |
  p(1).
queries:
  - goal: p(X)
    expect:
      solutions:
        - {X: "2"}
`

func TestTest_UpdateThenMatch(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{"likes.yaml": passingScenario})

	out, err := execute(t, "", "test", "--update", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS  likes")
	golden, err := os.ReadFile(filepath.Join(dir, "golden", "likes.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"likes"`)

	out, err = execute(t, "", "--format", "json", "test", dir)
	require.NoError(t, err)
	var data TestResult
	decodeResponse(t, out, &data)
	require.Len(t, data.Scenarios, 1)
	assert.Equal(t, "match", data.Scenarios[0].Golden)
	assert.Equal(t, 1, data.Passed)
}

func TestTest_GoldenDiffers(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"likes.yaml":          passingScenario,
		"golden/likes.golden": `{"scenario_name":"likes","trace":[]}`,
	})

	out, err := execute(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL  likes")
	assert.Contains(t, out, "trace differs")
}

func TestTest_FailedExpectation(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"likes.yaml": passingScenario,
		"wrong.yaml": failingScenario,
	})

	out, err := execute(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "PASS  likes")
	assert.Contains(t, out, "FAIL  wrong")
	assert.Contains(t, out, "solution 1: expected {X=2}, got {X=1}")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestTest_Filter(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"likes.yaml": passingScenario,
		"wrong.yaml": failingScenario,
	})

	out, err := execute(t, "", "test", "--filter", "lik*", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	_, err = execute(t, "", "test", "--filter", "[", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_MissingDir(t *testing.T) {
	_, err := execute(t, "", "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
