package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clausal/internal/testutil"
)

func TestQuery_Solutions(t *testing.T) {
	_, file := familyDir(t)

	out, err := execute(t, "", "query", "parent(tom, X)", file)
	require.NoError(t, err)
	assert.Equal(t, "X = bob.\nX = liz.\n", out)
}

func TestQuery_Max(t *testing.T) {
	_, file := familyDir(t)

	out, err := execute(t, "", "query", "--max", "1", "parent(tom, X)", file)
	require.NoError(t, err)
	assert.Equal(t, "X = bob.\n", out)
}

func TestQuery_Conjunction(t *testing.T) {
	_, file := familyDir(t)

	out, err := execute(t, "", "query", "grandparent(G, C)", file)
	require.NoError(t, err)
	assert.Equal(t, "G = tom, C = ann.\n", out)
}

func TestQuery_NoSolutions(t *testing.T) {
	_, file := familyDir(t)

	out, err := execute(t, "", "query", "parent(ann, _)", file)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "false.\n", out)
}

func TestQuery_UncaughtError(t *testing.T) {
	out, err := execute(t, "", "query", "X is foo + 1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "ERROR: system_error")
	assert.Contains(t, out, "type_error(evaluable")
}

func TestQuery_Halt(t *testing.T) {
	out, err := execute(t, "", "query", "halt")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = execute(t, "", "query", "halt(3)")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "halted: halt(3)\n", out)
}

func TestQuery_Output(t *testing.T) {
	out, err := execute(t, "", "query", "write(hello), nl")
	require.NoError(t, err)
	assert.Equal(t, "hello\ntrue.\n", out)
}

func TestQuery_SyntaxError(t *testing.T) {
	_, err := execute(t, "", "query", "foo(")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "syntax error")
}

func TestQuery_MissingFile(t *testing.T) {
	_, err := execute(t, "", "query", "true", filepath.Join(t.TempDir(), "nope.pl"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "file not found")
}

func TestQuery_BadSource(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{"bad.pl": "p(a.\n"})

	_, err := execute(t, "", "query", "true", filepath.Join(dir, "bad.pl"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "bad.pl")
}

func TestQuery_JSON(t *testing.T) {
	_, file := familyDir(t)

	out, err := execute(t, "", "--format", "json", "query", "parent(tom, X), write(X)", file)
	require.NoError(t, err)

	var data struct {
		QueryID   string              `json:"query_id"`
		Solutions []map[string]string `json:"solutions"`
		Outcome   string              `json:"outcome"`
		Output    string              `json:"output"`
		Steps     int64               `json:"steps"`
	}
	resp := decodeResponse(t, out, &data)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []map[string]string{{"X": "bob"}, {"X": "liz"}}, data.Solutions)
	assert.Equal(t, "yes", data.Outcome)
	assert.Equal(t, "bobliz", data.Output)
	assert.NotEmpty(t, data.QueryID)
	assert.Positive(t, data.Steps)
}

func TestQuery_JSONFailure(t *testing.T) {
	out, err := execute(t, "", "--format", "json", "query", "fail")
	require.Error(t, err)

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNoSolution, resp.Error.Code)
}

func TestQuery_JSONSyntaxError(t *testing.T) {
	out, err := execute(t, "", "--format", "json", "query", "foo(")
	require.Error(t, err)

	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeSyntax, resp.Error.Code)
}

func TestQuery_InvalidFormat(t *testing.T) {
	_, err := execute(t, "", "--format", "xml", "query", "true")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestQuery_ConfigConsult(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"family.pl":   familySource,
		"clausal.cue": "consult: [\"family.pl\"]\n",
	})

	out, err := execute(t, "", "--config", filepath.Join(dir, "clausal.cue"), "query", "parent(bob, X)")
	require.NoError(t, err)
	assert.Equal(t, "X = ann.\n", out)
}

func TestQuery_ConfigMaxSteps(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"loop.pl":     "loop :- loop.\n",
		"clausal.cue": "consult: [\"loop.pl\"]\nmax_steps: 200\n",
	})

	out, err := execute(t, "", "--config", filepath.Join(dir, "clausal.cue"), "query", "loop")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "exceeded max steps")
}

func TestQuery_ConfigMissing(t *testing.T) {
	_, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "none.cue"), "query", "true")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "config file not found")
}

func TestQuery_ConfigInvalid(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{"clausal.cue": "unknown: \"sometimes\"\n"})

	_, err := execute(t, "", "--config", filepath.Join(dir, "clausal.cue"), "query", "true")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid configuration")
}
