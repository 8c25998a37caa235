package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"failure", NewExitError(ExitFailure, "no solutions"), ExitFailure},
		{"command error", NewExitError(ExitCommandError, "bad"), ExitCommandError},
		{"wrapped", fmt.Errorf("outer: %w", NewExitError(ExitFailure, "inner")), ExitFailure},
		{"plain error", errors.New("unknown flag"), ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Wrap(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to save", cause)
	assert.Equal(t, "failed to save: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
}

func TestOutputFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]int{"n": 1}))
	assert.JSONEq(t, `{"status":"ok","data":{"n":1}}`, buf.String())

	buf.Reset()
	require.NoError(t, f.Error(ErrCodeStore, "locked", nil))
	assert.JSONEq(t, `{"status":"error","error":{"code":"E004","message":"locked"}}`, buf.String())

	buf.Reset()
	require.NoError(t, f.Failure(ErrCodeNoSolution, "no solutions", []int{}))
	assert.JSONEq(t, `{"status":"error","data":[],"error":{"code":"E005","message":"no solutions"}}`, buf.String())
}

func TestOutputFormatter_Text(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &out, ErrWriter: &errOut}

	require.NoError(t, f.Success("done"))
	assert.Equal(t, "done\n", out.String())

	require.NoError(t, f.Error(ErrCodeGeneric, "oops", "detail"))
	assert.Equal(t, "Error [E001]: oops\n", errOut.String(), "details only in verbose mode")

	f.VerboseLog("hidden")
	assert.NotContains(t, errOut.String(), "hidden")
	f.Verbose = true
	f.VerboseLog("shown %d", 1)
	assert.Contains(t, errOut.String(), "shown 1\n")
}

func TestAnswer(t *testing.T) {
	assert.Equal(t, "true", Answer{}.String())

	a := Answer{{Name: "X", Value: "1"}, {Name: "Y", Value: "f(a)"}}
	assert.Equal(t, "X = 1, Y = f(a)", a.String())
	data, err := a.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"X":"1","Y":"f(a)"}`, string(data))
}
