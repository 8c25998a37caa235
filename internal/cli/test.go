package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/clausal/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool
	Filter string
}

// ScenarioResult is the outcome of one scenario.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden"` // "match", "updated", "differs" or "none"
	Errors []string `json:"errors,omitempty"`
}

// TestResult summarizes a test run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

func (r TestResult) writeText(w io.Writer) error {
	for _, s := range r.Scenarios {
		status := "PASS"
		if !s.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(w, "%s  %s\n", status, s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "      %s\n", e)
		}
	}
	_, err := fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", r.Passed, r.Failed, r.Total)
	return err
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run YAML scenarios and compare their traces",
		Long: `Run every scenario (*.yaml, *.yml) in the directory, check its
expectations and compare its trace with golden/<name>.golden next to the
scenarios. Scenarios without a golden file are checked against their
expectations only.

Examples:
  clausal test scenarios/
  clausal test scenarios/ --filter 'family*'
  clausal test scenarios/ --update`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden files from this run")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose name matches this glob")

	return cmd
}

func runTest(opts *TestOptions, dir string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return reportError(f, WrapExitError(ExitCommandError, "invalid filter", err))
		}
	}
	scenarios, err := harness.LoadDir(dir)
	if err != nil {
		return reportError(f, WrapExitError(ExitCommandError, "failed to load scenarios", err))
	}

	result := TestResult{Scenarios: []ScenarioResult{}}
	goldenDir := filepath.Join(dir, "golden")
	for _, sc := range scenarios {
		if opts.Filter != "" {
			if ok, _ := filepath.Match(opts.Filter, sc.Name); !ok {
				continue
			}
		}
		f.VerboseLog("running %s", sc.Name)

		sr := ScenarioResult{Name: sc.Name, Golden: "none"}
		res, err := harness.RunContext(ctx, sc)
		if err != nil {
			sr.Errors = append(sr.Errors, err.Error())
		} else {
			sr.Errors = append(sr.Errors, res.Errors...)
			if err := checkGolden(&sr, goldenDir, sc.Name, res.Trace, opts.Update); err != nil {
				return reportError(f, err)
			}
		}
		sr.Pass = len(sr.Errors) == 0

		result.Total++
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, sr)
		slog.Debug("scenario finished", "scenario", sc.Name, "pass", sr.Pass, "golden", sr.Golden)
	}

	if result.Failed > 0 {
		msg := fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total)
		if err := f.Failure(ErrCodeTestFailed, msg, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return f.Success(result)
}

// checkGolden compares a trace with its golden file, or rewrites the file
// when update is set.
func checkGolden(sr *ScenarioResult, dir, name string, trace []harness.TraceEvent, update bool) error {
	got, err := harness.MarshalTrace(name, trace)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode trace", err)
	}
	path := filepath.Join(dir, name+".golden")
	if update {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return WrapExitError(ExitCommandError, "failed to write golden file", err)
		}
		if err := os.WriteFile(path, got, 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write golden file", err)
		}
		sr.Golden = "updated"
		return nil
	}
	want, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return WrapExitError(ExitCommandError, "failed to read golden file", err)
	}
	if bytes.Equal(bytes.TrimSpace(want), bytes.TrimSpace(got)) {
		sr.Golden = "match"
		return nil
	}
	sr.Golden = "differs"
	sr.Errors = append(sr.Errors, fmt.Sprintf("trace differs from %s (run with --update to accept)", path))
	return nil
}
