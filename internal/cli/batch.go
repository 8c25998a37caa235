package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/clausal/internal/term"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	storeFlags
	Parallel int
	Max      int
}

// BatchOutput holds the results of a batch in goal order.
type BatchOutput struct {
	Results   []QueryOutput `json:"results"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

func (b BatchOutput) writeText(w io.Writer) error {
	for _, r := range b.Results {
		fmt.Fprintf(w, "?- %s.\n", r.Goal)
		if err := r.writeText(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d succeeded, %d failed\n", b.Succeeded, b.Failed)
	return err
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <goals-file> [files...]",
		Short: "Run a file of goals concurrently",
		Long: `Run each goal of the goals file (one per line, % starts a comment)
against the same knowledge base snapshot. Changes a goal makes to the
dynamic database are not seen by the others.

Exit code 1 when any goal has no solution or raises an error.

Examples:
  clausal batch goals.txt family.pl
  clausal batch --parallel 8 --max 1 goals.txt --db clausal.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Parallel, "parallel", 0, "goals solved at once (0 = config, default 4)")
	cmd.Flags().IntVar(&opts.Max, "max", 0, "stop each goal after this many solutions (0 = all)")
	opts.storeFlags.register(cmd)

	return cmd
}

func runBatch(opts *BatchOptions, goalsFile string, files []string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	lines, err := readGoalLines(goalsFile)
	if err != nil {
		return reportError(f, err)
	}

	// Concurrent goals would interleave their output, so it is discarded.
	s, err := openSession(ctx, opts.RootOptions, opts.storeFlags, sessionOptions{files: files})
	if err != nil {
		return reportError(f, err)
	}
	defer s.Close()

	goals := make([]term.Term, len(lines))
	for i, line := range lines {
		q, err := s.reader.ReadQuery(line)
		if err != nil {
			return reportError(f, WrapExitError(ExitCommandError, fmt.Sprintf("%s: goal %d", goalsFile, i+1), err))
		}
		goals[i] = q.Goal
	}

	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = opts.Config.Parallel
	}
	start := time.Now()
	results, err := s.solver.RunBatch(ctx, goals, parallel, opts.Max)
	if err != nil {
		return reportError(f, WrapExitError(ExitCommandError, "batch interrupted", err))
	}
	elapsed := time.Since(start)

	out := BatchOutput{Results: make([]QueryOutput, len(results))}
	for i, res := range results {
		qo := QueryOutput{Goal: term.Format(res.Goal), QueryID: res.QueryID, Solutions: []Answer{}, Steps: res.Steps}
		for _, sol := range res.Solutions {
			qo.observe(sol)
		}
		// Goals share the wall clock; each is recorded with the batch time.
		s.record(ctx, qo, res.Seq, elapsed)
		if qo.exitError() != nil {
			out.Failed++
		} else {
			out.Succeeded++
		}
		out.Results[i] = qo
	}

	if out.Failed > 0 {
		msg := fmt.Sprintf("%d of %d goals failed", out.Failed, len(results))
		if err := f.Failure(ErrCodeNoSolution, msg, out); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return f.Success(out)
}

// readGoalLines returns the non-blank, non-comment lines of a goals file.
func readGoalLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("file not found: %s", path))
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open goals", err)
	}
	defer file.Close()

	var lines []string
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read goals", err)
	}
	return lines, nil
}
