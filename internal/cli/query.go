package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/clausal/internal/engine"
	"github.com/roach88/clausal/internal/term"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	storeFlags
	Max     int
	Timeout time.Duration
}

// Binding is a formatted variable binding.
type Binding struct {
	Name  string
	Value string
}

// Answer is the bindings of one Yes solution in query order. It encodes as
// a JSON object.
type Answer []Binding

// MarshalJSON encodes the answer as {"Var": "value", ...}.
func (a Answer) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(a))
	for _, b := range a {
		m[b.Name] = b.Value
	}
	return json.Marshal(m)
}

func (a Answer) String() string {
	if len(a) == 0 {
		return "true"
	}
	parts := make([]string, len(a))
	for i, b := range a {
		parts[i] = b.Name + " = " + b.Value
	}
	return strings.Join(parts, ", ")
}

// QueryOutput is the result of one query.
type QueryOutput struct {
	Goal      string   `json:"goal"`
	QueryID   string   `json:"query_id"`
	Solutions []Answer `json:"solutions"`
	Outcome   string   `json:"outcome"`
	Error     string   `json:"error,omitempty"`
	Output    string   `json:"output,omitempty"`
	Steps     int64    `json:"steps"`

	haltCode int
}

func (q QueryOutput) writeText(w io.Writer) error {
	for _, a := range q.Solutions {
		if _, err := fmt.Fprintf(w, "%s.\n", a); err != nil {
			return err
		}
	}
	var err error
	switch q.Outcome {
	case engine.KindNo.String():
		if len(q.Solutions) == 0 {
			_, err = fmt.Fprintln(w, "false.")
		}
	case engine.KindError.String():
		_, err = fmt.Fprintf(w, "ERROR: %s\n", q.Error)
	case engine.KindHalt.String():
		if q.haltCode != 0 {
			_, err = fmt.Fprintf(w, "halted: %s\n", q.Error)
		}
	}
	return err
}

// exitError maps the outcome of a query to the command's exit status.
func (q QueryOutput) exitError() *ExitError {
	switch q.Outcome {
	case engine.KindError.String():
		return NewExitError(ExitFailure, q.Error)
	case engine.KindHalt.String():
		if q.haltCode == 0 {
			return nil
		}
		return NewExitError(ExitFailure, q.Error)
	}
	if len(q.Solutions) == 0 {
		return NewExitError(ExitFailure, "no solutions")
	}
	return nil
}

func (q QueryOutput) errorCode() string {
	if len(q.Solutions) == 0 && q.Outcome == engine.KindNo.String() {
		return ErrCodeNoSolution
	}
	return ErrCodeUncaught
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <goal> [files...]",
		Short: "Run a goal and print its solutions",
		Long: `Consult the given files (after the saved theory when a database is
selected) and print every solution of the goal.

Exit codes:
  0 - At least one solution, or halt/0
  1 - No solutions, an uncaught error, or halt with a non-zero code
  2 - Command error (bad goal syntax, unreadable files, database errors)

Examples:
  clausal query 'ancestor(tom, X)' family.pl
  clausal query --max 1 'member(X, [a,b,c])'
  clausal query --db clausal.db --theory family 'parent(P, ann)'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Max, "max", 0, "stop after this many solutions (0 = all)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "per-query timeout (0 = config or engine default)")
	opts.storeFlags.register(cmd)

	return cmd
}

func runQuery(opts *QueryOptions, goal string, files []string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	// Output predicates write straight to stdout in text mode; JSON mode
	// collects their text into the response.
	var captured bytes.Buffer
	var output io.Writer = cmd.OutOrStdout()
	if opts.Format == "json" {
		output = &captured
	}

	s, err := openSession(ctx, opts.RootOptions, opts.storeFlags, sessionOptions{files: files, output: output})
	if err != nil {
		return reportError(f, err)
	}
	defer s.Close()

	var qopts []engine.QueryOption
	if opts.Timeout > 0 {
		qopts = append(qopts, engine.WithTimeout(opts.Timeout))
	}
	out, err := s.run(ctx, goal, opts.Max, qopts...)
	if err != nil {
		return reportError(f, err)
	}
	out.Output = captured.String()

	if exitErr := out.exitError(); exitErr != nil {
		if err := f.Failure(out.errorCode(), exitErr.Message, out); err != nil {
			return err
		}
		return exitErr
	}
	return f.Success(out)
}

// run parses and solves a goal, collecting up to max Yes answers (all when
// max <= 0), and records it in the history.
func (s *session) run(ctx context.Context, goal string, max int, qopts ...engine.QueryOption) (QueryOutput, error) {
	q, err := s.reader.ReadQuery(goal)
	if err != nil {
		return QueryOutput{}, WrapExitError(ExitCommandError, "invalid goal", err)
	}
	start := time.Now()
	sols := s.solver.Solve(ctx, q.Goal, append(qopts, engine.WithVars(q.Vars))...)
	out := QueryOutput{Goal: term.Format(q.Goal), QueryID: sols.QueryID(), Solutions: []Answer{}}
	for sol := range sols.All() {
		out.observe(sol)
		if max > 0 && len(out.Solutions) >= max {
			break
		}
	}
	out.Steps = sols.Steps()
	s.record(ctx, out, sols.Seq(), time.Since(start))
	return out, nil
}

// observe adds one solution to the output.
func (q *QueryOutput) observe(sol engine.Solution) {
	q.Outcome = sol.Kind.String()
	switch sol.Kind {
	case engine.KindYes:
		q.Solutions = append(q.Solutions, answerOf(sol))
	case engine.KindHalt, engine.KindError:
		if sol.Err != nil {
			q.Error = sol.Err.Error()
		}
		q.haltCode = haltCode(sol.Err)
	}
}

func answerOf(sol engine.Solution) Answer {
	a := Answer{}
	for _, b := range sol.Bindings() {
		a = append(a, Binding{Name: b.Name, Value: term.Format(b.Value)})
	}
	return a
}

// haltCode returns the code requested by halt/0,1, or 1 for any other stop.
func haltCode(err error) int {
	var he *engine.HaltError
	if errors.As(err, &he) && he.Cause == nil {
		return he.Code
	}
	return 1
}

// requestedHalt reports whether err comes from halt/0,1.
func requestedHalt(err error) bool {
	var he *engine.HaltError
	return errors.As(err, &he) && he.Cause == nil
}

// reportError prints err in the configured format and returns it as an
// ExitError.
func reportError(f *OutputFormatter, err error) error {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = WrapExitError(ExitCommandError, "command failed", err)
	}
	code := ErrCodeGeneric
	switch exitErr.Code {
	case ExitFailure:
		code = ErrCodeUncaught
	case ExitCommandError:
		if strings.Contains(exitErr.Error(), "syntax error") {
			code = ErrCodeSyntax
		} else if strings.Contains(exitErr.Message, "not found") {
			code = ErrCodeNotFound
		} else if strings.Contains(exitErr.Message, "database") {
			code = ErrCodeStore
		}
	}
	if f.Format == "json" {
		if err := f.Error(code, exitErr.Error(), nil); err != nil {
			return err
		}
	}
	return exitErr
}
