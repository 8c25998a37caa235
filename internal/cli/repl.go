package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/roach88/clausal/internal/engine"
	"github.com/roach88/clausal/internal/term"
)

// ReplOptions holds flags for the repl command.
type ReplOptions struct {
	*RootOptions
	storeFlags
	MetricsAddr string
}

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repl [files...]",
		Short: "Run goals interactively",
		Long: `Read goals from standard input and print their solutions. After an
answer with alternatives left, type ; for the next one or press enter to
stop. A goal may span lines; it ends at a line ending in a full stop.

halt. leaves the loop. halt(N) with N other than 0 leaves it with exit code 1.

Examples:
  clausal repl family.pl
  clausal repl --db clausal.db --metrics-addr localhost:9464`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	opts.storeFlags.register(cmd)

	return cmd
}

func runRepl(opts *ReplOptions, files []string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	f := &OutputFormatter{Format: "text", Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	so := sessionOptions{files: files, output: cmd.OutOrStdout()}
	if opts.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		so.engine = append(so.engine, engine.WithMetrics(engine.NewMetrics(reg)))
		_, stop, err := serveMetrics(opts.MetricsAddr, reg)
		if err != nil {
			return reportError(f, err)
		}
		defer stop()
	}

	s, err := openSession(ctx, opts.RootOptions, opts.storeFlags, so)
	if err != nil {
		return reportError(f, err)
	}
	defer s.Close()

	r := &repl{session: s, in: bufio.NewScanner(cmd.InOrStdin()), out: cmd.OutOrStdout()}
	return r.loop(ctx)
}

// serveMetrics exposes reg at /metrics until the returned stop is called.
// It returns the address it listens on.
func serveMetrics(addr string, reg *prometheus.Registry) (bound string, stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, WrapExitError(ExitCommandError, "failed to listen for metrics", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "error", err)
		}
	}()
	slog.Info("serving metrics", "addr", ln.Addr().String())

	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("metrics server shutdown", "error", err)
		}
	}, nil
}

// repl reads goals line by line and answers them one solution at a time.
type repl struct {
	session *session
	in      *bufio.Scanner
	out     io.Writer
}

func (r *repl) loop(ctx context.Context) error {
	for {
		fmt.Fprint(r.out, "?- ")
		goal, ok := r.readGoal()
		if !ok {
			fmt.Fprintln(r.out)
			return r.in.Err()
		}
		if goal == "" {
			continue
		}
		out, halted := r.solve(ctx, goal)
		if halted {
			if out.haltCode != 0 {
				return NewExitError(ExitFailure, out.Error)
			}
			return nil
		}
	}
}

// readGoal collects lines until one ends with a full stop. It returns false
// at end of input.
func (r *repl) readGoal() (string, bool) {
	var lines []string
	for r.in.Scan() {
		line := strings.TrimSpace(r.in.Text())
		if line == "" && len(lines) == 0 {
			return "", true
		}
		lines = append(lines, line)
		if strings.HasSuffix(line, ".") {
			return strings.Join(lines, " "), true
		}
		fmt.Fprint(r.out, "|    ")
	}
	if len(lines) > 0 {
		return strings.Join(lines, " "), true
	}
	return "", false
}

// solve answers one goal. It reports whether the goal halted.
func (r *repl) solve(ctx context.Context, goal string) (QueryOutput, bool) {
	s := r.session
	q, err := s.reader.ReadQuery(goal)
	if err != nil {
		fmt.Fprintf(r.out, "ERROR: %v\n", err)
		return QueryOutput{}, false
	}
	start := time.Now()
	sols := s.solver.Solve(ctx, q.Goal, engine.WithVars(q.Vars))
	out := QueryOutput{Goal: term.Format(q.Goal), QueryID: sols.QueryID(), Solutions: []Answer{}}
	defer func() { s.record(ctx, out, sols.Seq(), time.Since(start)) }()

	for {
		sol, ok := sols.Next()
		if !ok {
			return out, false
		}
		out.observe(sol)
		out.Steps = sols.Steps()
		switch sol.Kind {
		case engine.KindYes:
			ans := out.Solutions[len(out.Solutions)-1]
			if !sols.HasMore() {
				fmt.Fprintf(r.out, "%s.\n", ans)
				return out, false
			}
			fmt.Fprintf(r.out, "%s ", ans)
			if !r.more() {
				fmt.Fprintln(r.out, ".")
				return out, false
			}
		case engine.KindNo:
			fmt.Fprintln(r.out, "false.")
		case engine.KindError:
			fmt.Fprintf(r.out, "ERROR: %s\n", out.Error)
		case engine.KindHalt:
			// Limits and uncaught system errors stop the query, not the loop.
			if !requestedHalt(sol.Err) {
				fmt.Fprintf(r.out, "ERROR: %s\n", out.Error)
				return out, false
			}
			if out.haltCode != 0 {
				fmt.Fprintf(r.out, "halted: %s\n", out.Error)
			}
			return out, true
		}
	}
}

// more reads the user's reply to an answer: ";" asks for the next one.
func (r *repl) more() bool {
	if !r.in.Scan() {
		return false
	}
	return strings.TrimSpace(r.in.Text()) == ";"
}
