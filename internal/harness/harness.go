package harness

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/roach88/clausal/internal/engine"
	"github.com/roach88/clausal/internal/reader"
	"github.com/roach88/clausal/internal/stdlib"
	"github.com/roach88/clausal/internal/term"
	"github.com/roach88/clausal/internal/testutil"
	"github.com/roach88/clausal/internal/theory"
)

// epoch is the frozen wall time scenarios run at.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// harness holds the per-run state.
type harness struct {
	solver *engine.Solver
	reader *reader.Reader
	out    *bytes.Buffer
	result *Result

	query    int
	queryID  string
	eventSeq int64
	warnings []string
}

// Run executes a scenario on a fresh solver and checks its expectations.
// The returned error reports a scenario that could not be run at all (bad
// source, bad flags); failed expectations are recorded in the Result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a context that bounds every query.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	h := &harness{
		reader: reader.New(),
		out:    &bytes.Buffer{},
		result: NewResult(),
	}

	kb, err := h.consult(scenario)
	if err != nil {
		return nil, err
	}
	flags, err := scenarioFlags(scenario.Flags)
	if err != nil {
		return nil, err
	}

	clock := testutil.NewClock(epoch, 0)
	h.solver = engine.New(kb,
		engine.WithLibrary(stdlib.Default()),
		engine.WithFlags(flags),
		engine.WithMaxSteps(scenario.MaxSteps),
		engine.WithOutput(h.out),
		engine.WithWarnings(h.warn),
		engine.WithQueryIDGenerator(engine.NewFixedGenerator(scenario.Name)),
		engine.WithNow(clock.Now),
	)
	if err := h.solver.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize %s: %w", scenario.Name, err)
	}
	h.out.Reset()
	h.warnings = nil
	h.result.Trace = h.result.Trace[:0]

	for i, q := range scenario.Queries {
		qr, err := h.runQuery(ctx, i, q)
		if err != nil {
			return nil, fmt.Errorf("queries[%d]: %w", i, err)
		}
		h.result.Queries = append(h.result.Queries, qr)
		if q.Expect != nil {
			for _, msg := range checkExpect(q.Expect, qr) {
				h.result.AddError(fmt.Sprintf("queries[%d] %s: %s", i, q.Goal, msg))
			}
		}
	}
	return h.result, nil
}

func (h *harness) consult(s *Scenario) (*theory.Theory, error) {
	var clauses []*term.Clause
	if s.Theory != "" {
		cs, err := h.reader.ReadClauses(strings.NewReader(s.Theory))
		if err != nil {
			return nil, fmt.Errorf("theory: %w", err)
		}
		clauses = append(clauses, cs...)
	}
	for _, path := range s.Consult {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("consult: %w", err)
		}
		cs, err := h.reader.ReadClauses(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("consult %s: %w", path, err)
		}
		clauses = append(clauses, cs...)
	}
	return theory.New(clauses...)
}

func scenarioFlags(in map[string]string) (engine.Flags, error) {
	flags := engine.DefaultFlags()
	for name, v := range in {
		value := term.Atom(v)
		if !engine.ValidFlag(name, value) {
			return nil, fmt.Errorf("flags: invalid value %q for %s", v, name)
		}
		flags = flags.Set(name, value)
	}
	return flags, nil
}

func (h *harness) warn(w engine.Warning) {
	msg := w.String()
	h.warnings = append(h.warnings, msg)
	h.record(TraceEvent{Type: EventWarning, Message: msg})
}

func (h *harness) record(ev TraceEvent) {
	h.eventSeq++
	ev.Query = h.query
	ev.QueryID = h.queryID
	ev.Seq = h.eventSeq
	h.result.Trace = append(h.result.Trace, ev)
}

func (h *harness) runQuery(ctx context.Context, i int, q Query) (QueryResult, error) {
	parsed, err := h.reader.ReadQuery(q.Goal)
	if err != nil {
		return QueryResult{}, err
	}
	var opts []engine.QueryOption
	if q.Timeout != "" {
		d, err := time.ParseDuration(q.Timeout)
		if err != nil {
			return QueryResult{}, err
		}
		opts = append(opts, engine.WithTimeout(d))
	}
	opts = append(opts, engine.WithVars(parsed.Vars))
	limit := q.MaxSolutions
	if limit == 0 {
		limit = DefaultMaxSolutions
	}

	h.out.Reset()
	h.warnings = nil
	h.eventSeq = 0
	h.query = i

	sols := h.solver.Solve(ctx, parsed.Goal, opts...)
	h.queryID = sols.QueryID()
	qr := QueryResult{Goal: q.Goal, QueryID: sols.QueryID()}
	yes := 0
	for sol := range sols.All() {
		ev := TraceEvent{Type: EventSolution, Kind: sol.Kind.String()}
		qr.Outcome = sol.Kind.String()
		switch sol.Kind {
		case engine.KindYes:
			b := bindings(sol)
			qr.Solutions = append(qr.Solutions, b)
			ev.Bindings = b
			yes++
		default:
			qr.Err = sol.Err
			if sol.Err != nil {
				ev.Message = sol.Err.Error()
			}
		}
		h.record(ev)
		if yes >= limit {
			break
		}
	}
	if h.out.Len() > 0 {
		h.record(TraceEvent{Type: EventOutput, Message: h.out.String()})
	}
	qr.Output = h.out.String()
	qr.Warnings = h.warnings
	qr.Steps = sols.Steps()
	return qr, nil
}

// bindings formats a Yes solution's bindings by variable name.
func bindings(sol engine.Solution) map[string]string {
	out := map[string]string{}
	for _, b := range sol.Bindings() {
		out[b.Name] = term.Format(b.Value)
	}
	return out
}
