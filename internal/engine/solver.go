package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/clausal/internal/term"
	"github.com/roach88/clausal/internal/theory"
)

// DefaultMaxDuration bounds a query when no timeout is configured.
const DefaultMaxDuration = 30 * time.Second

// Solver answers queries against a static and a dynamic knowledge base.
//
// Each query works on the snapshot of both knowledge bases taken when it
// starts. Changes a query makes to the dynamic knowledge base (assert,
// retract) and to the flags are written back after each solution it
// reports, so later queries see them. Queries may run concurrently; the
// last one to report a solution wins the write-back.
type Solver struct {
	mu      sync.Mutex
	static  *theory.Theory
	dynamic *theory.Theory
	flags   Flags

	library     *Library
	maxDuration time.Duration
	maxSteps    int64
	output      io.Writer
	warn        func(Warning)
	metrics     *Metrics
	ids         QueryIDGenerator
	clock       *Clock
	now         func() time.Time
}

// Option configures a Solver.
type Option func(*Solver)

// WithDynamic sets the initial dynamic knowledge base.
func WithDynamic(t *theory.Theory) Option {
	return func(s *Solver) { s.dynamic = t }
}

// WithLibrary adds primitives on top of the engine's built-in control
// predicates.
func WithLibrary(l *Library) Option {
	return func(s *Solver) { s.library = s.library.Merge(l) }
}

// WithFlags overrides flag values.
func WithFlags(f Flags) Option {
	return func(s *Solver) {
		for name, v := range f {
			s.flags = s.flags.Set(name, v)
		}
	}
}

// WithMaxDuration sets the default per-query timeout. Zero disables it.
func WithMaxDuration(d time.Duration) Option {
	return func(s *Solver) { s.maxDuration = d }
}

// WithMaxSteps bounds the number of transitions per query. Zero, the
// default, means unlimited.
func WithMaxSteps(n int64) Option {
	return func(s *Solver) { s.maxSteps = n }
}

// WithOutput sets the writer used by output primitives.
func WithOutput(w io.Writer) Option {
	return func(s *Solver) { s.output = w }
}

// WithWarnings sets the sink for non-fatal warnings. The default logs them.
func WithWarnings(fn func(Warning)) Option {
	return func(s *Solver) { s.warn = fn }
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Solver) { s.metrics = m }
}

// WithQueryIDGenerator sets how queries are named.
func WithQueryIDGenerator(g QueryIDGenerator) Option {
	return func(s *Solver) { s.ids = g }
}

// WithClock sets the sequence clock for query history.
func WithClock(c *Clock) Option {
	return func(s *Solver) { s.clock = c }
}

// WithNow overrides the wall clock used for timeouts.
func WithNow(now func() time.Time) Option {
	return func(s *Solver) { s.now = now }
}

// New creates a Solver over static. A nil theory is empty.
func New(static *theory.Theory, opts ...Option) *Solver {
	if static == nil {
		static = theory.Empty()
	}
	s := &Solver{
		static:      static,
		dynamic:     theory.Empty(),
		flags:       DefaultFlags(),
		library:     Builtins(),
		maxDuration: DefaultMaxDuration,
		output:      io.Discard,
		warn:        logWarning,
		ids:         UUIDv7Generator{},
		clock:       NewClock(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func logWarning(w Warning) {
	slog.Warn("warning",
		"query_id", w.QueryID,
		"message", w.Message,
		"culprit", formatOrEmpty(w.Culprit),
	)
}

func formatOrEmpty(t term.Term) string {
	if t == nil {
		return ""
	}
	return term.Format(t)
}

// QueryOption configures a single query.
type QueryOption func(*queryConfig)

type queryConfig struct {
	timeout time.Duration
	vars    []term.Var
	hasVars bool
}

// WithTimeout overrides the solver's timeout for one query.
func WithTimeout(d time.Duration) QueryOption {
	return func(q *queryConfig) { q.timeout = d }
}

// WithVars names the variables reported in solutions. By default they are
// the named variables of the goal.
func WithVars(vars []term.Var) QueryOption {
	return func(q *queryConfig) { q.vars, q.hasVars = vars, true }
}

// Solve starts a query. Nothing runs until the first call to Next.
func (s *Solver) Solve(ctx context.Context, goal term.Term, opts ...QueryOption) *Solutions {
	cfg := queryConfig{timeout: s.maxDuration}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.hasVars {
		for _, v := range term.Vars(goal) {
			if !v.IsAnonymous() {
				cfg.vars = append(cfg.vars, v)
			}
		}
	}

	s.mu.Lock()
	static, dynamic, flags := s.static, s.dynamic, s.flags
	s.mu.Unlock()

	id := s.ids.Generate()
	seq := s.clock.Next()
	c := &Context{
		QueryID:     id,
		Query:       goal,
		QueryVars:   cfg.vars,
		StaticKB:    static,
		DynamicKB:   dynamic,
		Library:     s.library,
		Flags:       flags,
		StartTime:   s.now(),
		MaxDuration: cfg.timeout,
		Output:      s.output,
		rt: &runtime{
			ctx:     ctx,
			quota:   NewQuotaEnforcer(s.maxSteps),
			metrics: s.metrics,
			now:     s.now,
			warn:    s.warn,
		},
	}
	slog.Debug("query started",
		"query_id", id,
		"seq", seq,
		"goal", term.Format(goal),
	)
	return newSolutions(c, s, seq)
}

// commit writes a query's knowledge-base and flag changes back.
func (s *Solver) commit(c *Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.static, s.dynamic, s.flags = c.StaticKB, c.DynamicKB, c.Flags
}

// StaticKB returns the current static knowledge base.
func (s *Solver) StaticKB() *theory.Theory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.static
}

// DynamicKB returns the current dynamic knowledge base.
func (s *Solver) DynamicKB() *theory.Theory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dynamic
}

// Flags returns the current flags.
func (s *Solver) Flags() Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

// Library returns the solver's primitives.
func (s *Solver) Library() *Library { return s.library }

// Clock returns the query sequence clock.
func (s *Solver) Clock() *Clock { return s.clock }

// Initialize runs the directives of the static knowledge base in order,
// taking the first solution of each. A directive that fails is logged; one
// that raises or halts stops initialization with its error.
func (s *Solver) Initialize(ctx context.Context) error {
	for d := range s.StaticKB().Get(term.NewDirective(term.True)) {
		sols := s.Solve(ctx, d.Body, WithVars(nil))
		sol, _ := sols.Next()
		switch sol.Kind {
		case KindNo:
			slog.Warn("directive failed",
				"query_id", sols.QueryID(),
				"goal", term.Format(d.Body),
			)
		case KindHalt, KindError:
			return sol.Err
		}
	}
	return nil
}
