package engine

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/roach88/clausal/internal/term"
)

// Kind classifies a solution.
type Kind uint8

const (
	// KindYes is a successful derivation.
	KindYes Kind = iota + 1
	// KindNo means the search space is exhausted.
	KindNo
	// KindHalt means the solve was stopped: halt/0,1, an uncaught system
	// error, a resource limit or cancellation.
	KindHalt
	// KindError means the query raised an exception nobody caught.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindYes:
		return "yes"
	case KindNo:
		return "no"
	case KindHalt:
		return "halt"
	case KindError:
		return "error"
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Solution is one outcome of a query.
type Solution struct {
	Kind  Kind
	Query term.Term

	// Substitution holds the bindings of the query's named variables (Yes
	// only). For nested solves it is the full substitution.
	Substitution *term.Substitution

	// Err is set for Halt and Error.
	Err error

	QueryID string
	Vars    []term.Var

	ctx *Context
}

// Binding is a query variable and its value in a solution.
type Binding struct {
	Name  string
	Value term.Term
}

// Bindings returns the bound query variables in order of first appearance.
func (s Solution) Bindings() []Binding {
	var out []Binding
	for _, v := range s.Vars {
		if val, ok := s.Substitution.Lookup(v); ok {
			out = append(out, Binding{Name: v.Name, Value: val})
		}
	}
	return out
}

// Solutions enumerates the solutions of one query. It is single-pass and
// not safe for concurrent use; ask the Solver again to restart.
type Solutions struct {
	state  State
	step   int64
	done   bool
	solver *Solver // nil for nested solves

	queryID string
	seq     int64
	count   int
}

func newSolutions(c *Context, solver *Solver, seq int64) *Solutions {
	return &Solutions{state: &Init{ctx: c}, solver: solver, queryID: c.QueryID, seq: seq}
}

// QueryID returns the ID the query is logged under.
func (s *Solutions) QueryID() string { return s.queryID }

// Seq returns the query's position in the solver's history.
func (s *Solutions) Seq() int64 { return s.seq }

// Steps returns the number of transitions taken so far.
func (s *Solutions) Steps() int64 { return s.step }

// State returns the current state of the machine.
func (s *Solutions) State() State { return s.state }

// HasMore reports whether Next may return another solution.
func (s *Solutions) HasMore() bool { return !s.done }

// Next runs the state machine up to the next terminal state. It returns
// false once the enumeration is over. A final Yes with no alternatives left
// ends the enumeration without a trailing No.
func (s *Solutions) Next() (Solution, bool) {
	if s.done {
		return Solution{}, false
	}
	for {
		c := s.state.Context()
		if c.Step != s.step {
			panic(fmt.Sprintf("engine: state %s has step %d, expected %d", s.state.Name(), c.Step, s.step))
		}
		if err := s.checkLimits(c); err != nil {
			return s.emit(endHalt(c, err))
		}
		next := s.state.Next()
		s.step++
		s.state = next
		c.rt.metrics.transition(next.Name())
		if end, ok := next.(*End); ok {
			return s.emit(end)
		}
	}
}

// All returns the remaining solutions as an iterator.
func (s *Solutions) All() iter.Seq[Solution] {
	return func(yield func(Solution) bool) {
		for {
			sol, ok := s.Next()
			if !ok || !yield(sol) {
				return
			}
		}
	}
}

func (s *Solutions) checkLimits(c *Context) error {
	rt := c.rt
	if err := rt.ctx.Err(); err != nil {
		return fmt.Errorf("query %s cancelled: %w", c.QueryID, err)
	}
	if c.MaxDuration > 0 {
		if elapsed := c.Elapsed(); elapsed > c.MaxDuration {
			return &TimeoutError{QueryID: c.QueryID, MaxDuration: c.MaxDuration, Elapsed: elapsed}
		}
	}
	return rt.quota.Check(c.QueryID)
}

func (s *Solutions) emit(end *End) (Solution, bool) {
	c := end.ctx
	sol := end.Solution
	sol.QueryID = c.QueryID
	sol.ctx = c
	if end.Solution.Kind != KindYes || !end.HasOpenAlternatives {
		s.done = true
	}
	if c.Depth > 0 {
		return sol, true
	}

	sol.Vars = c.QueryVars
	if sol.Kind == KindYes {
		sol.Substitution = sol.Substitution.Restrict(c.QueryVars)
		s.count++
	}
	s.solver.commit(c)
	c.rt.metrics.solution(sol.Kind)

	switch sol.Kind {
	case KindHalt:
		slog.Warn("query halted",
			"query_id", c.QueryID,
			"step", c.Step,
			"error", sol.Err,
		)
	case KindError:
		slog.Warn("query raised an uncaught exception",
			"query_id", c.QueryID,
			"step", c.Step,
			"error", sol.Err,
		)
	default:
		slog.Debug("solution found",
			"query_id", c.QueryID,
			"kind", sol.Kind.String(),
			"step", c.Step,
		)
	}
	if s.done {
		elapsed := c.Elapsed()
		c.rt.metrics.observeDuration(elapsed)
		slog.Debug("query finished",
			"query_id", c.QueryID,
			"solutions", s.count,
			"steps", c.rt.quota.Current(),
			"duration_ms", elapsed.Milliseconds(),
		)
	}
	return sol, true
}
