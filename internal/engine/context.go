package engine

import (
	"context"
	"io"
	"time"

	"github.com/roach88/clausal/internal/term"
	"github.com/roach88/clausal/internal/theory"
)

// Context is the value threaded through the state machine. It is never
// modified after construction: each transition derives a new Context that
// shares everything it does not change.
type Context struct {
	QueryID   string
	Query     term.Term
	QueryVars []term.Var

	Substitution *term.Substitution
	StaticKB     *theory.Theory
	DynamicKB    *theory.Theory
	ChoicePoints *ChoicePoint

	// Goals is the continuation: the goals still to prove, innermost first.
	Goals *Frame

	// Step counts transitions. Every state's context has Step equal to the
	// number of transitions taken so far.
	Step int64

	Library *Library
	Flags   Flags

	StartTime   time.Time
	MaxDuration time.Duration

	// Output receives write/1 and friends.
	Output io.Writer

	// Depth is 0 for a top-level query and grows by one for each nested
	// solve.
	Depth int

	rt *runtime
}

// runtime holds what a query and all of its nested solves share. It is
// mutable and lives outside the immutable part of the context.
type runtime struct {
	ctx     context.Context
	quota   *QuotaEnforcer
	metrics *Metrics
	now     func() time.Time
	warn    func(Warning)
}

// Frame is one pending goal. Frames link into an immutable continuation.
type Frame struct {
	Goal term.Term

	// CutBarrier is the choice-point chain at the time the clause (or call)
	// owning this goal was entered. Cut resets the chain to it.
	CutBarrier *ChoicePoint

	// Handlers are the catch/3 activations enclosing this goal, innermost
	// first.
	Handlers *Handler

	Next *Frame

	// commit frames implement if-then-else: reaching one discards the
	// choice points left by the condition.
	commit   bool
	commitTo *ChoicePoint
}

// Handler is an active catch(Goal, Catcher, Recovery).
type Handler struct {
	Catcher  term.Term
	Recovery term.Term

	// ChoicePoints and Substitution are restored when the handler fires.
	ChoicePoints *ChoicePoint
	Substitution *term.Substitution

	// Cont is what runs after the recovery goal.
	Cont *Frame

	Parent *Handler
}

// OccursCheck reports the occurs_check flag.
func (c *Context) OccursCheck() bool { return c.Flags.OccursCheck() }

// Elapsed returns the time since the query started.
func (c *Context) Elapsed() time.Duration {
	return c.rt.now().Sub(c.StartTime)
}

// Warn reports a non-fatal condition to the solver's warning sink.
func (c *Context) Warn(msg string, culprit term.Term) {
	if c.rt != nil && c.rt.warn != nil {
		c.rt.warn(Warning{QueryID: c.QueryID, Message: msg, Culprit: culprit})
	}
}

// advance returns a copy of c for the next transition.
func (c *Context) advance() *Context {
	out := *c
	out.Step++
	return &out
}

// push builds a frame for goal in front of next.
func push(goal term.Term, barrier *ChoicePoint, handlers *Handler, next *Frame) *Frame {
	return &Frame{Goal: goal, CutBarrier: barrier, Handlers: handlers, Next: next}
}
