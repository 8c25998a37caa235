package engine

import (
	"slices"

	"github.com/roach88/clausal/internal/term"
)

// State is one node of the resolution state machine. Next derives the
// successor without changing the receiver's context, and the returned
// state's context has Step one higher than the receiver's. A
// PrimitiveExecution is the exception: its primitive's response stream is a
// cursor, so each Next consumes one response and calling it again yields the
// following one.
type State interface {
	Context() *Context
	Next() State
	Name() string
}

// State names, used for metrics and traces.
const (
	StateInit               = "init"
	StateGoalSelection      = "goal_selection"
	StatePrimitiveExecution = "primitive_execution"
	StateRuleSelection      = "rule_selection"
	StateRuleExecution      = "rule_execution"
	StateBacktracking       = "backtracking"
	StateException          = "exception"
	StateEnd                = "end"
)

// Init starts a query.
type Init struct{ ctx *Context }

func (s *Init) Context() *Context { return s.ctx }
func (s *Init) Name() string      { return StateInit }

func (s *Init) Next() State {
	c := s.ctx.advance()
	c.Goals = push(c.Query, nil, nil, nil)
	return &GoalSelection{ctx: c}
}

// GoalSelection takes the first pending goal. Control constructs are
// handled here; anything else is dispatched to a primitive or to the
// user's clauses. An empty continuation is a solution.
type GoalSelection struct{ ctx *Context }

func (s *GoalSelection) Context() *Context { return s.ctx }
func (s *GoalSelection) Name() string      { return StateGoalSelection }

func (s *GoalSelection) Next() State {
	c := s.ctx.advance()
	f := c.Goals
	if f == nil {
		return endYes(c)
	}
	if f.commit {
		c.ChoicePoints = f.commitTo
		c.Goals = f.Next
		return &GoalSelection{ctx: c}
	}

	goal := c.Substitution.Resolve(f.Goal)
	barrier := f.CutBarrier
	if _, isVar := f.Goal.(term.Var); isVar {
		// A goal given as a variable runs like call/1: cut inside it is local.
		barrier = c.ChoicePoints
	}
	switch g := goal.(type) {
	case term.Var:
		return raise(c, f, InstantiationError(g))
	case term.Integer, term.Real:
		return raise(c, f, TypeError("callable", g))
	case *term.Clause:
		goal = g.Struct()
	}
	f = &Frame{Goal: goal, CutBarrier: barrier, Handlers: f.Handlers, Next: f.Next}

	switch g := goal.(type) {
	case term.Atom:
		switch g {
		case term.True:
			c.Goals = f.Next
			return &GoalSelection{ctx: c}
		case term.Fail, term.False:
			return &Backtracking{ctx: c}
		case term.Cut:
			c.ChoicePoints = f.CutBarrier
			c.Goals = f.Next
			return &GoalSelection{ctx: c}
		}
	case *term.Struct:
		if st := s.control(c, f, g); st != nil {
			return st
		}
	}

	ind, _ := term.IndicatorOf(goal)
	if sig, prim, ok := c.Library.Lookup(ind); ok {
		req := &Request{Context: c, Signature: sig, Args: term.Args(goal)}
		return &PrimitiveExecution{ctx: c, frame: f, stream: prim(req)}
	}
	return &RuleSelection{ctx: c, frame: f}
}

// control handles the built-in control constructs. It returns nil for any
// other goal.
func (s *GoalSelection) control(c *Context, f *Frame, g *term.Struct) State {
	switch {
	case g.Functor == "," && len(g.Args) == 2:
		rest := push(g.Args[1], f.CutBarrier, f.Handlers, f.Next)
		c.Goals = push(g.Args[0], f.CutBarrier, f.Handlers, rest)
		return &GoalSelection{ctx: c}

	case g.Functor == ";" && len(g.Args) == 2:
		if cond, ok := c.Substitution.Resolve(g.Args[0]).(*term.Struct); ok && cond.Functor == "->" && len(cond.Args) == 2 {
			return ifThenElse(c, f, cond.Args[0], cond.Args[1], g.Args[1])
		}
		alt := push(g.Args[1], f.CutBarrier, f.Handlers, f.Next)
		n := *c
		n.ChoicePoints = branchChoice(c.ChoicePoints, c, alt)
		n.Goals = push(g.Args[0], f.CutBarrier, f.Handlers, f.Next)
		return &GoalSelection{ctx: &n}

	case g.Functor == "->" && len(g.Args) == 2:
		return ifThenElse(c, f, g.Args[0], g.Args[1], nil)

	case g.Functor == "catch" && len(g.Args) == 3:
		h := &Handler{
			Catcher:      g.Args[1],
			Recovery:     g.Args[2],
			ChoicePoints: c.ChoicePoints,
			Substitution: c.Substitution,
			Cont:         f.Next,
			Parent:       f.Handlers,
		}
		c.Goals = push(g.Args[0], c.ChoicePoints, h, f.Next)
		return &GoalSelection{ctx: c}
	}
	return nil
}

// ifThenElse runs cond (cut local to it), then commits to its first solution
// and runs then. When cond fails the else branch, if any, runs instead.
func ifThenElse(c *Context, f *Frame, cond, then, els term.Term) State {
	commitTo := c.ChoicePoints
	cps := c.ChoicePoints
	if els != nil {
		cps = branchChoice(cps, c, push(els, f.CutBarrier, f.Handlers, f.Next))
	}
	thenFrame := push(then, f.CutBarrier, f.Handlers, f.Next)
	commit := &Frame{commit: true, commitTo: commitTo, Handlers: f.Handlers, Next: thenFrame}

	n := *c
	n.ChoicePoints = cps
	n.Goals = push(cond, cps, f.Handlers, commit)
	return &GoalSelection{ctx: &n}
}

// PrimitiveExecution takes the next response of a primitive call.
type PrimitiveExecution struct {
	ctx    *Context
	frame  *Frame
	stream *Responses
}

func (s *PrimitiveExecution) Context() *Context { return s.ctx }
func (s *PrimitiveExecution) Name() string      { return StatePrimitiveExecution }

func (s *PrimitiveExecution) Next() State {
	c := s.ctx.advance()
	r, ok := s.stream.Next()
	if !ok {
		return &Backtracking{ctx: c}
	}
	if r.Err != nil {
		if isFatal(r.Err) {
			return endHalt(c, r.Err)
		}
		return raise(c, s.frame, r.Err)
	}
	if !s.stream.Done() {
		c.ChoicePoints = streamChoice(c.ChoicePoints, s.ctx, s.frame, s.stream)
	}
	c.Substitution = r.Substitution
	if r.StaticKB != nil {
		c.StaticKB = r.StaticKB
	}
	if r.DynamicKB != nil {
		c.DynamicKB = r.DynamicKB
	}
	if r.Flags != nil {
		c.Flags = r.Flags
	}
	c.Goals = s.frame.Next
	if r.Then != nil {
		c.Goals = push(r.Then, c.ChoicePoints, s.frame.Handlers, s.frame.Next)
	}
	return &GoalSelection{ctx: c}
}

// RuleSelection collects the candidate clauses for a user goal. The
// candidates are fixed at call time: clauses asserted or retracted while
// the call is active do not change its alternatives.
type RuleSelection struct {
	ctx   *Context
	frame *Frame
}

func (s *RuleSelection) Context() *Context { return s.ctx }
func (s *RuleSelection) Name() string      { return StateRuleSelection }

func (s *RuleSelection) Next() State {
	c := s.ctx.advance()
	pattern := c.Substitution.Apply(s.frame.Goal)
	candidates := slices.Collect(c.StaticKB.Get(pattern))
	candidates = slices.AppendSeq(candidates, c.DynamicKB.Get(pattern))
	if len(candidates) > 0 {
		return &RuleExecution{ctx: c, frame: s.frame, candidates: candidates}
	}

	ind, _ := term.IndicatorOf(pattern)
	if c.StaticKB.Defines(ind) || c.DynamicKB.Defines(ind) {
		return &Backtracking{ctx: c}
	}
	switch c.Flags.Unknown() {
	case UnknownError:
		return raise(c, s.frame, ExistenceError("procedure", ind.Term()))
	case UnknownWarning:
		c.Warn("unknown procedure", ind.Term())
	}
	return &Backtracking{ctx: c}
}

// RuleExecution tries candidate clauses in order. The first whose head
// unifies with the goal is entered; a choice point is left only when a
// later candidate could also match.
type RuleExecution struct {
	ctx        *Context
	frame      *Frame
	candidates []*term.Clause
}

func (s *RuleExecution) Context() *Context { return s.ctx }
func (s *RuleExecution) Name() string      { return StateRuleExecution }

func (s *RuleExecution) Next() State {
	c := s.ctx.advance()
	occurs := c.OccursCheck()
	goal := s.frame.Goal
	for i, cand := range s.candidates {
		fresh := term.NewScope().CopyClause(cand)
		sub, ok := c.Substitution.Unify(goal, fresh.Head, occurs)
		if !ok {
			continue
		}

		rest := s.candidates[i+1:]
		cps := c.ChoicePoints
		if j := nextMatch(c, goal, rest); j >= 0 {
			cps = clauseChoice(cps, c, s.frame, rest[j:])
		}
		n := *c
		n.Substitution = sub
		n.ChoicePoints = cps
		if term.IsTrue(fresh.Body) {
			n.Goals = s.frame.Next
		} else {
			n.Goals = push(fresh.Body, c.ChoicePoints, s.frame.Handlers, s.frame.Next)
		}
		return &GoalSelection{ctx: &n}
	}
	return &Backtracking{ctx: c}
}

// nextMatch returns the index of the first clause in rest whose head unifies
// with goal, or -1.
func nextMatch(c *Context, goal term.Term, rest []*term.Clause) int {
	for i, cand := range rest {
		if _, ok := c.Substitution.Unify(goal, term.FreshCopy(cand.Head), c.OccursCheck()); ok {
			return i
		}
	}
	return -1
}

// Backtracking resumes the nearest choice point with an open alternative.
// The snapshot's bindings and continuation are restored; knowledge bases
// and flags are taken from the current context, so assert and retract
// survive backtracking.
type Backtracking struct{ ctx *Context }

func (s *Backtracking) Context() *Context { return s.ctx }
func (s *Backtracking) Name() string      { return StateBacktracking }

func (s *Backtracking) Next() State {
	c := s.ctx.advance()
	cp := c.ChoicePoints.PathToRoot()
	if cp == nil {
		c.ChoicePoints = nil
		return &End{ctx: c, Solution: Solution{Kind: KindNo, Query: c.Query}}
	}
	c.rt.metrics.backtrack()

	n := *cp.Context
	n.Step = c.Step
	n.ChoicePoints = cp.Parent
	n.StaticKB, n.DynamicKB, n.Flags = c.StaticKB, c.DynamicKB, c.Flags
	switch {
	case cp.stream != nil:
		return &PrimitiveExecution{ctx: &n, frame: cp.Frame, stream: cp.stream}
	case cp.branch != nil:
		n.Goals = cp.branch
		return &GoalSelection{ctx: &n}
	}
	return &RuleExecution{ctx: &n, frame: cp.Frame, candidates: cp.clauses}
}

// Exception looks for a catch/3 handler whose catcher unifies with the
// ball, innermost first.
type Exception struct {
	ctx      *Context
	ball     term.Term
	err      error
	handlers *Handler
}

func (s *Exception) Context() *Context { return s.ctx }
func (s *Exception) Name() string      { return StateException }

// Ball returns the thrown term.
func (s *Exception) Ball() term.Term { return s.ball }

func (s *Exception) Next() State {
	c := s.ctx.advance()
	for h := s.handlers; h != nil; h = h.Parent {
		sub, ok := h.Substitution.Unify(h.Catcher, s.ball, c.OccursCheck())
		if !ok {
			continue
		}
		c.rt.metrics.exception(true)
		c.Substitution = sub
		c.ChoicePoints = h.ChoicePoints
		c.Goals = push(h.Recovery, h.ChoicePoints, h.Parent, h.Cont)
		return &GoalSelection{ctx: c}
	}
	c.rt.metrics.exception(false)

	thrown := &ThrownError{Ball: s.ball, Err: s.err}
	c.ChoicePoints = nil
	if c.Depth > 0 {
		// Re-raised by the caller of the nested solve.
		return &End{ctx: c, Solution: Solution{Kind: KindError, Query: c.Query, Err: thrown}}
	}
	if isSystemErrorBall(s.ball) {
		return endHalt(c, &HaltError{Code: 1, Cause: thrown})
	}
	return &End{ctx: c, Solution: Solution{Kind: KindError, Query: c.Query, Err: SystemError(MsgNoCatch, thrown)}}
}

func isSystemErrorBall(t term.Term) bool {
	s, ok := t.(*term.Struct)
	return ok && s.Functor == "error" && len(s.Args) == 2 && s.Args[0] == term.Term(term.Atom(ErrSystem))
}

// End is a terminal state. A Yes end with open alternatives can be resumed
// for more solutions.
type End struct {
	ctx                 *Context
	Solution            Solution
	HasOpenAlternatives bool
}

func (s *End) Context() *Context { return s.ctx }
func (s *End) Name() string      { return StateEnd }

// Next resumes the search after a solution.
func (s *End) Next() State {
	return &Backtracking{ctx: s.ctx.advance()}
}

func endYes(c *Context) State {
	return &End{
		ctx:                 c,
		Solution:            Solution{Kind: KindYes, Query: c.Query, Substitution: c.Substitution},
		HasOpenAlternatives: c.ChoicePoints.PathToRoot() != nil,
	}
}

func endHalt(c *Context, err error) *End {
	return &End{ctx: c, Solution: Solution{Kind: KindHalt, Query: c.Query, Err: err}}
}

// raise turns err into a ball, with the current bindings applied and its
// variables renamed, and starts the handler search from f's handlers.
func raise(c *Context, f *Frame, err error) State {
	ball := term.FreshCopy(c.Substitution.Apply(ballOf(err)))
	return &Exception{ctx: c, ball: ball, err: err, handlers: f.Handlers}
}
