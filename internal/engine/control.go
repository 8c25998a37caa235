package engine

import (
	"github.com/roach88/clausal/internal/term"
)

// Builtins returns the control primitives every solver has: call/1..N,
// \+/1, throw/1, findall/3 and halt/0,1. catch/3, conjunction, disjunction,
// if-then-else and cut are handled by the state machine itself.
func Builtins() *Library {
	l := NewLibrary()
	l.Register(Signature{Name: "call", Arity: 1, Variadic: true}, Call)
	l.Register(Signature{Name: `\+`, Arity: 1}, NotProvable)
	l.Register(Signature{Name: "throw", Arity: 1}, Throw)
	l.Register(Signature{Name: "findall", Arity: 3}, FindAll)
	l.Register(Signature{Name: "halt", Arity: 0}, Halt)
	l.Register(Signature{Name: "halt", Arity: 1}, Halt)
	return l
}

// MaxSolveDepth bounds how deeply nested solves (\+/1, findall/3) may
// stack. Going deeper raises resource_error(solve_depth).
const MaxSolveDepth = 4096

// Solve starts a nested resolution of goal that shares the caller's
// bindings, knowledge bases, deadline and step quota. Cut inside goal is
// local to it. An exception that escapes the nested solve ends it with an
// Error solution carrying a *ThrownError.
//
// Nested solves run on the Go stack of the caller. Primitives that only
// need to run a goal in place of themselves should use Call instead.
func (r *Request) Solve(goal term.Term) (*Solutions, error) {
	p := r.Context
	if p.Depth >= MaxSolveDepth {
		return nil, ResourceError("solve_depth")
	}
	c := &Context{
		QueryID:      p.QueryID,
		Query:        goal,
		Substitution: p.Substitution,
		StaticKB:     p.StaticKB,
		DynamicKB:    p.DynamicKB,
		Library:      p.Library,
		Flags:        p.Flags,
		StartTime:    p.StartTime,
		MaxDuration:  p.MaxDuration,
		Output:       p.Output,
		Depth:        p.Depth + 1,
		rt:           p.rt,
	}
	return newSolutions(c, nil, 0), nil
}

// Callable checks that t can be called as a goal.
func Callable(t term.Term) error {
	switch t.(type) {
	case term.Var:
		return InstantiationError(t)
	case term.Integer, term.Real:
		return TypeError("callable", t)
	}
	return nil
}

// AddArgs appends extra arguments to a callable goal, as call/N does.
func AddArgs(goal term.Term, extra []term.Term) (term.Term, error) {
	if len(extra) == 0 {
		return goal, nil
	}
	switch g := goal.(type) {
	case term.Atom:
		return term.NewStruct(string(g), extra...), nil
	case *term.Struct:
		args := append(append([]term.Term{}, g.Args...), extra...)
		return term.NewStruct(g.Functor, args...), nil
	}
	if err := Callable(goal); err != nil {
		return nil, err
	}
	return nil, TypeError("callable", goal)
}

// Call implements call/1..N.
func Call(r *Request) *Responses {
	goal, err := AddArgs(r.Arg(0), r.Args[1:])
	if err != nil {
		return r.Raise(err)
	}
	if err := Callable(goal); err != nil {
		return r.Raise(err)
	}
	return r.Call(goal)
}

// NotProvable implements \+/1: it succeeds, binding nothing, when its goal
// has no solution.
func NotProvable(r *Request) *Responses {
	goal := r.Arg(0)
	if err := Callable(goal); err != nil {
		return r.Raise(err)
	}
	sols, err := r.Solve(goal)
	if err != nil {
		return r.Raise(err)
	}
	sol, _ := sols.Next()
	switch sol.Kind {
	case KindYes:
		return Fail()
	case KindNo:
		return Of(Response{
			Substitution: r.Context.Substitution,
			DynamicKB:    sol.ctx.DynamicKB,
			Flags:        sol.ctx.Flags,
		})
	}
	return Raise(sol.Err)
}

// Throw implements throw/1.
func Throw(r *Request) *Responses {
	ball := r.Apply(0)
	if term.IsVar(ball) {
		return r.Raise(InstantiationError(ball))
	}
	return Raise(&ThrownError{Ball: term.FreshCopy(ball)})
}

// FindAll implements findall/3.
func FindAll(r *Request) *Responses {
	goal := r.Arg(1)
	if err := Callable(goal); err != nil {
		return r.Raise(err)
	}
	sols, err := r.Solve(goal)
	if err != nil {
		return r.Raise(err)
	}
	var (
		results []term.Term
		last    *Context
	)
	for sol := range sols.All() {
		switch sol.Kind {
		case KindYes:
			results = append(results, term.FreshCopy(sol.Substitution.Apply(r.Args[0])))
		case KindHalt, KindError:
			return Raise(sol.Err)
		}
		last = sol.ctx
	}
	sub, ok := r.Unify(r.Args[2], term.List(results...))
	if !ok {
		return Fail()
	}
	resp := r.Success(sub)
	if last != nil {
		resp.DynamicKB, resp.Flags = last.DynamicKB, last.Flags
	}
	return Of(resp)
}

// Halt implements halt/0 and halt/1.
func Halt(r *Request) *Responses {
	if len(r.Args) == 0 {
		return Raise(&HaltError{})
	}
	switch code := r.Arg(0).(type) {
	case term.Integer:
		return Raise(&HaltError{Code: int(code)})
	case term.Var:
		return r.Raise(InstantiationError(code))
	default:
		return r.Raise(TypeError("integer", code))
	}
}
