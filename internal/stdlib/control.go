package stdlib

import (
	"github.com/roach88/clausal/internal/engine"
	"github.com/roach88/clausal/internal/term"
)

func registerControl(l *engine.Library) {
	l.Register(sig("once", 1), Once)
	l.Register(sig("ignore", 1), Ignore)
	l.Register(sig("not", 1), engine.NotProvable)
	l.Register(sig("repeat", 0), Repeat)
	l.Register(sig("between", 3), Between)
}

// Once implements once/1 as call((Goal, !)).
func Once(r *engine.Request) *engine.Responses {
	goal := r.Arg(0)
	if err := engine.Callable(goal); err != nil {
		return r.Raise(err)
	}
	return r.Call(term.NewStruct(",", goal, term.Cut))
}

// Ignore implements ignore/1 as (Goal -> true ; true).
func Ignore(r *engine.Request) *engine.Responses {
	goal := r.Arg(0)
	if err := engine.Callable(goal); err != nil {
		return r.Raise(err)
	}
	return r.Call(term.NewStruct(";", term.NewStruct("->", goal, term.True), term.True))
}

// Repeat succeeds forever on backtracking.
func Repeat(r *engine.Request) *engine.Responses {
	return engine.Stream(func() (engine.Response, bool, bool) {
		return r.Success(r.Context.Substitution), true, true
	})
}

// Between implements between(Low, High, X) over integers. High may be inf.
func Between(r *engine.Request) *engine.Responses {
	lo, hi, x := r.Arg(0), r.Arg(1), r.Arg(2)
	low, ok := lo.(term.Integer)
	if !ok {
		return r.Raise(intError(lo))
	}
	var high term.Integer
	switch h := hi.(type) {
	case term.Integer:
		high = h
	case term.Atom:
		if h != "inf" && h != "infinite" {
			return r.Raise(engine.TypeError("integer", h))
		}
		high = term.Integer(1<<63 - 1)
	default:
		return r.Raise(intError(hi))
	}

	switch x := x.(type) {
	case term.Integer:
		if low <= x && x <= high {
			return r.Succeed()
		}
		return engine.Fail()
	case term.Var:
	default:
		return r.Raise(engine.TypeError("integer", x))
	}

	next := low
	return engine.Stream(func() (engine.Response, bool, bool) {
		if next > high {
			return engine.Response{}, false, false
		}
		sub, _ := r.Unify(x, next)
		more := next < high
		next++
		return r.Success(sub), true, more
	})
}

// intError is the error for a non-integer where an integer is required.
func intError(t term.Term) error {
	if term.IsVar(t) {
		return engine.InstantiationError(t)
	}
	return engine.TypeError("integer", t)
}
