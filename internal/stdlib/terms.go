package stdlib

import (
	"github.com/roach88/clausal/internal/engine"
	"github.com/roach88/clausal/internal/term"
)

func registerTerms(l *engine.Library) {
	l.Register(sig("functor", 3), Functor)
	l.Register(sig("arg", 3), Arg)
	l.Register(sig("=..", 2), Univ)
	l.Register(sig("copy_term", 2), func(r *engine.Request) *engine.Responses {
		return r.UnifyOnce(r.Args[1], term.FreshCopy(r.Apply(0)))
	})
}

// Functor implements functor(Term, Name, Arity). With Term unbound it builds
// a term of fresh variables.
func Functor(r *engine.Request) *engine.Responses {
	switch t := r.Arg(0).(type) {
	case term.Var:
	case *term.Struct:
		return unifyAll(r, r.Args[1], term.Atom(t.Functor), r.Args[2], term.Integer(len(t.Args)))
	case *term.Clause:
		s := t.Struct()
		return unifyAll(r, r.Args[1], term.Atom(s.Functor), r.Args[2], term.Integer(len(s.Args)))
	default:
		return unifyAll(r, r.Args[1], t, r.Args[2], term.Integer(0))
	}

	name, arity := r.Arg(1), r.Arg(2)
	if term.IsVar(name) {
		return r.Raise(engine.InstantiationError(name))
	}
	n, ok := arity.(term.Integer)
	if !ok {
		return r.Raise(intError(arity))
	}
	switch {
	case n < 0:
		return engine.Fail()
	case n == 0:
		if !term.IsAtomic(name) {
			return r.Raise(engine.TypeError("atomic", name))
		}
		return r.UnifyOnce(r.Args[0], name)
	}
	a, ok := name.(term.Atom)
	if !ok {
		if term.IsAtomic(name) {
			return r.Raise(engine.TypeError("atom", name))
		}
		return r.Raise(engine.TypeError("atomic", name))
	}
	args := make([]term.Term, n)
	for i := range args {
		args[i] = term.NewVar("")
	}
	return r.UnifyOnce(r.Args[0], term.NewStruct(string(a), args...))
}

// Arg implements arg(N, Term, Arg). An unbound N enumerates the arguments.
func Arg(r *engine.Request) *engine.Responses {
	n, t := r.Arg(0), r.Arg(1)
	if term.IsVar(t) {
		return r.Raise(engine.InstantiationError(t))
	}
	var args []term.Term
	switch t := t.(type) {
	case *term.Struct:
		args = t.Args
	case *term.Clause:
		args = t.Struct().Args
	default:
		return r.Raise(engine.TypeError("compound", t))
	}

	switch n := n.(type) {
	case term.Integer:
		if n < 1 || int(n) > len(args) {
			return engine.Fail()
		}
		return r.UnifyOnce(r.Args[2], args[n-1])
	case term.Var:
		var out []engine.Response
		for i, a := range args {
			sub, ok := r.Unify(n, term.Integer(i+1))
			if !ok {
				continue
			}
			if sub, ok = sub.Unify(r.Args[2], a, r.Context.OccursCheck()); ok {
				out = append(out, r.Success(sub))
			}
		}
		return engine.Of(out...)
	}
	return r.Raise(engine.TypeError("integer", n))
}

// Univ implements Term =.. List.
func Univ(r *engine.Request) *engine.Responses {
	switch t := r.Arg(0).(type) {
	case term.Var:
	case *term.Struct:
		return r.UnifyOnce(r.Args[1], term.List(append([]term.Term{term.Atom(t.Functor)}, t.Args...)...))
	case *term.Clause:
		s := t.Struct()
		return r.UnifyOnce(r.Args[1], term.List(append([]term.Term{term.Atom(s.Functor)}, s.Args...)...))
	default:
		return r.UnifyOnce(r.Args[1], term.List(t))
	}

	list := r.Apply(1)
	elems, tail := term.ListSlice(list)
	switch {
	case term.IsVar(tail):
		return r.Raise(engine.InstantiationError(tail))
	case !term.IsEmptyList(tail):
		return r.Raise(engine.TypeError("list", list))
	case len(elems) == 0:
		return r.Raise(engine.TypeError("non_empty_list", list))
	}
	head := elems[0]
	if term.IsVar(head) {
		return r.Raise(engine.InstantiationError(head))
	}
	if len(elems) == 1 {
		if !term.IsAtomic(head) {
			return r.Raise(engine.TypeError("atomic", head))
		}
		return r.UnifyOnce(r.Args[0], head)
	}
	a, ok := head.(term.Atom)
	if !ok {
		return r.Raise(engine.TypeError("atom", head))
	}
	return r.UnifyOnce(r.Args[0], term.NewStruct(string(a), elems[1:]...))
}

// unifyAll unifies each pair in turn and succeeds once if all unify.
func unifyAll(r *engine.Request, pairs ...term.Term) *engine.Responses {
	sub := r.Context.Substitution
	for i := 0; i+1 < len(pairs); i += 2 {
		var ok bool
		if sub, ok = sub.Unify(pairs[i], pairs[i+1], r.Context.OccursCheck()); !ok {
			return engine.Fail()
		}
	}
	return engine.Of(r.Success(sub))
}
