package stdlib

import (
	"github.com/roach88/clausal/internal/engine"
	"github.com/roach88/clausal/internal/term"
)

func registerCompare(l *engine.Library) {
	l.Register(sig("=", 2), func(r *engine.Request) *engine.Responses {
		return r.UnifyOnce(r.Args[0], r.Args[1])
	})
	l.Register(sig(`\=`, 2), check(func(r *engine.Request) bool {
		_, ok := r.Unify(r.Args[0], r.Args[1])
		return !ok
	}))
	l.Register(sig("==", 2), check(func(r *engine.Request) bool {
		return term.Equals(r.Apply(0), r.Apply(1))
	}))
	l.Register(sig(`\==`, 2), check(func(r *engine.Request) bool {
		return !term.Equals(r.Apply(0), r.Apply(1))
	}))
	l.Register(sig("@<", 2), order(func(c int) bool { return c < 0 }))
	l.Register(sig("@>", 2), order(func(c int) bool { return c > 0 }))
	l.Register(sig("@=<", 2), order(func(c int) bool { return c <= 0 }))
	l.Register(sig("@>=", 2), order(func(c int) bool { return c >= 0 }))
	l.Register(sig("compare", 3), Compare)
}

func order(ok func(int) bool) engine.Primitive {
	return check(func(r *engine.Request) bool {
		return ok(term.Compare(r.Apply(0), r.Apply(1)))
	})
}

// Compare implements compare(Order, A, B) with Order one of <, = or >.
func Compare(r *engine.Request) *engine.Responses {
	var o term.Atom
	switch c := term.Compare(r.Apply(1), r.Apply(2)); {
	case c < 0:
		o = "<"
	case c > 0:
		o = ">"
	default:
		o = "="
	}
	return r.UnifyOnce(r.Args[0], o)
}
