package stdlib

import (
	"github.com/roach88/clausal/internal/engine"
	"github.com/roach88/clausal/internal/term"
)

func registerFlags(l *engine.Library) {
	l.Register(sig("set_flag", 2), SetFlag)
	l.Register(sig("current_flag", 2), CurrentFlag)
}

// SetFlag implements set_flag(Name, Value). The new value is visible to the
// rest of the query and to later queries.
func SetFlag(r *engine.Request) *engine.Responses {
	name, value := r.Arg(0), r.Apply(1)
	a, ok := name.(term.Atom)
	switch {
	case term.IsVar(name):
		return r.Raise(engine.InstantiationError(name))
	case !ok:
		return r.Raise(engine.TypeError("atom", name))
	case term.IsVar(value):
		return r.Raise(engine.InstantiationError(value))
	case !engine.ValidFlag(string(a), value):
		return r.Raise(engine.TypeError("flag_value", term.NewStruct("+", a, value)))
	}
	resp := r.Success(r.Context.Substitution)
	resp.Flags = r.Context.Flags.Set(string(a), value)
	return engine.Of(resp)
}

// CurrentFlag implements current_flag(Name, Value). An unbound name
// enumerates the flags in name order.
func CurrentFlag(r *engine.Request) *engine.Responses {
	flags := r.Context.Flags
	switch name := r.Arg(0).(type) {
	case term.Atom:
		v, ok := flags.Get(string(name))
		if !ok {
			return engine.Fail()
		}
		return r.UnifyOnce(r.Args[1], v)
	case term.Var:
		var out []engine.Response
		for _, n := range flags.Names() {
			v, _ := flags.Get(n)
			sub, ok := r.Unify(name, term.Atom(n))
			if !ok {
				continue
			}
			if sub, ok = sub.Unify(r.Args[1], v, r.Context.OccursCheck()); ok {
				out = append(out, r.Success(sub))
			}
		}
		return engine.Of(out...)
	default:
		return r.Raise(engine.TypeError("atom", name))
	}
}
