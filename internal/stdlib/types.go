package stdlib

import (
	"github.com/roach88/clausal/internal/engine"
	"github.com/roach88/clausal/internal/term"
)

func registerTypes(l *engine.Library) {
	resolved := func(name string, fn func(term.Term) bool) {
		l.Register(sig(name, 1), check(func(r *engine.Request) bool { return fn(r.Arg(0)) }))
	}
	resolved("var", term.IsVar)
	resolved("nonvar", func(t term.Term) bool { return !term.IsVar(t) })
	resolved("atom", term.IsAtom)
	resolved("number", term.IsNumber)
	resolved("integer", func(t term.Term) bool { _, ok := t.(term.Integer); return ok })
	resolved("float", func(t term.Term) bool { _, ok := t.(term.Real); return ok })
	resolved("atomic", term.IsAtomic)
	resolved("compound", term.IsCompound)
	resolved("callable", term.IsCallable)

	// These look below the top level.
	l.Register(sig("is_list", 1), check(func(r *engine.Request) bool { return term.IsList(r.Apply(0)) }))
	l.Register(sig("ground", 1), check(func(r *engine.Request) bool { return term.IsGround(r.Apply(0)) }))
}
