// Package stdlib is the built-in predicate catalogue: unification and the
// standard order of terms, type checks, arithmetic, the dynamic database,
// term construction and inspection, output and flags.
//
// Default returns everything, including the engine's control primitives,
// ready for engine.WithLibrary.
package stdlib

import (
	"github.com/roach88/clausal/internal/engine"
)

// Default returns the complete library.
func Default() *engine.Library {
	l := engine.Builtins()
	registerControl(l)
	registerCompare(l)
	registerTypes(l)
	registerArith(l)
	registerDatabase(l)
	registerTerms(l)
	registerOutput(l)
	registerFlags(l)
	return l
}

func sig(name string, arity int) engine.Signature {
	return engine.Signature{Name: name, Arity: arity}
}

// check wraps a test that succeeds at most once and binds nothing.
func check(fn func(r *engine.Request) bool) engine.Primitive {
	return func(r *engine.Request) *engine.Responses {
		if fn(r) {
			return r.Succeed()
		}
		return engine.Fail()
	}
}
