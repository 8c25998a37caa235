package stdlib

import (
	"github.com/roach88/clausal/internal/engine"
	"github.com/roach88/clausal/internal/term"
	"github.com/roach88/clausal/internal/theory"
)

// Database predicates change the dynamic knowledge base only. Predicates
// defined by the static knowledge base cannot be modified.
func registerDatabase(l *engine.Library) {
	l.Register(sig("assert", 1), assertClause(false))
	l.Register(sig("assertz", 1), assertClause(false))
	l.Register(sig("asserta", 1), assertClause(true))
	l.Register(sig("retract", 1), Retract)
	l.Register(sig("retractall", 1), RetractAll)
	l.Register(sig("clause", 2), ClauseOf)
}

// toClause converts a term to a clause, checking that it can be stored.
func toClause(t term.Term) (*term.Clause, error) {
	if term.IsVar(t) {
		return nil, engine.InstantiationError(t)
	}
	c, ok := term.ToClause(t)
	if !ok || c.IsDirective() {
		return nil, engine.TypeError("callable", t)
	}
	if term.IsVar(c.Head) {
		return nil, engine.InstantiationError(c.Head)
	}
	if !term.IsCallable(c.Head) {
		return nil, engine.TypeError("callable", c.Head)
	}
	if term.IsNumber(c.Body) {
		return nil, engine.TypeError("callable", c.Body)
	}
	return c, nil
}

// checkModifiable rejects changes to static predicates.
func checkModifiable(r *engine.Request, c *term.Clause) error {
	ind := c.Indicator()
	if r.Context.StaticKB.Defines(ind) {
		return engine.PermissionError("modify", "static_procedure", ind.Term())
	}
	return nil
}

func assertClause(before bool) engine.Primitive {
	return func(r *engine.Request) *engine.Responses {
		c, err := toClause(r.Apply(0))
		if err != nil {
			return r.Raise(err)
		}
		if err := checkModifiable(r, c); err != nil {
			return r.Raise(err)
		}
		kb, err := r.Context.DynamicKB.Assert(term.NewScope().CopyClause(c), before)
		if err != nil {
			if theory.IsInvalidClause(err) {
				return r.Raise(engine.TypeError("callable", c.Body))
			}
			return r.Raise(err)
		}
		resp := r.Success(r.Context.Substitution)
		resp.DynamicKB = kb
		return engine.Of(resp)
	}
}

// Retract implements retract/1. It removes the first matching clause and
// binds the argument to it; it does not backtrack into later matches.
func Retract(r *engine.Request) *engine.Responses {
	pattern, err := toClause(r.Apply(0))
	if err != nil {
		return r.Raise(err)
	}
	if err := checkModifiable(r, pattern); err != nil {
		return r.Raise(err)
	}
	res := r.Context.DynamicKB.Retract(pattern)
	if !res.OK {
		return engine.Fail()
	}
	removed := term.NewScope().CopyClause(res.Removed[0])
	sub, ok := r.Unify(pattern.Struct(), removed.Struct())
	if !ok {
		return engine.Fail()
	}
	resp := r.Success(sub)
	resp.DynamicKB = res.Theory
	return engine.Of(resp)
}

// RetractAll implements retractall/1: every clause whose head unifies with
// the argument is removed. It always succeeds.
func RetractAll(r *engine.Request) *engine.Responses {
	head := r.Apply(0)
	if term.IsVar(head) {
		return r.Raise(engine.InstantiationError(head))
	}
	if !term.IsCallable(head) {
		return r.Raise(engine.TypeError("callable", head))
	}
	pattern := term.NewRule(head, term.NewVar(""))
	if err := checkModifiable(r, pattern); err != nil {
		return r.Raise(err)
	}
	res := r.Context.DynamicKB.RetractAll(pattern)
	resp := r.Success(r.Context.Substitution)
	resp.DynamicKB = res.Theory
	return engine.Of(resp)
}

// ClauseOf implements clause(Head, Body) over both knowledge bases, static
// clauses first.
func ClauseOf(r *engine.Request) *engine.Responses {
	head, body := r.Apply(0), r.Apply(1)
	if term.IsVar(head) {
		return r.Raise(engine.InstantiationError(head))
	}
	if !term.IsCallable(head) {
		return r.Raise(engine.TypeError("callable", head))
	}
	if !term.IsVar(body) && !term.IsCallable(body) {
		return r.Raise(engine.TypeError("callable", body))
	}

	var out []engine.Response
	for _, kb := range []*theory.Theory{r.Context.StaticKB, r.Context.DynamicKB} {
		for c := range kb.Get(head) {
			fresh := term.NewScope().CopyClause(c)
			sub, ok := r.Unify(head, fresh.Head)
			if !ok {
				continue
			}
			if sub, ok = sub.Unify(body, fresh.Body, r.Context.OccursCheck()); ok {
				out = append(out, r.Success(sub))
			}
		}
	}
	return engine.Of(out...)
}
