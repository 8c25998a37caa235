// Package theory stores clauses in a persistent discrimination tree.
//
// A Theory is never modified after construction. Assert, Retract and
// RetractAll return a new Theory that shares the untouched parts of the tree
// with the old one, which stays valid and unchanged:
//
//	kb := theory.MustNew(facts...)
//	next, _ := kb.Assert(term.NewFact(term.NewStruct("p", term.Integer(1))), false)
//	// kb still answers as before; next sees p(1).
//
// Retrieval with Get narrows candidates by predicate indicator and by the
// keys of the first few arguments. It returns candidates in declaration
// order and leaves unification to the caller.
package theory
