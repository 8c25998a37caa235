package term

import (
	"fmt"
	"sync/atomic"
)

// Term is a sealed interface over the values of the logic language.
// Only Var, Atom, Integer, Real, *Struct and *Clause implement it.
type Term interface {
	term() // Sealed
}

// varSeq hands out variable identities. Identity is what unification keys on;
// the name is only for display.
var varSeq atomic.Int64

// Var is a logic variable. Two Vars are the same variable iff their IDs match.
type Var struct {
	Name string
	ID   int64
}

func (Var) term() {}

// NewVar creates a variable with a process-unique identity.
func NewVar(name string) Var {
	return Var{Name: name, ID: varSeq.Add(1)}
}

// IsAnonymous reports whether the variable was written as "_" or has no name.
func (v Var) IsAnonymous() bool {
	return v.Name == "" || v.Name == "_"
}

// Atom is a constant symbol. An Atom has arity 0.
type Atom string

func (Atom) term() {}

// Integer is a 64-bit integer number.
type Integer int64

func (Integer) term() {}

// Real is a 64-bit floating point number.
type Real float64

func (Real) term() {}

// Struct is a compound term. A Struct always has at least one argument;
// use NewStruct to build one so a zero-argument call yields an Atom.
type Struct struct {
	Functor string
	Args    []Term
}

func (*Struct) term() {}

// Arity returns len(Args).
func (s *Struct) Arity() int { return len(s.Args) }

// Indicator returns Functor/Arity.
func (s *Struct) Indicator() Indicator {
	return Indicator{Name: s.Functor, Arity: len(s.Args)}
}

// NewStruct builds a compound term, or an Atom when args is empty.
func NewStruct(functor string, args ...Term) Term {
	if len(args) == 0 {
		return Atom(functor)
	}
	return &Struct{Functor: functor, Args: args}
}

// Clause is a rule, fact or directive. Head is nil for a directive, otherwise
// an Atom or *Struct. A fact is a rule whose Body is the atom true.
type Clause struct {
	Head Term
	Body Term
}

func (*Clause) term() {}

// NewRule builds head :- body.
func NewRule(head, body Term) *Clause {
	return &Clause{Head: head, Body: body}
}

// NewFact builds head :- true.
func NewFact(head Term) *Clause {
	return &Clause{Head: head, Body: True}
}

// NewDirective builds :- body.
func NewDirective(body Term) *Clause {
	return &Clause{Body: body}
}

// IsDirective reports whether the clause has no head.
func (c *Clause) IsDirective() bool { return c.Head == nil }

// IsFact reports whether the clause is a rule with a true body.
func (c *Clause) IsFact() bool { return c.Head != nil && IsTrue(c.Body) }

// Struct returns the ':-' compound the clause denotes.
func (c *Clause) Struct() *Struct {
	if c.Head == nil {
		return &Struct{Functor: ":-", Args: []Term{c.Body}}
	}
	return &Struct{Functor: ":-", Args: []Term{c.Head, c.Body}}
}

// Indicator returns the head's indicator. Directives report ':-'/1.
func (c *Clause) Indicator() Indicator {
	if c.Head == nil {
		return Indicator{Name: ":-", Arity: 1}
	}
	ind, _ := IndicatorOf(c.Head)
	return ind
}

// Common atoms.
const (
	True      Atom = "true"
	Fail      Atom = "fail"
	False     Atom = "false"
	EmptyList Atom = "[]"
	EmptySet  Atom = "{}"
	Cut       Atom = "!"
)

// Indicator identifies a predicate as Name/Arity.
type Indicator struct {
	Name  string
	Arity int
}

func (i Indicator) String() string {
	return fmt.Sprintf("%s/%d", Format(Atom(i.Name)), i.Arity)
}

// Term renders the indicator as the compound '/'(Name, Arity).
func (i Indicator) Term() Term {
	return &Struct{Functor: "/", Args: []Term{Atom(i.Name), Integer(i.Arity)}}
}

// IndicatorOf returns the indicator of a callable term.
func IndicatorOf(t Term) (Indicator, bool) {
	switch t := t.(type) {
	case Atom:
		return Indicator{Name: string(t)}, true
	case *Struct:
		return t.Indicator(), true
	case *Clause:
		return Indicator{Name: ":-", Arity: len(t.Struct().Args)}, true
	}
	return Indicator{}, false
}

// Args returns the arguments of a compound, or nil for anything else.
func Args(t Term) []Term {
	switch t := t.(type) {
	case *Struct:
		return t.Args
	case *Clause:
		return t.Struct().Args
	}
	return nil
}
