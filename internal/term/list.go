package term

// Cons builds the list cell [head|tail].
func Cons(head, tail Term) *Struct {
	return &Struct{Functor: ".", Args: []Term{head, tail}}
}

// List builds a proper list of elems.
func List(elems ...Term) Term {
	return ListWithTail(EmptyList, elems...)
}

// ListWithTail builds [e1, ..., en | tail].
func ListWithTail(tail Term, elems ...Term) Term {
	out := tail
	for i := len(elems) - 1; i >= 0; i-- {
		out = Cons(elems[i], out)
	}
	return out
}

// ListSlice unrolls cons cells. It returns the elements and whatever ends the
// chain: [] for a proper list, a Var for a partial list.
func ListSlice(t Term) ([]Term, Term) {
	var elems []Term
	for {
		s, ok := t.(*Struct)
		if !ok || s.Functor != "." || len(s.Args) != 2 {
			return elems, t
		}
		elems = append(elems, s.Args[0])
		t = s.Args[1]
	}
}

// Conj builds the right-nested conjunction (g1, (g2, ...)). An empty call
// yields true.
func Conj(goals ...Term) Term {
	if len(goals) == 0 {
		return True
	}
	out := goals[len(goals)-1]
	for i := len(goals) - 2; i >= 0; i-- {
		out = &Struct{Functor: ",", Args: []Term{goals[i], out}}
	}
	return out
}

// TupleSlice flattens a right-nested conjunction.
func TupleSlice(t Term) []Term {
	var out []Term
	for IsTuple(t) {
		s := t.(*Struct)
		out = append(out, s.Args[0])
		t = s.Args[1]
	}
	return append(out, t)
}

// Set builds the curly term {e1, ..., en}.
func Set(elems ...Term) Term {
	if len(elems) == 0 {
		return EmptySet
	}
	return &Struct{Functor: "{}", Args: []Term{Conj(elems...)}}
}

// ToClause converts a ':-' compound, or any callable treated as a fact, to a
// *Clause. It reports false for terms that cannot denote a clause.
func ToClause(t Term) (*Clause, bool) {
	switch t := t.(type) {
	case *Clause:
		return t, true
	case Atom:
		return NewFact(t), true
	case *Struct:
		if t.Functor == ":-" && len(t.Args) == 2 {
			return NewRule(t.Args[0], t.Args[1]), true
		}
		if t.Functor == ":-" && len(t.Args) == 1 {
			return NewDirective(t.Args[0]), true
		}
		return NewFact(t), true
	}
	return nil, false
}
