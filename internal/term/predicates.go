package term

// Capability predicates. Categories cut across the variants (an atom is a
// callable, a constant and possibly the empty list), so they are derived
// from the variant here instead of being encoded in the type hierarchy.

// IsVar reports whether t is a variable.
func IsVar(t Term) bool {
	_, ok := t.(Var)
	return ok
}

// IsAtom reports whether t is an atom.
func IsAtom(t Term) bool {
	_, ok := t.(Atom)
	return ok
}

// IsNumber reports whether t is an Integer or a Real.
func IsNumber(t Term) bool {
	switch t.(type) {
	case Integer, Real:
		return true
	}
	return false
}

// IsAtomic reports whether t is an atom or a number.
func IsAtomic(t Term) bool {
	return IsAtom(t) || IsNumber(t)
}

// IsCompound reports whether t has at least one argument.
func IsCompound(t Term) bool {
	switch t.(type) {
	case *Struct, *Clause:
		return true
	}
	return false
}

// IsCallable reports whether t may be used as a goal or clause head.
func IsCallable(t Term) bool {
	return IsAtom(t) || IsCompound(t)
}

func IsTrue(t Term) bool { return t == Term(True) }

// IsFail reports whether t is fail or false.
func IsFail(t Term) bool { return t == Term(Fail) || t == Term(False) }

func IsEmptyList(t Term) bool { return t == Term(EmptyList) }

// IsCons reports whether t is a '.'/2 list cell.
func IsCons(t Term) bool {
	s, ok := t.(*Struct)
	return ok && s.Functor == "." && len(s.Args) == 2
}

// IsList reports whether t is a proper list: [] or a chain of cons cells
// ending in [].
func IsList(t Term) bool {
	for {
		if IsEmptyList(t) {
			return true
		}
		s, ok := t.(*Struct)
		if !ok || s.Functor != "." || len(s.Args) != 2 {
			return false
		}
		t = s.Args[1]
	}
}

// IsSet reports whether t is {} or a '{}'/1 curly term.
func IsSet(t Term) bool {
	if t == Term(EmptySet) {
		return true
	}
	s, ok := t.(*Struct)
	return ok && s.Functor == "{}" && len(s.Args) == 1
}

// IsTuple reports whether t is a ','/2 conjunction.
func IsTuple(t Term) bool {
	s, ok := t.(*Struct)
	return ok && s.Functor == "," && len(s.Args) == 2
}

// IsClauseTerm reports whether t is a *Clause or a ':-' compound of arity 1 or 2.
func IsClauseTerm(t Term) bool {
	switch t := t.(type) {
	case *Clause:
		return true
	case *Struct:
		return t.Functor == ":-" && (len(t.Args) == 1 || len(t.Args) == 2)
	}
	return false
}

// IsGround reports whether t contains no variables. Callers holding a
// substitution should Apply it first.
func IsGround(t Term) bool {
	switch t := t.(type) {
	case Var:
		return false
	case *Struct:
		for _, a := range t.Args {
			if !IsGround(a) {
				return false
			}
		}
	case *Clause:
		if t.Head != nil && !IsGround(t.Head) {
			return false
		}
		return IsGround(t.Body)
	}
	return true
}

// Vars returns the distinct variables of t in order of first appearance.
func Vars(t Term) []Var {
	var out []Var
	seen := map[int64]bool{}
	var walk func(Term)
	walk = func(t Term) {
		switch t := t.(type) {
		case Var:
			if !seen[t.ID] {
				seen[t.ID] = true
				out = append(out, t)
			}
		case *Struct:
			for _, a := range t.Args {
				walk(a)
			}
		case *Clause:
			if t.Head != nil {
				walk(t.Head)
			}
			walk(t.Body)
		}
	}
	walk(t)
	return out
}
