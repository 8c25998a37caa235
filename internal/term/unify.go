package term

// Unify computes the most general unifier of a and b from scratch, without
// the occurs check.
func Unify(a, b Term) (*Substitution, bool) {
	var s *Substitution
	return s.Unify(a, b, false)
}

// Unify extends s so that a and b become equal under it. Atoms and numbers
// unify by value (an Integer never unifies with a Real), compounds need the
// same functor and arity and unify their arguments left to right, stopping at
// the first mismatch. With occursCheck set a variable is never bound to a
// term containing it.
func (s *Substitution) Unify(a, b Term, occursCheck bool) (*Substitution, bool) {
	a, b = s.Resolve(a), s.Resolve(b)
	switch a := a.(type) {
	case Var:
		if bv, ok := b.(Var); ok {
			if a.ID == bv.ID {
				return s, true
			}
			// Bind the younger variable to the older one so that query
			// variables stay the representatives of their class.
			if a.ID < bv.ID {
				return s.Bind(bv, a), true
			}
			return s.Bind(a, bv), true
		}
		if occursCheck && s.occurs(a, b) {
			return nil, false
		}
		return s.Bind(a, b), true
	case Atom, Integer, Real:
		if bv, ok := b.(Var); ok {
			return s.Bind(bv, a), true
		}
		return s, a == b
	case *Struct:
		return s.unifyCompound(a, b, occursCheck)
	case *Clause:
		return s.unifyCompound(a.Struct(), b, occursCheck)
	}
	return nil, false
}

func (s *Substitution) unifyCompound(a *Struct, b Term, occursCheck bool) (*Substitution, bool) {
	var bs *Struct
	switch b := b.(type) {
	case Var:
		if occursCheck && s.occurs(b, a) {
			return nil, false
		}
		return s.Bind(b, a), true
	case *Struct:
		bs = b
	case *Clause:
		bs = b.Struct()
	default:
		return nil, false
	}
	if a.Functor != bs.Functor || len(a.Args) != len(bs.Args) {
		return nil, false
	}
	out := s
	for i := range a.Args {
		var ok bool
		if out, ok = out.Unify(a.Args[i], bs.Args[i], occursCheck); !ok {
			return nil, false
		}
	}
	return out, true
}

// occurs reports whether v appears in t under s.
func (s *Substitution) occurs(v Var, t Term) bool {
	switch t := s.Resolve(t).(type) {
	case Var:
		return t.ID == v.ID
	case *Struct:
		for _, a := range t.Args {
			if s.occurs(v, a) {
				return true
			}
		}
	case *Clause:
		return s.occurs(v, t.Struct())
	}
	return false
}
