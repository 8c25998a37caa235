package term

import "strings"

// Equals is strict equality: same variant, same value, and for variables the
// same identity. A *Clause and the ':-' compound it denotes are different
// representations, so Equals reports false for that pair in either order.
func Equals(a, b Term) bool {
	switch a := a.(type) {
	case Var, Atom, Integer, Real:
		return a == b
	case *Struct:
		bs, ok := b.(*Struct)
		if !ok || a.Functor != bs.Functor || len(a.Args) != len(bs.Args) {
			return false
		}
		for i := range a.Args {
			if !Equals(a.Args[i], bs.Args[i]) {
				return false
			}
		}
		return true
	case *Clause:
		bc, ok := b.(*Clause)
		if !ok || (a.Head == nil) != (bc.Head == nil) {
			return false
		}
		if a.Head != nil && !Equals(a.Head, bc.Head) {
			return false
		}
		return Equals(a.Body, bc.Body)
	}
	return false
}

// StructurallyEquals is semantic equivalence: variables are interchangeable
// as long as the renaming is consistent in both directions, numbers compare
// by numeric value, and a *Clause equals its ':-' compound.
func StructurallyEquals(a, b Term) bool {
	return variant(a, b, map[int64]int64{}, map[int64]int64{})
}

func variant(a, b Term, ab, ba map[int64]int64) bool {
	switch a := a.(type) {
	case Var:
		bv, ok := b.(Var)
		if !ok {
			return false
		}
		x, seenA := ab[a.ID]
		y, seenB := ba[bv.ID]
		if !seenA && !seenB {
			ab[a.ID], ba[bv.ID] = bv.ID, a.ID
			return true
		}
		return seenA && seenB && x == bv.ID && y == a.ID
	case Atom:
		return a == b
	case Integer, Real:
		x, okA := numeric(a)
		y, okB := numeric(b)
		return okA && okB && x == y
	case *Struct, *Clause:
		as, bs := compound(a), compound(b)
		if bs == nil || as.Functor != bs.Functor || len(as.Args) != len(bs.Args) {
			return false
		}
		for i := range as.Args {
			if !variant(as.Args[i], bs.Args[i], ab, ba) {
				return false
			}
		}
		return true
	}
	return false
}

func compound(t Term) *Struct {
	switch t := t.(type) {
	case *Struct:
		return t
	case *Clause:
		return t.Struct()
	}
	return nil
}

func numeric(t Term) (float64, bool) {
	switch t := t.(type) {
	case Integer:
		return float64(t), true
	case Real:
		return float64(t), true
	}
	return 0, false
}

// Compare orders terms by the standard order: Var < Number < Atom <
// Compound. Numbers compare by value, a Real before an Integer of equal
// value. Compounds compare by arity, then name, then arguments left to right.
func Compare(a, b Term) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}
	switch a := a.(type) {
	case Var:
		return cmpInt(a.ID, b.(Var).ID)
	case Integer, Real:
		x, _ := numeric(a)
		y, _ := numeric(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		_, aReal := a.(Real)
		_, bReal := b.(Real)
		switch {
		case aReal && !bReal:
			return -1
		case !aReal && bReal:
			return 1
		}
		return 0
	case Atom:
		return strings.Compare(string(a), string(b.(Atom)))
	default:
		as, bs := compound(a), compound(b)
		if c := cmpInt(len(as.Args), len(bs.Args)); c != 0 {
			return c
		}
		if c := strings.Compare(as.Functor, bs.Functor); c != 0 {
			return c
		}
		for i := range as.Args {
			if c := Compare(as.Args[i], bs.Args[i]); c != 0 {
				return c
			}
		}
		return 0
	}
}

func rank(t Term) int {
	switch t.(type) {
	case Var:
		return 0
	case Integer, Real:
		return 1
	case Atom:
		return 3
	default:
		return 4
	}
}

func cmpInt[T int | int64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
