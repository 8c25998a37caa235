package term

import "iter"

type color uint8

const (
	red color = iota
	black
)

// Substitution maps variables to terms. It is a persistent red-black tree
// keyed on variable identity (Okasaki's functional insertion): Bind returns
// a new Substitution and the receiver is never modified. The nil
// *Substitution is the empty substitution and is ready to use.
type Substitution struct {
	color       color
	left, right *Substitution
	v           Var
	t           Term
	size        int
}

// Lookup returns the term v is directly bound to.
func (s *Substitution) Lookup(v Var) (Term, bool) {
	for n := s; n != nil; {
		switch {
		case v.ID < n.v.ID:
			n = n.left
		case v.ID > n.v.ID:
			n = n.right
		default:
			return n.t, true
		}
	}
	return nil, false
}

// Len returns the number of bindings.
func (s *Substitution) Len() int {
	if s == nil {
		return 0
	}
	return s.size
}

// IsEmpty reports whether s has no bindings.
func (s *Substitution) IsEmpty() bool { return s.Len() == 0 }

// Bind returns a substitution extending s with v -> t. An existing binding
// for v is replaced.
func (s *Substitution) Bind(v Var, t Term) *Substitution {
	ret := *s.insert(v, t)
	ret.color = black
	return &ret
}

func (s *Substitution) insert(v Var, t Term) *Substitution {
	if s == nil {
		return &Substitution{color: red, v: v, t: t, size: 1}
	}
	ret := *s
	switch {
	case v.ID < s.v.ID:
		ret.left = s.left.insert(v, t)
		ret.balance()
	case v.ID > s.v.ID:
		ret.right = s.right.insert(v, t)
		ret.balance()
	default:
		ret.v, ret.t = v, t
	}
	ret.size = 1 + ret.left.Len() + ret.right.Len()
	return &ret
}

func (s *Substitution) balance() {
	var (
		a, b, c, d *Substitution
		x, y, z    *Substitution
	)
	switch {
	case s.left != nil && s.left.color == red:
		switch {
		case s.left.left != nil && s.left.left.color == red:
			a, b, c, d = s.left.left.left, s.left.left.right, s.left.right, s.right
			x, y, z = s.left.left, s.left, s
		case s.left.right != nil && s.left.right.color == red:
			a, b, c, d = s.left.left, s.left.right.left, s.left.right.right, s.right
			x, y, z = s.left, s.left.right, s
		default:
			return
		}
	case s.right != nil && s.right.color == red:
		switch {
		case s.right.left != nil && s.right.left.color == red:
			a, b, c, d = s.left, s.right.left.left, s.right.left.right, s.right.right
			x, y, z = s, s.right.left, s.right
		case s.right.right != nil && s.right.right.color == red:
			a, b, c, d = s.left, s.right.left, s.right.right.left, s.right.right.right
			x, y, z = s, s.right, s.right.right
		default:
			return
		}
	default:
		return
	}
	l := &Substitution{color: black, left: a, right: b, v: x.v, t: x.t}
	l.size = 1 + a.Len() + b.Len()
	r := &Substitution{color: black, left: c, right: d, v: z.v, t: z.t}
	r.size = 1 + c.Len() + d.Len()
	*s = Substitution{color: red, left: l, right: r, v: y.v, t: y.t, size: 1 + l.size + r.size}
}

// All yields the bindings in variable-identity order.
func (s *Substitution) All() iter.Seq2[Var, Term] {
	return func(yield func(Var, Term) bool) {
		s.walk(yield)
	}
}

func (s *Substitution) walk(yield func(Var, Term) bool) bool {
	if s == nil {
		return true
	}
	return s.left.walk(yield) && yield(s.v, s.t) && s.right.walk(yield)
}

// Resolve follows the binding chain of a variable and returns the first
// non-variable term or the last unbound variable. Non-variables are returned
// unchanged.
func (s *Substitution) Resolve(t Term) Term {
	v, ok := t.(Var)
	if !ok {
		return t
	}
	for steps := 0; ; steps++ {
		next, bound := s.Lookup(v)
		if !bound {
			return v
		}
		nv, isVar := next.(Var)
		if !isVar {
			return next
		}
		if nv.ID == v.ID || steps > s.Len() {
			return nv
		}
		v = nv
	}
}

// Apply replaces every bound variable in t by its value, transitively.
// Cyclic bindings, only possible without the occurs check, are cut off at
// the variable that closes the cycle.
func (s *Substitution) Apply(t Term) Term {
	if s.IsEmpty() {
		return t
	}
	return s.apply(t, nil)
}

func (s *Substitution) apply(t Term, active []int64) Term {
	switch t := s.Resolve(t).(type) {
	case Var:
		return t
	case *Struct:
		var args []Term
		for i, a := range t.Args {
			na := s.applyArg(a, active)
			if args == nil && na != a {
				args = make([]Term, len(t.Args))
				copy(args, t.Args[:i])
			}
			if args != nil {
				args[i] = na
			}
		}
		if args == nil {
			return t
		}
		return &Struct{Functor: t.Functor, Args: args}
	case *Clause:
		c := &Clause{Body: s.apply(t.Body, active)}
		if t.Head != nil {
			c.Head = s.apply(t.Head, active)
		}
		return c
	default:
		return t
	}
}

func (s *Substitution) applyArg(a Term, active []int64) Term {
	v, ok := a.(Var)
	if !ok {
		return s.apply(a, active)
	}
	for _, id := range active {
		if id == v.ID {
			return v
		}
	}
	return s.apply(a, append(active, v.ID))
}

// Compose returns a substitution holding the bindings of both s and other.
// Where both bind a variable, the two values are unified; incompatible
// bindings make Compose fail.
func (s *Substitution) Compose(other *Substitution, occursCheck bool) (*Substitution, bool) {
	out := s
	for v, t := range other.All() {
		var ok bool
		out, ok = out.Unify(v, t, occursCheck)
		if !ok {
			return nil, false
		}
	}
	return out, true
}

// Restrict returns the applied values of vars, leaving out variables that
// remain unbound. The result is keyed the same way as s.
func (s *Substitution) Restrict(vars []Var) *Substitution {
	var out *Substitution
	for _, v := range vars {
		val := s.Apply(v)
		if w, ok := val.(Var); ok && w.ID == v.ID {
			continue
		}
		out = out.Bind(v, val)
	}
	return out
}
