package term

// Scope renames variables consistently: within one Scope the same source
// variable always maps to the same fresh variable. Fresh variables are
// unnamed. Reuse a Scope to rename the head and body of a clause together.
type Scope struct {
	renamed map[int64]Var
}

// NewScope creates an empty renaming scope.
func NewScope() *Scope {
	return &Scope{renamed: map[int64]Var{}}
}

// Copy returns t with every variable replaced by its fresh counterpart.
func (sc *Scope) Copy(t Term) Term {
	switch t := t.(type) {
	case Var:
		if v, ok := sc.renamed[t.ID]; ok {
			return v
		}
		v := NewVar("")
		sc.renamed[t.ID] = v
		return v
	case *Struct:
		args := make([]Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = sc.Copy(a)
		}
		return &Struct{Functor: t.Functor, Args: args}
	case *Clause:
		return sc.CopyClause(t)
	default:
		return t
	}
}

// CopyClause renames a clause's head and body in this scope.
func (sc *Scope) CopyClause(c *Clause) *Clause {
	out := &Clause{Body: sc.Copy(c.Body)}
	if c.Head != nil {
		out.Head = sc.Copy(c.Head)
	}
	return out
}

// Len returns how many variables the scope has renamed so far.
func (sc *Scope) Len() int { return len(sc.renamed) }

// FreshCopy renames every variable of t in a new scope.
func FreshCopy(t Term) Term {
	return NewScope().Copy(t)
}
