package theory

import (
	"fmt"
	"iter"
	"slices"

	"github.com/roach88/clausal/internal/term"
)

// Theory is an immutable, versioned clause collection indexed by a
// discrimination tree: directive-vs-rule, then functor and arity, then the
// keys of the leading arguments. Assert and Retract return a new Theory that
// shares every untouched subtree with the receiver, so a snapshot can be read
// from any number of goroutines without locking.
//
// Clauses carry a declaration stamp: assertz takes a stamp above every
// existing one, asserta one below. Retrieval merges the candidate buckets by
// stamp, so results always come back in global declaration order even when
// a query fans out over several buckets.
//
// The zero value is not usable; start from New.
type Theory struct {
	rules      *functorNode
	directives []entry
	version    uint64
	lo, hi     int64 // smallest and largest stamp handed out
}

// New returns a theory holding clauses in the given order.
func New(clauses ...*term.Clause) (*Theory, error) {
	t := &Theory{rules: (*functorNode)(nil).clone()}
	for _, c := range clauses {
		var err error
		if t, err = t.Assert(c, false); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Empty returns a theory with no clauses.
func Empty() *Theory {
	t, _ := New()
	return t
}

// MustNew is New for fixed inputs; it panics on an invalid clause.
func MustNew(clauses ...*term.Clause) *Theory {
	t, err := New(clauses...)
	if err != nil {
		panic(err)
	}
	return t
}

// Version counts the mutations that produced this theory.
func (t *Theory) Version() uint64 { return t.version }

// Len returns the number of clauses.
func (t *Theory) Len() int { return t.rules.size + len(t.directives) }

// Validate checks that c can be stored: the head, if any, must be callable
// and the body must be callable or a variable.
func Validate(c *term.Clause) error {
	if c == nil {
		return &InvalidClauseError{Reason: "nil clause"}
	}
	if c.Head != nil && !term.IsCallable(c.Head) {
		return &InvalidClauseError{Clause: c, Reason: "head is not callable"}
	}
	if c.Body == nil || !(term.IsCallable(c.Body) || term.IsVar(c.Body)) {
		return &InvalidClauseError{Clause: c, Reason: "body is not callable"}
	}
	if term.IsClauseTerm(c.Head) {
		return &InvalidClauseError{Clause: c, Reason: "head is a clause"}
	}
	for _, g := range term.TupleSlice(c.Body) {
		if term.IsNumber(g) {
			return &InvalidClauseError{Clause: c, Reason: "body contains a number"}
		}
	}
	return nil
}

// Assert returns a theory with c added at the front (before) or back of its
// bucket.
func (t *Theory) Assert(c *term.Clause, before bool) (*Theory, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}
	out := *t
	out.version++
	var seq int64
	if before {
		out.lo--
		seq = out.lo
		if t.Len() == 0 {
			out.hi = seq
		}
	} else {
		out.hi++
		seq = out.hi
		if t.Len() == 0 {
			out.lo = seq
		}
	}
	e := entry{seq: seq, clause: c}

	if c.IsDirective() {
		if before {
			out.directives = append([]entry{e}, t.directives...)
		} else {
			out.directives = append(slices.Clip(t.directives), e)
		}
		return &out, nil
	}

	ind := c.Indicator()
	out.rules = t.rules.clone()
	out.rules.size++
	out.rules.preds[ind] = t.rules.preds[ind].insert(term.Args(c.Head), indexDepth, e, before)
	return &out, nil
}

// Get yields the clauses whose head may unify with pattern, in declaration
// order. pattern is a goal (Atom or compound) or a clause; a directive pattern
// yields the stored directives. Arguments should already have the current
// substitution applied. Get narrows by index only; callers still unify.
func (t *Theory) Get(pattern term.Term) iter.Seq[*term.Clause] {
	return func(yield func(*term.Clause) bool) {
		for e := range t.entries(pattern) {
			if !yield(e.clause) {
				return
			}
		}
	}
}

func (t *Theory) entries(pattern term.Term) iter.Seq[entry] {
	return func(yield func(entry) bool) {
		head := pattern
		if c, ok := pattern.(*term.Clause); ok {
			if c.IsDirective() {
				mergeBuckets([][]entry{t.directives}, yield)
				return
			}
			head = c.Head
		}
		ind, ok := term.IndicatorOf(head)
		if !ok {
			return
		}
		buckets := t.rules.preds[ind].collect(term.Args(head), indexDepth, nil)
		mergeBuckets(buckets, yield)
	}
}

// Count returns the number of clauses Get would yield.
func (t *Theory) Count(pattern term.Term) int {
	n := 0
	for range t.entries(pattern) {
		n++
	}
	return n
}

// Defines reports whether any clause for ind is stored.
func (t *Theory) Defines(ind term.Indicator) bool {
	return t.rules.preds[ind] != nil
}

// Indicators returns the stored predicate indicators, sorted.
func (t *Theory) Indicators() []term.Indicator {
	out := make([]term.Indicator, 0, len(t.rules.preds))
	for ind := range t.rules.preds {
		out = append(out, ind)
	}
	slices.SortFunc(out, func(a, b term.Indicator) int {
		if a.Name != b.Name {
			if a.Name < b.Name {
				return -1
			}
			return 1
		}
		return a.Arity - b.Arity
	})
	return out
}

// Clauses returns every clause in declaration order.
func (t *Theory) Clauses() []*term.Clause {
	var buckets [][]entry
	if len(t.directives) > 0 {
		buckets = append(buckets, t.directives)
	}
	for _, n := range t.rules.preds {
		buckets = n.collectAll(buckets)
	}
	out := make([]*term.Clause, 0, t.Len())
	mergeBuckets(buckets, func(e entry) bool {
		out = append(out, e.clause)
		return true
	})
	return out
}

func (n *argNode) collectAll(out [][]entry) [][]entry {
	if n == nil {
		return out
	}
	if len(n.bucket) > 0 {
		out = append(out, n.bucket)
	}
	for _, c := range n.children {
		out = c.collectAll(out)
	}
	return n.wildcard.collectAll(out)
}

// Equal reports content equality: the same clauses in the same order.
// Versions are ignored.
func (t *Theory) Equal(other *Theory) bool {
	a, b := t.Clauses(), other.Clauses()
	return slices.EqualFunc(a, b, func(x, y *term.Clause) bool {
		return term.StructurallyEquals(x, y)
	})
}

// ContentHash returns the content address of the clause list.
func (t *Theory) ContentHash() (string, error) {
	clauses := t.Clauses()
	hashes := make([]string, len(clauses))
	for i, c := range clauses {
		h, err := term.ClauseHash(c)
		if err != nil {
			return "", fmt.Errorf("hash clause %d: %w", i, err)
		}
		hashes[i] = h
	}
	return term.TheoryHash(hashes)
}

// Merge returns a theory holding t's clauses followed by other's.
func (t *Theory) Merge(other *Theory) (*Theory, error) {
	out := t
	for _, c := range other.Clauses() {
		var err error
		if out, err = out.Assert(c, false); err != nil {
			return nil, err
		}
	}
	return out, nil
}
