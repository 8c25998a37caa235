package engine

import "github.com/roach88/clausal/internal/term"

// ChoicePoint records a goal with untried alternatives. Choice points chain
// to the root through Parent; the chain is shared by every context created
// after the choice point was pushed.
//
// An alternative is one of: the remaining candidate clauses for a user
// predicate, the rest of a primitive's response stream, or the second branch
// of a disjunction.
type ChoicePoint struct {
	Parent *ChoicePoint

	// Context is the snapshot to restore on backtracking.
	Context *Context

	// Frame is the goal the alternatives belong to.
	Frame *Frame

	clauses []*term.Clause
	stream  *Responses
	branch  *Frame
}

// HasOpenAlternatives reports whether this choice point can still produce an
// alternative. A primitive stream counts as open until it is known to be
// exhausted.
func (cp *ChoicePoint) HasOpenAlternatives() bool {
	switch {
	case cp.stream != nil:
		return !cp.stream.Done()
	case cp.branch != nil:
		return true
	}
	return len(cp.clauses) > 0
}

// PathToRoot returns the nearest choice point, starting at cp, with an open
// alternative, or nil when the search space is exhausted.
func (cp *ChoicePoint) PathToRoot() *ChoicePoint {
	for c := cp; c != nil; c = c.Parent {
		if c.HasOpenAlternatives() {
			return c
		}
	}
	return nil
}

// Depth returns the length of the chain from cp to the root.
func (cp *ChoicePoint) Depth() int {
	n := 0
	for c := cp; c != nil; c = c.Parent {
		n++
	}
	return n
}

func clauseChoice(parent *ChoicePoint, ctx *Context, f *Frame, rest []*term.Clause) *ChoicePoint {
	return &ChoicePoint{Parent: parent, Context: ctx, Frame: f, clauses: rest}
}

func streamChoice(parent *ChoicePoint, ctx *Context, f *Frame, s *Responses) *ChoicePoint {
	return &ChoicePoint{Parent: parent, Context: ctx, Frame: f, stream: s}
}

func branchChoice(parent *ChoicePoint, ctx *Context, alt *Frame) *ChoicePoint {
	return &ChoicePoint{Parent: parent, Context: ctx, Frame: alt, branch: alt}
}
