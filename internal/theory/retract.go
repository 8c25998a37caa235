package theory

import (
	"slices"

	"github.com/roach88/clausal/internal/term"
)

// RetractResult is the outcome of a retraction. When OK is false nothing
// matched and Theory is the receiver, unchanged.
type RetractResult struct {
	Theory  *Theory
	Removed []*term.Clause
	OK      bool
}

// Retract removes the first clause, in declaration order, that unifies with
// pattern.
func (t *Theory) Retract(pattern *term.Clause) RetractResult {
	return t.retract(pattern, 1)
}

// RetractAll removes every clause that unifies with pattern.
func (t *Theory) RetractAll(pattern *term.Clause) RetractResult {
	return t.retract(pattern, -1)
}

func (t *Theory) retract(pattern *term.Clause, limit int) RetractResult {
	var matched []entry
	for e := range t.entries(pattern) {
		if limit >= 0 && len(matched) == limit {
			break
		}
		if _, ok := term.Unify(pattern, term.FreshCopy(e.clause)); ok {
			matched = append(matched, e)
		}
	}
	if len(matched) == 0 {
		return RetractResult{Theory: t}
	}

	out := *t
	out.version++
	removed := make([]*term.Clause, len(matched))
	for i, e := range matched {
		removed[i] = e.clause
		out.removeEntry(e)
	}
	return RetractResult{Theory: &out, Removed: removed, OK: true}
}

// removeEntry drops e from out, which must be a private copy.
func (t *Theory) removeEntry(e entry) {
	if e.clause.IsDirective() {
		t.directives = slices.DeleteFunc(slices.Clone(t.directives), func(d entry) bool {
			return d.seq == e.seq
		})
		return
	}
	ind := e.clause.Indicator()
	rules := t.rules.clone()
	rules.size--
	if n := t.rules.preds[ind].remove(term.Args(e.clause.Head), indexDepth, e.seq); n != nil {
		rules.preds[ind] = n
	} else {
		delete(rules.preds, ind)
	}
	t.rules = rules
}
