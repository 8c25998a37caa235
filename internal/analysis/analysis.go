// Package analysis inspects a theory before it is run: calls to procedures
// that nothing defines, and predicates that call themselves through other
// predicates.
package analysis

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/clausal/internal/engine"
	"github.com/roach88/clausal/internal/term"
	"github.com/roach88/clausal/internal/theory"
)

// Warning codes.
const (
	CodeUndefined = "W101" // called but not defined, asserted or built in
	CodeRecursion = "W102" // mutual recursion between predicates
)

// Warning is one finding.
type Warning struct {
	Code      string   `json:"code"`
	Level     string   `json:"level"` // "warning" or "info"
	Predicate string   `json:"predicate"`
	Path      []string `json:"path,omitempty"` // recursion: p/1 -> q/1 -> p/1
	Message   string   `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}

// callGraph maps each predicate to the predicates its clauses call.
type callGraph map[term.Indicator][]term.Indicator

// Analyze reports undefined procedures and recursion cycles in kb. Goals
// answered by lib are built in. Predicates the theory asserts are treated as
// defined. Warnings are sorted by code, then predicate.
func Analyze(kb *theory.Theory, lib *engine.Library) []Warning {
	w := &walker{lib: lib, graph: callGraph{}, asserted: map[term.Indicator]bool{}, callers: map[term.Indicator][]term.Indicator{}}
	for _, c := range kb.Clauses() {
		if c.IsDirective() {
			w.walk(nil, c.Body)
			continue
		}
		from := c.Indicator()
		if _, ok := w.graph[from]; !ok {
			w.graph[from] = []term.Indicator{}
		}
		w.walk(&from, c.Body)
	}

	var out []Warning
	for ind, callers := range w.callers {
		if kb.Defines(ind) || w.asserted[ind] {
			continue
		}
		out = append(out, undefinedWarning(ind, callers))
	}
	for _, scc := range tarjanSCC(w.graph) {
		if len(scc) > 1 {
			out = append(out, cycleWarning(scc, w.graph))
		}
	}

	slices.SortFunc(out, func(a, b Warning) int {
		return cmp.Or(cmp.Compare(a.Code, b.Code), cmp.Compare(a.Predicate, b.Predicate))
	})
	return out
}

type walker struct {
	lib      *engine.Library
	graph    callGraph
	asserted map[term.Indicator]bool
	callers  map[term.Indicator][]term.Indicator // undefined candidates
}

// walk follows the control constructs and meta-calls of a body. from is nil
// for directives.
func (w *walker) walk(from *term.Indicator, goal term.Term) {
	switch g := goal.(type) {
	case term.Var, term.Integer, term.Real, nil:
		return
	case term.Atom:
		if g == term.True || g == term.Fail || g == term.False || g == term.Cut {
			return
		}
	case *term.Struct:
		switch {
		case len(g.Args) == 2 && (g.Functor == "," || g.Functor == ";" || g.Functor == "->"):
			w.walk(from, g.Args[0])
			w.walk(from, g.Args[1])
			return
		case g.Functor == "catch" && len(g.Args) == 3:
			w.walk(from, g.Args[0])
			w.walk(from, g.Args[2])
			return
		case g.Functor == "findall" && len(g.Args) == 3:
			w.walk(from, g.Args[1])
			return
		case len(g.Args) == 1 && slices.Contains([]string{`\+`, "not", "once", "ignore", "call"}, g.Functor):
			w.walk(from, g.Args[0])
			return
		case g.Functor == "call" && len(g.Args) > 1:
			w.walk(from, addArgs(g.Args[0], g.Args[1:]))
			return
		case len(g.Args) == 1 && slices.Contains([]string{"assert", "asserta", "assertz"}, g.Functor):
			if c, ok := term.ToClause(g.Args[0]); ok && !c.IsDirective() && term.IsCallable(c.Head) {
				w.asserted[c.Indicator()] = true
			}
		}
	}

	ind, ok := term.IndicatorOf(goal)
	if !ok {
		return
	}
	if _, _, builtin := w.lib.Lookup(ind); builtin {
		return
	}
	if from == nil {
		w.callers[ind] = append(w.callers[ind], term.Indicator{Name: ":-"})
		return
	}
	if !slices.Contains(w.graph[*from], ind) {
		w.graph[*from] = append(w.graph[*from], ind)
	}
	if !slices.Contains(w.callers[ind], *from) {
		w.callers[ind] = append(w.callers[ind], *from)
	}
}

// addArgs appends extra arguments to a callable, as call/N does. Anything
// else is returned unchanged.
func addArgs(goal term.Term, extra []term.Term) term.Term {
	switch g := goal.(type) {
	case term.Atom:
		return term.NewStruct(string(g), extra...)
	case *term.Struct:
		return term.NewStruct(g.Functor, append(slices.Clone(g.Args), extra...)...)
	}
	return goal
}

func undefinedWarning(ind term.Indicator, callers []term.Indicator) Warning {
	names := make([]string, len(callers))
	for i, c := range callers {
		if c.Name == ":-" {
			names[i] = "a directive"
			continue
		}
		names[i] = c.String()
	}
	slices.Sort(names)
	return Warning{
		Code:      CodeUndefined,
		Level:     "warning",
		Predicate: ind.String(),
		Message:   fmt.Sprintf("unknown procedure %s called from %s", ind, strings.Join(names, ", ")),
	}
}

// tarjanSCC returns the strongly connected components of g. Nodes are
// visited in sorted order so the result does not depend on map iteration.
func tarjanSCC(g callGraph) [][]term.Indicator {
	var (
		index   = 0
		stack   []term.Indicator
		indices = map[term.Indicator]int{}
		lowlink = map[term.Indicator]int{}
		onStack = map[term.Indicator]bool{}
		sccs    [][]term.Indicator
	)

	var connect func(term.Indicator)
	connect = func(v term.Indicator) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g[v] {
			if _, seen := indices[w]; !seen {
				connect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []term.Indicator
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, v := range sortedNodes(g) {
		if _, seen := indices[v]; !seen {
			connect(v)
		}
	}
	return sccs
}

func sortedNodes(g callGraph) []term.Indicator {
	nodes := make([]term.Indicator, 0, len(g))
	for v := range g {
		nodes = append(nodes, v)
	}
	slices.SortFunc(nodes, compareIndicators)
	return nodes
}

func compareIndicators(a, b term.Indicator) int {
	return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Arity, b.Arity))
}

// cycleWarning describes a multi-predicate cycle, starting from its smallest
// member.
func cycleWarning(scc []term.Indicator, g callGraph) Warning {
	slices.SortFunc(scc, compareIndicators)
	path := cyclePath(scc, g)
	names := make([]string, len(path))
	for i, p := range path {
		names[i] = p.String()
	}
	return Warning{
		Code:      CodeRecursion,
		Level:     "info",
		Predicate: names[0],
		Path:      names,
		Message:   "mutual recursion: " + strings.Join(names, " -> "),
	}
}

// cyclePath follows edges inside the component from its first member until
// it returns there.
func cyclePath(scc []term.Indicator, g callGraph) []term.Indicator {
	members := map[term.Indicator]bool{}
	for _, v := range scc {
		members[v] = true
	}
	start := scc[0]
	path := []term.Indicator{start}
	visited := map[term.Indicator]bool{}
	for cur := start; ; {
		visited[cur] = true
		var next *term.Indicator
		for _, w := range g[cur] {
			if members[w] && (w == start || !visited[w]) {
				next = &w
				break
			}
		}
		if next == nil {
			break
		}
		path = append(path, *next)
		if *next == start {
			break
		}
		cur = *next
	}
	return path
}
