package theory

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clausal/internal/term"
)

func f(name string, args ...term.Term) term.Term { return term.NewStruct(name, args...) }

func fact(name string, args ...term.Term) *term.Clause { return term.NewFact(f(name, args...)) }

func formats(seq func(func(*term.Clause) bool)) []string {
	var out []string
	for c := range seq {
		out = append(out, term.Format(c))
	}
	return out
}

func TestTheory_AssertzAppendsAssertaPrepends(t *testing.T) {
	kb := Empty()
	kb, err := kb.Assert(fact("p", term.Integer(1)), false)
	require.NoError(t, err)
	kb, err = kb.Assert(fact("p", term.Integer(2)), false)
	require.NoError(t, err)
	kb, err = kb.Assert(fact("p", term.Integer(0)), true)
	require.NoError(t, err)

	got := formats(kb.Get(f("p", term.NewVar("X"))))
	assert.Equal(t, []string{"p(0) :- true", "p(1) :- true", "p(2) :- true"}, got)
	assert.Equal(t, uint64(3), kb.Version())
	assert.Equal(t, 3, kb.Len())
}

func TestTheory_AssertIsPersistent(t *testing.T) {
	before := MustNew(fact("p", term.Atom("a")))
	after, err := before.Assert(fact("p", term.Atom("b")), false)
	require.NoError(t, err)

	assert.Equal(t, 1, before.Count(f("p", term.NewVar("X"))))
	assert.Equal(t, 2, after.Count(f("p", term.NewVar("X"))))
}

func TestTheory_AssertRejectsInvalidClauses(t *testing.T) {
	cases := map[string]*term.Clause{
		"number head":    term.NewRule(term.Integer(1), term.True),
		"number body":    term.NewRule(term.Atom("p"), term.Integer(3)),
		"number in conj": term.NewRule(term.Atom("p"), term.Conj(term.True, term.Integer(3))),
		"variable head":  term.NewRule(term.NewVar("H"), term.True),
		"nil clause":     nil,
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Empty().Assert(c, false)
			require.Error(t, err)
			assert.True(t, IsInvalidClause(err))
		})
	}

	_, err := Empty().Assert(term.NewRule(term.Atom("p"), term.NewVar("G")), false)
	assert.NoError(t, err, "a variable body is allowed")
}

func TestTheory_GetFiltersOnBoundArguments(t *testing.T) {
	x := term.NewVar("X")
	kb := MustNew(
		fact("color", term.Atom("sky"), term.Atom("blue")),
		fact("color", term.Atom("grass"), term.Atom("green")),
		fact("color", x, term.Atom("grey")),
		fact("color", term.Atom("sky"), term.Atom("black")),
		fact("shape", term.Atom("sky")),
	)

	got := formats(kb.Get(f("color", term.Atom("sky"), term.NewVar("C"))))
	assert.Equal(t, []string{
		"color(sky,blue) :- true",
		"color(X,grey) :- true",
		"color(sky,black) :- true",
	}, got, "matching key plus wildcard bucket, in declaration order")

	assert.Equal(t, 2, kb.Count(f("color", term.Atom("grass"), term.Atom("green"))), "grass plus the wildcard")
	assert.Equal(t, 1, kb.Count(f("color", term.Atom("grass"), term.Atom("red"))), "second argument narrows too")
	assert.Equal(t, 0, kb.Count(f("color", term.Atom("sea"), term.Atom("blue"))))
}

func TestTheory_NegativeZeroSharesBucketWithZero(t *testing.T) {
	negZero := term.Real(math.Copysign(0, -1))
	require.True(t, math.Signbit(float64(negZero)))

	kb := MustNew(fact("p", negZero), fact("p", term.Real(0.5)))
	assert.Equal(t, 1, kb.Count(f("p", term.Real(0))), "0.0 unifies with -0.0")

	kb = MustNew(fact("p", term.Real(0)))
	assert.Equal(t, 1, kb.Count(f("p", negZero)))

	res := kb.Retract(fact("p", negZero))
	require.True(t, res.OK)
	assert.Equal(t, 0, res.Theory.Len())
}

func TestTheory_VariableArgumentFansOutInDeclarationOrder(t *testing.T) {
	var clauses []*term.Clause
	keys := []term.Term{term.Atom("b"), term.Integer(1), term.Atom("a"), f("g", term.Atom("x")), term.Real(1.5), term.Atom("b")}
	for i, k := range keys {
		clauses = append(clauses, fact("q", k, term.Integer(int64(i))))
	}
	kb := MustNew(clauses...)

	var order []term.Term
	for c := range kb.Get(f("q", term.NewVar("K"), term.NewVar("I"))) {
		order = append(order, term.Args(c.Head)[1])
	}
	want := []term.Term{term.Integer(0), term.Integer(1), term.Integer(2), term.Integer(3), term.Integer(4), term.Integer(5)}
	assert.Equal(t, want, order)
}

func TestTheory_GetStopsEarly(t *testing.T) {
	kb := MustNew(fact("n", term.Integer(1)), fact("n", term.Integer(2)), fact("n", term.Integer(3)))
	var seen int
	for range kb.Get(f("n", term.NewVar("X"))) {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestTheory_AtomsAndArityAreSeparatePredicates(t *testing.T) {
	kb := MustNew(
		term.NewFact(term.Atom("go")),
		fact("go", term.Atom("now")),
	)
	assert.Equal(t, 1, kb.Count(term.Atom("go")))
	assert.Equal(t, 1, kb.Count(f("go", term.NewVar("X"))))
	assert.True(t, kb.Defines(term.Indicator{Name: "go", Arity: 0}))
	assert.False(t, kb.Defines(term.Indicator{Name: "go", Arity: 2}))
	assert.Equal(t, []term.Indicator{{Name: "go"}, {Name: "go", Arity: 1}}, kb.Indicators())
}

func TestTheory_DeepArgumentsBeyondIndexDepth(t *testing.T) {
	kb := MustNew(
		fact("w", term.Atom("a"), term.Atom("b"), term.Atom("c"), term.Atom("d")),
		fact("w", term.Atom("a"), term.Atom("b"), term.Atom("c"), term.Atom("e")),
	)
	// Only the first three arguments are indexed; the fourth is left to
	// unification.
	assert.Equal(t, 2, kb.Count(f("w", term.Atom("a"), term.Atom("b"), term.Atom("c"), term.Atom("z"))))
}

func TestTheory_RetractRoundTripRestoresContent(t *testing.T) {
	before := MustNew(fact("p", term.Atom("a")), fact("p", term.Atom("b")))
	c := fact("p", term.Atom("c"))

	mid, err := before.Assert(c, false)
	require.NoError(t, err)
	res := mid.Retract(c)
	require.True(t, res.OK)
	require.Len(t, res.Removed, 1)

	assert.True(t, res.Theory.Equal(before))
	assert.False(t, mid.Equal(before))
	assert.Equal(t, 3, mid.Len(), "retract leaves the source version alone")

	h1, err := before.ContentHash()
	require.NoError(t, err)
	h2, err := res.Theory.ContentHash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestTheory_RetractNoMatchLeavesTheoryUnchanged(t *testing.T) {
	kb := MustNew(fact("p", term.Atom("a")))
	res := kb.Retract(fact("p", term.Atom("z")))
	assert.False(t, res.OK)
	assert.Empty(t, res.Removed)
	assert.Same(t, kb, res.Theory)
}

func TestTheory_RetractRemovesFirstMatchOnly(t *testing.T) {
	kb := MustNew(fact("p", term.Integer(1)), fact("p", term.Integer(2)), fact("p", term.Integer(3)))
	res := kb.Retract(fact("p", term.NewVar("X")))
	require.True(t, res.OK)
	assert.Equal(t, "p(1) :- true", term.Format(res.Removed[0]))
	assert.Equal(t, []string{"p(2) :- true", "p(3) :- true"}, formats(res.Theory.Get(f("p", term.NewVar("Y")))))
}

func TestTheory_RetractAll(t *testing.T) {
	kb := MustNew(
		fact("p", term.Integer(1)),
		fact("q", term.Integer(1)),
		fact("p", term.Integer(2)),
		term.NewRule(f("p", term.Integer(3)), term.Atom("q")),
	)
	res := kb.RetractAll(fact("p", term.NewVar("X")))
	require.True(t, res.OK)
	assert.Len(t, res.Removed, 2, "rules with a non-true body do not match a fact pattern")
	assert.Equal(t, 2, res.Theory.Len())
	assert.True(t, res.Theory.Defines(term.Indicator{Name: "p", Arity: 1}))

	res = res.Theory.RetractAll(term.NewRule(f("p", term.NewVar("X")), term.NewVar("B")))
	require.True(t, res.OK)
	assert.False(t, res.Theory.Defines(term.Indicator{Name: "p", Arity: 1}), "empty predicates are pruned from the tree")
}

func TestTheory_Directives(t *testing.T) {
	d1 := term.NewDirective(f("init", term.Integer(1)))
	d2 := term.NewDirective(f("init", term.Integer(2)))
	kb := MustNew(d1, fact("p", term.Atom("a")), d2)

	got := slices.Collect(kb.Get(term.NewDirective(term.NewVar("G"))))
	assert.Equal(t, []*term.Clause{d1, d2}, got)
	assert.Equal(t, 0, kb.Count(f("init", term.NewVar("X"))), "directives are not rules")

	res := kb.Retract(term.NewDirective(f("init", term.Integer(2))))
	require.True(t, res.OK)
	assert.Equal(t, 2, res.Theory.Len())
}

func TestTheory_ClausesAreInDeclarationOrder(t *testing.T) {
	kb := MustNew(fact("b", term.Integer(1)), fact("a", term.Integer(1)), fact("b", term.Integer(2)))
	kb, err := kb.Assert(fact("c", term.Integer(0)), true)
	require.NoError(t, err)

	var got []string
	for _, c := range kb.Clauses() {
		got = append(got, term.Format(c.Head))
	}
	assert.Equal(t, []string{"c(0)", "b(1)", "a(1)", "b(2)"}, got)
}

func TestTheory_Merge(t *testing.T) {
	a := MustNew(fact("p", term.Integer(1)))
	b := MustNew(fact("p", term.Integer(2)))
	m, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"p(1) :- true", "p(2) :- true"}, formats(m.Get(f("p", term.NewVar("X")))))
}
