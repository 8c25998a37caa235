package term

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEquals_Strict(t *testing.T) {
	x, y := NewVar("X"), NewVar("X")

	assert.True(t, Equals(f("f", x, Integer(1)), f("f", x, Integer(1))))
	assert.False(t, Equals(x, y), "same name, different identity")
	assert.False(t, Equals(Integer(1), Real(1)))
	assert.False(t, Equals(Atom("f"), f("f", Atom("a"))))
}

func TestEquals_ClauseVersusStructIsSymmetric(t *testing.T) {
	c := NewRule(Atom("p"), Atom("q"))
	s := c.Struct()

	assert.False(t, Equals(c, s))
	assert.False(t, Equals(s, c))
	assert.True(t, StructurallyEquals(c, s))
	assert.True(t, StructurallyEquals(s, c))
}

func TestStructurallyEquals_Variants(t *testing.T) {
	x, y, a, b := NewVar("X"), NewVar("Y"), NewVar("A"), NewVar("B")

	assert.True(t, StructurallyEquals(f("f", x, y, x), f("f", a, b, a)))
	assert.False(t, StructurallyEquals(f("f", x, y, x), f("f", a, b, b)))
	assert.False(t, StructurallyEquals(f("f", x, x), f("f", a, b)))
	assert.False(t, StructurallyEquals(f("f", x, y), f("f", a, a)))
	assert.True(t, StructurallyEquals(Integer(2), Real(2)))
	assert.True(t, StructurallyEquals(Real(2), Integer(2)))
}

func TestCompare_StandardOrder(t *testing.T) {
	v := NewVar("V")
	terms := []Term{
		f("f", Atom("b")),
		Atom("a"),
		Integer(2),
		f("f", Atom("a"), Atom("a")),
		Real(1.5),
		v,
		f("g", Atom("a")),
		Real(2),
	}
	slices.SortStableFunc(terms, Compare)

	var got []string
	for _, tm := range terms {
		got = append(got, Format(tm))
	}
	assert.Equal(t, []string{Format(v), "1.5", "2.0", "2", "a", "f(b)", "g(a)", "f(a,a)"}, got)
}
