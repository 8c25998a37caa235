package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStruct_ZeroArgsIsAtom(t *testing.T) {
	assert.Equal(t, Term(Atom("foo")), NewStruct("foo"))
	s, ok := NewStruct("foo", Atom("a")).(*Struct)
	assert.True(t, ok)
	assert.Equal(t, 1, s.Arity())
}

func TestClause_Kinds(t *testing.T) {
	fact := NewFact(f("p", Atom("a")))
	assert.True(t, fact.IsFact())
	assert.False(t, fact.IsDirective())
	assert.Equal(t, Indicator{Name: "p", Arity: 1}, fact.Indicator())

	dir := NewDirective(Atom("init"))
	assert.True(t, dir.IsDirective())
	assert.Equal(t, ":-/1", dir.Indicator().String())

	rule := NewRule(Atom("p"), Atom("q"))
	assert.False(t, rule.IsFact())
}

func TestCapabilities(t *testing.T) {
	x := NewVar("X")
	assert.True(t, IsCallable(Atom("a")))
	assert.True(t, IsCallable(f("f", x)))
	assert.False(t, IsCallable(Integer(1)))
	assert.False(t, IsCallable(x))

	assert.True(t, IsList(EmptyList))
	assert.True(t, IsList(List(Atom("a"), Atom("b"))))
	assert.False(t, IsList(ListWithTail(x, Atom("a"))))
	assert.True(t, IsCons(ListWithTail(x, Atom("a"))))

	assert.True(t, IsSet(EmptySet))
	assert.True(t, IsSet(Set(Atom("a"))))
	assert.True(t, IsTuple(Conj(Atom("a"), Atom("b"))))
	assert.False(t, IsTuple(Conj(Atom("a"))))

	assert.True(t, IsGround(f("f", Atom("a"), List(Integer(1)))))
	assert.False(t, IsGround(f("f", x)))
	assert.True(t, IsClauseTerm(f(":-", Atom("a"), Atom("b"))))
}

func TestVars_FirstAppearanceOrder(t *testing.T) {
	x, y, z := NewVar("X"), NewVar("Y"), NewVar("Z")
	assert.Equal(t, []Var{y, x, z}, Vars(f("f", y, f("g", x, y), z)))
}

func TestListSlice(t *testing.T) {
	tail := NewVar("T")
	elems, rest := ListSlice(ListWithTail(tail, Atom("a"), Atom("b")))
	assert.Equal(t, []Term{Atom("a"), Atom("b")}, elems)
	assert.Equal(t, Term(tail), rest)
}

func TestToClause(t *testing.T) {
	c, ok := ToClause(f(":-", f("p", Atom("a")), Atom("q")))
	assert.True(t, ok)
	assert.Equal(t, "p(a)", Format(c.Head))

	c, ok = ToClause(Atom("p"))
	assert.True(t, ok)
	assert.True(t, c.IsFact())

	_, ok = ToClause(Integer(1))
	assert.False(t, ok)
}
