package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitution_NilIsEmpty(t *testing.T) {
	var s *Substitution
	assert.Equal(t, 0, s.Len())
	_, ok := s.Lookup(NewVar("X"))
	assert.False(t, ok)
	assert.Equal(t, Term(Atom("a")), s.Apply(Atom("a")))
}

func TestSubstitution_BindIsPersistent(t *testing.T) {
	x, y := NewVar("X"), NewVar("Y")
	var s0 *Substitution
	s1 := s0.Bind(x, Atom("a"))
	s2 := s1.Bind(y, Atom("b"))

	assert.Equal(t, 1, s1.Len())
	assert.Equal(t, 2, s2.Len())
	_, ok := s1.Lookup(y)
	assert.False(t, ok, "older version must not see newer bindings")
}

func TestSubstitution_ManyBindingsStayOrdered(t *testing.T) {
	var s *Substitution
	vars := make([]Var, 200)
	for i := range vars {
		vars[i] = NewVar("")
	}
	// insert in a scrambled order to exercise rebalancing
	for i := range vars {
		j := (i * 7919) % len(vars)
		s = s.Bind(vars[j], Integer(j))
	}
	require.Equal(t, len(vars), s.Len())
	for i, v := range vars {
		got, ok := s.Lookup(v)
		require.True(t, ok)
		assert.Equal(t, Term(Integer(i)), got)
	}

	var last int64 = -1
	for v := range s.All() {
		assert.Greater(t, v.ID, last)
		last = v.ID
	}
}

func TestSubstitution_ApplyIsIdempotent(t *testing.T) {
	x, y, z := NewVar("X"), NewVar("Y"), NewVar("Z")
	s, ok := Unify(f("p", x, f("g", y), z), f("p", f("h", y), f("g", Atom("a")), x))
	require.True(t, ok)

	tm := f("r", x, y, z)
	once := s.Apply(tm)
	twice := s.Apply(once)
	assert.True(t, Equals(once, twice))
	assert.Equal(t, "r(h(a),a,h(a))", Format(once))
}

func TestSubstitution_Compose(t *testing.T) {
	x, y := NewVar("X"), NewVar("Y")
	var a, b *Substitution
	a = a.Bind(x, Atom("1"))
	b = b.Bind(y, Atom("2"))

	c, ok := a.Compose(b, false)
	require.True(t, ok)
	assert.Equal(t, 2, c.Len())

	conflict := (*Substitution)(nil).Bind(x, Atom("other"))
	_, ok = a.Compose(conflict, false)
	assert.False(t, ok)
}

func TestSubstitution_RestrictDropsUnboundAndForeign(t *testing.T) {
	x, y, tmp := NewVar("X"), NewVar("Y"), NewVar("")
	s, ok := Unify(f("p", x, tmp), f("p", f("f", tmp), Atom("a")))
	require.True(t, ok)

	r := s.Restrict([]Var{x, y})
	assert.Equal(t, 1, r.Len())
	got, _ := r.Lookup(x)
	assert.Equal(t, "f(a)", Format(got))
}
