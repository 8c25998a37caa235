package reader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clausal/internal/term"
)

func TestParseTerm_RoundTripsThroughFormat(t *testing.T) {
	cases := []string{
		"foo",
		"f(a,b)",
		"[1,2,3]",
		"[H|T]",
		"{a,b}",
		"X is 1+2*3",
		"(1+2)*3",
		"p :- q,r",
		"a ; b -> c",
		"\\+a",
		"- 1",
		"-1",
		"1- -1",
		"'hello world'",
		"f((a,b))",
		"X='Foo'",
		"2.5",
	}
	for _, src := range cases {
		tm, err := ParseTerm(src)
		require.NoError(t, err, src)
		assert.Equal(t, src, term.Format(tm), src)
	}
}

func TestParseTerm_OperatorPrecedence(t *testing.T) {
	tm := MustParseTerm("a :- b, c ; d -> e")
	s := tm.(*term.Struct)
	require.Equal(t, ":-", s.Functor)
	body := s.Args[1].(*term.Struct)
	assert.Equal(t, ";", body.Functor)
	assert.Equal(t, ",", body.Args[0].(*term.Struct).Functor)
	assert.Equal(t, "->", body.Args[1].(*term.Struct).Functor)

	minus := MustParseTerm("1 - 2 - 3").(*term.Struct)
	assert.Equal(t, "1-2-3", term.Format(minus))
	assert.Equal(t, term.Integer(3), minus.Args[1], "yfx is left associative")
}

func TestParseTerm_Numbers(t *testing.T) {
	assert.Equal(t, term.Term(term.Integer(97)), MustParseTerm("0'a"))
	assert.Equal(t, term.Term(term.Integer(255)), MustParseTerm("0xff"))
	assert.Equal(t, term.Term(term.Integer(5)), MustParseTerm("0b101"))
	assert.Equal(t, term.Term(term.Integer(8)), MustParseTerm("0o10"))
	assert.Equal(t, term.Term(term.Real(0.5)), MustParseTerm("0.5"))
	assert.Equal(t, term.Term(term.Integer(-3)), MustParseTerm("-3"))
}

func TestParseTerm_StringsAndQuotes(t *testing.T) {
	assert.Equal(t, term.Term(term.Atom("it's")), MustParseTerm("'it''s'"))
	assert.Equal(t, term.Term(term.Atom("a\nb")), MustParseTerm(`'a\nb'`))
	assert.Equal(t, term.Term(term.Atom("text")), MustParseTerm(`"text"`))
}

func TestParseTerm_OperatorAsAtom(t *testing.T) {
	tm := MustParseTerm("X = -")
	s := tm.(*term.Struct)
	assert.Equal(t, term.Term(term.Atom("-")), s.Args[1])

	tm = MustParseTerm("f(+, -)")
	assert.Equal(t, "f(+,-)", term.Format(tm))
}

func TestParseTerm_Variables(t *testing.T) {
	q, err := ParseQuery("f(X, Y, _, X, _)")
	require.NoError(t, err)
	require.Len(t, q.Vars, 2)
	assert.Equal(t, "X", q.Vars[0].Name)
	assert.Equal(t, "Y", q.Vars[1].Name)

	s := q.Goal.(*term.Struct)
	assert.Equal(t, s.Args[0], s.Args[3], "same name is the same variable")
	assert.NotEqual(t, s.Args[2], s.Args[4], "each _ is distinct")
}

func TestReadClauses_Program(t *testing.T) {
	src := `
% family facts
parent(tom, bob).
parent(bob, ann).   /* block
                       comment */
grandparent(X, Z) :- parent(X, Y), parent(Y, Z).
:- initialization(main).
`
	clauses, err := ParseClauses(src)
	require.NoError(t, err)
	require.Len(t, clauses, 4)

	assert.True(t, clauses[0].IsFact())
	assert.Equal(t, "grandparent(X,Z) :- parent(X,Y),parent(Y,Z)", term.Format(clauses[2]))
	assert.True(t, clauses[3].IsDirective())
}

func TestReadClauses_OpDirective(t *testing.T) {
	r := New()
	clauses, err := r.ReadClauses(strings.NewReader(`
:- op(700, xfx, ===>).
rule(a ===> b).
`))
	require.NoError(t, err)
	require.Len(t, clauses, 2)
	assert.Equal(t, "rule(a===>b)", term.Format(clauses[1].Head))

	_, ok := r.Ops().Infix("===>")
	assert.True(t, ok)
}

func TestReadClauses_SyntaxErrorHasPosition(t *testing.T) {
	_, err := ParseClauses("ok.\nbad(.\n")
	require.Error(t, err)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Line)
}

func TestReadQuery_OptionalTerminator(t *testing.T) {
	q1, err := ParseQuery("member(X, [1,2])")
	require.NoError(t, err)
	q2, err := ParseQuery("member(X, [1,2]).")
	require.NoError(t, err)
	assert.True(t, term.StructurallyEquals(q1.Goal, q2.Goal))

	q3, err := ParseQuery("?- true.")
	require.NoError(t, err)
	assert.Equal(t, term.Term(term.True), q3.Goal)
}
