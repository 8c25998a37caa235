package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clausal/internal/term"
	"github.com/roach88/clausal/internal/theory"
)

// unifyLibrary provides =/2 for tests that need explicit unification.
func unifyLibrary() *Library {
	l := NewLibrary()
	l.Register(Signature{Name: "=", Arity: 2}, func(r *Request) *Responses {
		return r.UnifyOnce(r.Args[0], r.Args[1])
	})
	return l
}

// testLibrary holds primitives exercising each response shape.
func testLibrary() *Library {
	l := unifyLibrary()
	l.Register(Signature{Name: "digit", Arity: 1}, func(r *Request) *Responses {
		var rs []Response
		for i := 1; i <= 3; i++ {
			if sub, ok := r.Unify(r.Args[0], term.Integer(i)); ok {
				rs = append(rs, r.Success(sub))
			}
		}
		return Of(rs...)
	})
	l.Register(Signature{Name: "count", Arity: 1}, func(r *Request) *Responses {
		n := 0
		return Stream(func() (Response, bool, bool) {
			n++
			sub, ok := r.Unify(r.Args[0], term.Integer(n))
			if !ok {
				return Response{}, false, false
			}
			return r.Success(sub), true, true
		})
	})
	l.Register(Signature{Name: "remember", Arity: 1}, func(r *Request) *Responses {
		fact := term.NewFact(term.NewStruct("seen", r.Apply(0)))
		kb, err := r.Context.DynamicKB.Assert(fact, false)
		if err != nil {
			return r.Raise(err)
		}
		resp := r.Success(r.Context.Substitution)
		resp.DynamicKB = kb
		return Of(resp)
	})
	l.Register(Signature{Name: "broken", Arity: 0}, func(r *Request) *Responses {
		return r.Raise(TypeError("integer", term.Atom("x")))
	})
	l.Register(Signature{Name: "tag", Arity: 1, Variadic: true}, func(r *Request) *Responses {
		return r.UnifyOnce(r.Args[0], term.Integer(len(r.Args)))
	})
	return l
}

func TestPrimitive_FixedResponsesBacktrack(t *testing.T) {
	s := newTestSolver(t, "", WithLibrary(testLibrary()))
	sols := solveAll(t, s, "digit(X)")

	assert.Equal(t, []string{"X=1", "X=2", "X=3"}, answers(sols))
	assert.Len(t, sols, 3, "the last response closes the stream")
}

func TestPrimitive_StreamIsLazy(t *testing.T) {
	s := newTestSolver(t, "", WithLibrary(testLibrary()))
	sols := s.Solve(context.Background(), term.NewStruct("count", term.NewVar("N")))

	var got []string
	for sol := range sols.All() {
		got = append(got, term.Format(sol.Bindings()[0].Value))
		if len(got) == 4 {
			break
		}
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, got)
	assert.True(t, sols.HasMore())
}

func TestPrimitive_ErrorIsCatchable(t *testing.T) {
	s := newTestSolver(t, "", WithLibrary(testLibrary()))
	sols := solveAll(t, s, "catch(broken, error(type_error(T, C), Where), true)")
	assert.Equal(t, []string{"T=integer C=x Where=broken/0"}, answers(sols))
}

func TestPrimitive_VariadicLookup(t *testing.T) {
	s := newTestSolver(t, "", WithLibrary(testLibrary()))
	assert.Equal(t, []string{"N=1"}, answers(solveAll(t, s, "tag(N)")))
	assert.Equal(t, []string{"N=3"}, answers(solveAll(t, s, "tag(N, a, b)")))
}

func TestPrimitive_KnowledgeBaseChangesSurviveBacktracking(t *testing.T) {
	s := newTestSolver(t, "", WithLibrary(testLibrary()))

	sols := solveAll(t, s, "(remember(a) ; remember(b)), fail")
	assert.Equal(t, []Kind{KindNo}, kinds(sols))

	assert.Equal(t, 2, s.DynamicKB().Len())
	assert.Equal(t, []string{"X=a", "X=b"}, answers(solveAll(t, s, "seen(X)")))
}

func TestPrimitive_LogicalUpdateView(t *testing.T) {
	s := newTestSolver(t, "", WithLibrary(testLibrary()), WithDynamic(theory.MustNew(
		term.NewFact(term.NewStruct("seen", term.Integer(0))),
	)))

	// Clauses added while seen/1 is running are not among its alternatives.
	sols := solveAll(t, s, "seen(X), remember(1)")
	assert.Equal(t, []string{"X=0"}, answers(sols))
	assert.Equal(t, 2, s.DynamicKB().Len())
}

func TestLibrary_LookupAndMerge(t *testing.T) {
	l := testLibrary()

	sig, _, ok := l.Lookup(term.Indicator{Name: "tag", Arity: 5})
	require.True(t, ok)
	assert.Equal(t, "tag/1+", sig.String())

	_, _, ok = l.Lookup(term.Indicator{Name: "digit", Arity: 2})
	assert.False(t, ok)

	var nilLib *Library
	_, _, ok = nilLib.Lookup(term.Indicator{Name: "true", Arity: 0})
	assert.False(t, ok)

	merged := Builtins().Merge(l)
	for _, want := range []string{"call/1+", "digit/1", "findall/3", "halt/0", "tag/1+"} {
		found := false
		for _, s := range merged.Signatures() {
			if s.String() == want {
				found = true
			}
		}
		assert.True(t, found, want)
	}
}

func TestSolver_InitializeRunsDirectives(t *testing.T) {
	s := newTestSolver(t, `
:- remember(one).
:- fail.
:- remember(two).
`, WithLibrary(testLibrary()))

	require.NoError(t, s.Initialize(context.Background()))
	assert.Equal(t, []string{"X=one", "X=two"}, answers(solveAll(t, s, "seen(X)")))
}

func TestSolver_InitializeStopsOnError(t *testing.T) {
	s := newTestSolver(t, `
:- throw(bad).
:- remember(never).
`, WithLibrary(testLibrary()))

	err := s.Initialize(context.Background())
	require.Error(t, err)
	ball, ok := ThrownBall(err)
	require.True(t, ok)
	assert.Equal(t, term.Atom("bad"), ball)
	assert.Equal(t, 0, s.DynamicKB().Len())
}

func TestRequest_RaiseKeepsExistingContext(t *testing.T) {
	r := &Request{
		Context:   &Context{},
		Signature: Signature{Name: "p", Arity: 1},
		Args:      []term.Term{term.Atom("a")},
	}
	pe := &PrologError{Type: ErrType, Expected: "integer", Culprit: term.Atom("a"), Context: term.Atom("elsewhere")}
	resp, ok := r.Raise(pe).Next()
	require.True(t, ok)

	var got *PrologError
	require.True(t, errors.As(resp.Err, &got))
	assert.Equal(t, term.Atom("elsewhere"), got.Context)

	resp, _ = r.Raise(TypeError("integer", term.Atom("a"))).Next()
	require.True(t, errors.As(resp.Err, &got))
	assert.Equal(t, "p/1", term.Format(got.Context))
}
