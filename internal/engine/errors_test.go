package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/clausal/internal/term"
)

func TestPrologError_Term(t *testing.T) {
	ctx := term.Indicator{Name: "is", Arity: 2}.Term()
	tests := []struct {
		name string
		err  *PrologError
		want string
	}{
		{"instantiation", InstantiationError(term.NewVar("X")), "instantiation_error"},
		{"type", TypeError("integer", term.Atom("a")), "type_error(integer,a)"},
		{"evaluation", EvaluationError("zero_divisor"), "evaluation_error(zero_divisor)"},
		{"resource", ResourceError("solve_depth"), "resource_error(solve_depth)"},
		{"existence", ExistenceError("procedure", term.Indicator{Name: "p", Arity: 1}.Term()), "existence_error(procedure,p/1)"},
		{"permission", PermissionError("modify", "static_procedure", term.Atom("p")), "permission_error(modify,static_procedure,p)"},
		{"system", SystemError("boom", nil), "system_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := *tt.err
			e.Context = ctx
			assert.Equal(t, "error("+tt.want+",is/2)", term.Format(e.Term()))
		})
	}
}

func TestPrologError_MissingContextIsVariable(t *testing.T) {
	ball := TypeError("integer", term.Atom("a")).Term().(*term.Struct)
	assert.True(t, term.IsVar(ball.Args[1]))
}

func TestErrorPredicates_WalkWrappedChain(t *testing.T) {
	inner := TypeError("integer", term.Atom("a"))
	err := SystemError(MsgNoCatch, &ThrownError{Ball: inner.Term(), Err: inner})

	assert.True(t, IsSystemError(err))
	assert.True(t, IsTypeError(err))
	assert.False(t, IsInstantiationError(err))
	assert.Contains(t, err.Error(), "uncaught exception: error(type_error(integer,a)")
}

func TestIsFatal(t *testing.T) {
	assert.True(t, isFatal(&HaltError{}))
	assert.True(t, isFatal(&TimeoutError{QueryID: "q"}))
	assert.True(t, isFatal(&StepsExceededError{QueryID: "q"}))
	assert.True(t, isFatal(fmt.Errorf("wrapped: %w", context.Canceled)))
	assert.False(t, isFatal(InstantiationError(nil)))
	assert.False(t, isFatal(&ThrownError{Ball: term.Atom("x")}))
}

func TestBallOf(t *testing.T) {
	assert.Equal(t, term.Atom("x"), ballOf(&ThrownError{Ball: term.Atom("x")}))

	ball := ballOf(fmt.Errorf("disk on fire")).(*term.Struct)
	assert.Equal(t, "error", ball.Functor)
	assert.Equal(t, term.Term(term.Atom(ErrSystem)), ball.Args[0])
}

func TestFlags(t *testing.T) {
	f := DefaultFlags()
	assert.False(t, f.OccursCheck())
	assert.Equal(t, UnknownWarning, f.Unknown())

	g := f.Set(FlagOccursCheck, term.True)
	assert.True(t, g.OccursCheck())
	assert.False(t, f.OccursCheck(), "Set copies")
	assert.Equal(t, []string{FlagOccursCheck, FlagUnknown}, g.Names())

	assert.True(t, ValidFlag(FlagUnknown, term.Atom(UnknownFail)))
	assert.False(t, ValidFlag(FlagUnknown, term.Atom("maybe")))
	assert.False(t, ValidFlag(FlagOccursCheck, term.Integer(1)))
	assert.True(t, ValidFlag("anything", term.Integer(1)))
}
