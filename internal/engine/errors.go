package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/clausal/internal/term"
)

// PrologError is an error raised while solving. It is catchable: the engine
// turns it into an error(Formal, Context) ball and searches the catch/3
// handlers for it.
//
// Fields used per type:
//   - instantiation_error: none
//   - type_error: Expected (the type name), Culprit
//   - evaluation_error: Expected (e.g. zero_divisor)
//   - existence_error: Expected (e.g. procedure), Culprit
//   - permission_error: Action, Expected, Culprit
//   - resource_error: Expected (the exhausted resource)
//   - system_error: Message, Cause
type PrologError struct {
	// Type identifies the error category.
	Type ErrorType

	// Message is a human-readable description.
	Message string

	Expected string
	Action   string
	Culprit  term.Term

	// Context is the second argument of the error/2 ball, usually the
	// indicator of the predicate that raised it. Nil becomes a fresh variable.
	Context term.Term

	// Cause is the underlying error, if any.
	Cause error
}

// ErrorType categorizes Prolog errors. The values are the ISO formal term
// names.
type ErrorType string

const (
	ErrInstantiation ErrorType = "instantiation_error"
	ErrType          ErrorType = "type_error"
	ErrEvaluation    ErrorType = "evaluation_error"
	ErrExistence     ErrorType = "existence_error"
	ErrPermission    ErrorType = "permission_error"
	ErrResource      ErrorType = "resource_error"
	ErrSystem        ErrorType = "system_error"
)

// MsgNoCatch is the message of the system error reported for an uncaught
// ball.
const MsgNoCatch = "exception thrown, but no compatible catch/3 found"

func (e *PrologError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = term.Format(e.formal())
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

func (e *PrologError) Unwrap() error { return e.Cause }

// Term returns the error(Formal, Context) ball for e.
func (e *PrologError) Term() term.Term {
	ctx := e.Context
	if ctx == nil {
		ctx = term.NewVar("")
	}
	return term.NewStruct("error", e.formal(), ctx)
}

func (e *PrologError) formal() term.Term {
	culprit := e.Culprit
	if culprit == nil {
		culprit = term.NewVar("")
	}
	switch e.Type {
	case ErrInstantiation:
		return term.Atom(ErrInstantiation)
	case ErrType, ErrExistence:
		return term.NewStruct(string(e.Type), term.Atom(e.Expected), culprit)
	case ErrEvaluation, ErrResource:
		return term.NewStruct(string(e.Type), term.Atom(e.Expected))
	case ErrPermission:
		return term.NewStruct(string(e.Type), term.Atom(e.Action), term.Atom(e.Expected), culprit)
	}
	return term.Atom(ErrSystem)
}

// InstantiationError reports a free variable where a bound term is needed.
func InstantiationError(culprit term.Term) *PrologError {
	return &PrologError{Type: ErrInstantiation, Message: "arguments are not sufficiently instantiated", Culprit: culprit}
}

// TypeError reports an argument of the wrong type.
func TypeError(expected string, culprit term.Term) *PrologError {
	return &PrologError{Type: ErrType, Expected: expected, Culprit: culprit}
}

// EvaluationError reports an arithmetic failure such as zero_divisor.
func EvaluationError(what string) *PrologError {
	return &PrologError{Type: ErrEvaluation, Expected: what}
}

// ExistenceError reports a missing object, such as an unknown procedure.
func ExistenceError(kind string, culprit term.Term) *PrologError {
	return &PrologError{Type: ErrExistence, Expected: kind, Culprit: culprit}
}

// PermissionError reports a forbidden action such as modifying a static
// procedure.
func PermissionError(action, kind string, culprit term.Term) *PrologError {
	return &PrologError{Type: ErrPermission, Action: action, Expected: kind, Culprit: culprit}
}

// ResourceError reports an exhausted resource, such as the nesting depth of
// \+/1 and findall/3.
func ResourceError(what string) *PrologError {
	return &PrologError{Type: ErrResource, Expected: what}
}

// SystemError wraps an internal failure.
func SystemError(msg string, cause error) *PrologError {
	return &PrologError{Type: ErrSystem, Message: msg, Cause: cause}
}

// ThrownError carries a ball that left the solve it was thrown in: either no
// handler matched at the top level, or it escaped a nested solve and is
// re-raised in the caller. Err is the Go error the ball came from, if any.
type ThrownError struct {
	Ball term.Term
	Err  error
}

func (e *ThrownError) Error() string {
	return "uncaught exception: " + term.Format(e.Ball)
}

func (e *ThrownError) Unwrap() error { return e.Err }

// HaltError stops the whole solve. No catch/3 handler sees it.
type HaltError struct {
	Code  int
	Cause error
}

func (e *HaltError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("halt(%d): %v", e.Code, e.Cause)
	}
	return fmt.Sprintf("halt(%d)", e.Code)
}

func (e *HaltError) Unwrap() error { return e.Cause }

// Warning is a non-fatal condition, such as a call to an unknown procedure
// with the unknown flag set to warning.
type Warning struct {
	QueryID string
	Message string
	Culprit term.Term
}

func (w Warning) String() string {
	if w.Culprit == nil {
		return w.Message
	}
	return w.Message + ": " + term.Format(w.Culprit)
}

// hasType walks the whole chain: an uncaught type error arrives wrapped in
// a system error.
func hasType(err error, t ErrorType) bool {
	for err != nil {
		if pe, ok := err.(*PrologError); ok && pe.Type == t {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsInstantiationError reports whether err carries an instantiation error.
func IsInstantiationError(err error) bool { return hasType(err, ErrInstantiation) }

// IsTypeError reports whether err carries a type error.
func IsTypeError(err error) bool { return hasType(err, ErrType) }

// IsEvaluationError reports whether err carries an evaluation error.
func IsEvaluationError(err error) bool { return hasType(err, ErrEvaluation) }

// IsExistenceError reports whether err carries an existence error.
func IsExistenceError(err error) bool { return hasType(err, ErrExistence) }

// IsPermissionError reports whether err carries a permission error.
func IsPermissionError(err error) bool { return hasType(err, ErrPermission) }

// IsResourceError reports whether err carries a resource error.
func IsResourceError(err error) bool { return hasType(err, ErrResource) }

// IsSystemError reports whether err carries a system error.
func IsSystemError(err error) bool { return hasType(err, ErrSystem) }

// IsHaltError reports whether err is or wraps a HaltError.
func IsHaltError(err error) bool {
	var he *HaltError
	return errors.As(err, &he)
}

// ThrownBall returns the ball carried by err, if any.
func ThrownBall(err error) (term.Term, bool) {
	var te *ThrownError
	if errors.As(err, &te) {
		return te.Ball, true
	}
	return nil, false
}

// isFatal reports errors that end the solve instead of being thrown.
func isFatal(err error) bool {
	var (
		he *HaltError
		te *TimeoutError
		se *StepsExceededError
	)
	return errors.As(err, &he) || errors.As(err, &te) || errors.As(err, &se) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ballOf converts a non-fatal error to the term thrown for it.
func ballOf(err error) term.Term {
	var te *ThrownError
	if errors.As(err, &te) {
		return te.Ball
	}
	var pe *PrologError
	if errors.As(err, &pe) {
		return pe.Term()
	}
	return SystemError(err.Error(), err).Term()
}
