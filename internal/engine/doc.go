// Package engine resolves queries against clause theories.
//
// Resolution is an explicit state machine. A query starts in Init and moves
// through GoalSelection, PrimitiveExecution, RuleSelection, RuleExecution,
// Backtracking and Exception until it reaches End. Every transition is a
// pure function State.Next that returns a new state holding a new, immutable
// Context; nothing is shared between transitions except through the
// choice-point chain.
//
// Solutions is the driver. Each call to Next runs transitions until an End
// state and reports its Solution (Yes, No, Halt or Error). The driver checks
// the step counter, the query deadline, the step quota and the
// context.Context before every transition. When an End has open
// alternatives, the next call resumes from the choice points without
// repeating completed work.
//
// CONTROL:
//
// Cut resets the choice-point chain to the barrier recorded when the
// enclosing clause was entered. catch/3 pushes a Handler frame holding the
// choice points and bindings at entry; a thrown ball is matched against the
// handlers innermost first. call/N pushes its goal as a frame with its own
// cut barrier and runs it inline. \+ and findall/3 run nested solves with
// their own cut scope, at most MaxSolveDepth deep, and re-raise any ball
// that escapes them.
//
// Uncaught balls end the query with an Error solution wrapping a system
// error, except error(system_error, _), which halts. halt/0,1, timeouts,
// the step quota and cancellation end the query with a Halt solution and
// are never seen by catch/3.
package engine
