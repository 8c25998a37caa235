package engine

import (
	"maps"
	"slices"

	"github.com/roach88/clausal/internal/term"
)

// Flag names understood by the engine.
const (
	FlagOccursCheck = "occurs_check"
	FlagUnknown     = "unknown"
)

// Values of the unknown flag.
const (
	UnknownError   = "error"
	UnknownFail    = "fail"
	UnknownWarning = "warning"
)

// Flags is a read-only map of flag values. Set returns a copy; a Flags value
// reachable from a Context is never modified.
type Flags map[string]term.Term

// DefaultFlags returns occurs_check=false and unknown=warning.
func DefaultFlags() Flags {
	return Flags{
		FlagOccursCheck: term.False,
		FlagUnknown:     term.Atom(UnknownWarning),
	}
}

// Set returns a copy of f with name bound to value.
func (f Flags) Set(name string, value term.Term) Flags {
	out := maps.Clone(f)
	if out == nil {
		out = Flags{}
	}
	out[name] = value
	return out
}

// Get returns the value of a flag.
func (f Flags) Get(name string) (term.Term, bool) {
	v, ok := f[name]
	return v, ok
}

// Names returns the flag names, sorted.
func (f Flags) Names() []string {
	return slices.Sorted(maps.Keys(f))
}

// OccursCheck reports whether unification should use the occurs check.
func (f Flags) OccursCheck() bool {
	return f[FlagOccursCheck] == term.Term(term.True)
}

// Unknown returns the policy for calls to undefined procedures.
func (f Flags) Unknown() string {
	if a, ok := f[FlagUnknown].(term.Atom); ok {
		return string(a)
	}
	return UnknownWarning
}

// ValidFlag reports whether value is acceptable for a known flag. Unknown
// flag names accept anything.
func ValidFlag(name string, value term.Term) bool {
	switch name {
	case FlagOccursCheck:
		return value == term.Term(term.True) || value == term.Term(term.False)
	case FlagUnknown:
		switch value {
		case term.Term(term.Atom(UnknownError)), term.Term(term.Atom(UnknownFail)), term.Term(term.Atom(UnknownWarning)):
			return true
		}
		return false
	}
	return true
}
