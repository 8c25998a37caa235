package theory

import (
	"errors"
	"fmt"

	"github.com/roach88/clausal/internal/term"
)

// InvalidClauseError is returned by Assert for a clause that cannot be
// stored.
type InvalidClauseError struct {
	Clause *term.Clause
	Reason string
}

func (e *InvalidClauseError) Error() string {
	if e.Clause == nil {
		return "invalid clause: " + e.Reason
	}
	return fmt.Sprintf("invalid clause %s: %s", term.Format(e.Clause), e.Reason)
}

// IsInvalidClause reports whether err is or wraps an InvalidClauseError.
func IsInvalidClause(err error) bool {
	var ic *InvalidClauseError
	return errors.As(err, &ic)
}
