package engine

import (
	"errors"
	"fmt"
	"time"
)

// QuotaEnforcer counts state transitions for one query and enforces a
// maximum. A query and every nested solve it starts (\+, findall/3)
// share one enforcer, so the limit bounds the whole search.
//
// A zero limit disables the check. Not safe for concurrent use; a query is
// solved on a single goroutine.
type QuotaEnforcer struct {
	maxSteps int64
	current  int64
}

// NewQuotaEnforcer creates a quota enforcer with the given limit.
func NewQuotaEnforcer(maxSteps int64) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check counts one transition and reports a StepsExceededError once the
// limit is passed.
func (q *QuotaEnforcer) Check(queryID string) error {
	q.current++
	if q.maxSteps > 0 && q.current > q.maxSteps {
		return &StepsExceededError{
			QueryID: queryID,
			Steps:   q.current,
			Limit:   q.maxSteps,
		}
	}
	return nil
}

// Current returns the number of transitions counted so far.
func (q *QuotaEnforcer) Current() int64 {
	return q.current
}

// MaxSteps returns the limit.
func (q *QuotaEnforcer) MaxSteps() int64 {
	return q.maxSteps
}

// StepsExceededError ends a query that used more transitions than allowed.
type StepsExceededError struct {
	QueryID string
	Steps   int64
	Limit   int64
}

func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("query %s exceeded max steps: %d steps > %d limit",
		e.QueryID, e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}

// TimeoutError ends a query that ran past its deadline.
type TimeoutError struct {
	QueryID     string
	MaxDuration time.Duration
	Elapsed     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("query %s timed out after %s (limit %s)", e.QueryID, e.Elapsed, e.MaxDuration)
}

// IsTimeoutError returns true if the error is a TimeoutError.
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsLimitError reports whether err is a resource limit: a timeout or the
// step quota.
func IsLimitError(err error) bool {
	return IsTimeoutError(err) || IsStepsExceededError(err)
}
