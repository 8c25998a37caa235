package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaEnforcer_WithinLimit(t *testing.T) {
	q := NewQuotaEnforcer(10)

	for i := 0; i < 10; i++ {
		assert.NoError(t, q.Check("q-1"), "step %d should be allowed", i+1)
	}
	assert.Equal(t, int64(10), q.Current())
	assert.Equal(t, int64(10), q.MaxSteps())
}

func TestQuotaEnforcer_ExceedsLimit(t *testing.T) {
	q := NewQuotaEnforcer(5)
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Check("q-1"))
	}

	err := q.Check("q-1")
	require.Error(t, err)

	var stepsErr *StepsExceededError
	require.ErrorAs(t, err, &stepsErr)
	assert.Equal(t, "q-1", stepsErr.QueryID)
	assert.Equal(t, int64(6), stepsErr.Steps)
	assert.Equal(t, int64(5), stepsErr.Limit)
	assert.True(t, IsLimitError(err))
}

func TestQuotaEnforcer_ZeroLimitDisablesCheck(t *testing.T) {
	q := NewQuotaEnforcer(0)
	for i := 0; i < 10000; i++ {
		require.NoError(t, q.Check("q-1"))
	}
}

func TestStepsExceededError_Error(t *testing.T) {
	err := &StepsExceededError{QueryID: "q-abc", Steps: 1001, Limit: 1000}

	msg := err.Error()
	assert.Contains(t, msg, "q-abc")
	assert.Contains(t, msg, "1001")
	assert.Contains(t, msg, "1000")
}

func TestIsStepsExceededError(t *testing.T) {
	stepsErr := &StepsExceededError{QueryID: "q-1", Steps: 10, Limit: 5}

	assert.True(t, IsStepsExceededError(stepsErr))
	assert.True(t, IsStepsExceededError(fmt.Errorf("wrapped: %w", stepsErr)))
	assert.False(t, IsStepsExceededError(nil))
	assert.False(t, IsStepsExceededError(assert.AnError))
}

func TestTimeoutError_IsFatal(t *testing.T) {
	err := &TimeoutError{QueryID: "q-1", MaxDuration: time.Millisecond, Elapsed: 2 * time.Millisecond}
	assert.True(t, IsTimeoutError(err))
	assert.True(t, isFatal(err))
	assert.False(t, isFatal(TypeError("integer", nil)))
}
