package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestClock_StepsOnEachReading(t *testing.T) {
	c := NewClock(start, time.Second)

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start.Add(time.Second), c.Now())
	assert.Equal(t, start.Add(2*time.Second), c.Peek())
}

func TestClock_ZeroStepIsFrozen(t *testing.T) {
	c := NewClock(start, 0)

	for range 3 {
		assert.Equal(t, start, c.Now())
	}
}

func TestClock_Advance(t *testing.T) {
	c := NewClock(start, 0)
	c.Advance(time.Minute)

	assert.Equal(t, start.Add(time.Minute), c.Now())
}

func TestClock_ConcurrentReadings(t *testing.T) {
	c := NewClock(start, time.Millisecond)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				c.Now()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, start.Add(1000*time.Millisecond), c.Peek())
}
