package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_FirstCallReturnsEpoch(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, DefaultEpoch, clock.Now())
	assert.Equal(t, int64(1), clock.Calls())
}

func TestDeterministicClock_AdvancesByStep(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	clock := NewDeterministicClockAt(start, 2*time.Second)

	assert.Equal(t, start, clock.Now())
	assert.Equal(t, start.Add(2*time.Second), clock.Now())
	assert.Equal(t, start.Add(4*time.Second), clock.Now())
}

func TestDeterministicClock_ZeroStepFreezes(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	clock := NewDeterministicClockAt(start, 0)

	for i := 0; i < 5; i++ {
		assert.Equal(t, start, clock.Now())
	}
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock()
	clock.Now()
	clock.Now()
	clock.Now()
	require.Equal(t, int64(3), clock.Calls())

	clock.Reset()
	assert.Equal(t, int64(0), clock.Calls())
	assert.Equal(t, DefaultEpoch, clock.Now())
}

func TestDeterministicClock_ConcurrentCallsAreUnique(t *testing.T) {
	clock := NewDeterministicClock()

	const n = 100
	var wg sync.WaitGroup
	results := make(chan time.Time, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- clock.Now()
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[time.Time]bool)
	for ts := range results {
		assert.False(t, seen[ts], "duplicate instant %v", ts)
		seen[ts] = true
	}
	assert.Len(t, seen, n)
}
