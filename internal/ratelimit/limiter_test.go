package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimiter_BurstThenDelay(t *testing.T) {
	l := New(50, 2)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))
	require.Less(t, time.Since(start), 15*time.Millisecond, "burst tokens should not wait")

	// Third acquire must wait for a refill (~20ms at 50/s).
	require.NoError(t, l.Acquire(ctx))
	require.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestLimiter_RateNotExceededUnderConcurrency(t *testing.T) {
	const (
		rate  = 100.0
		calls = 30
	)
	l := New(rate, 1)
	ctx := context.Background()

	var mu sync.Mutex
	var stamps []time.Time
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, l.Acquire(ctx))
			mu.Lock()
			stamps = append(stamps, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, stamps, calls)

	// No sliding 100ms window may admit more than rate*0.1 calls plus the
	// burst token. Timestamps are recorded after admission, so a small
	// scheduling slack is allowed.
	window := 100 * time.Millisecond
	allowed := int(rate*window.Seconds()) + 2
	for i := range stamps {
		count := 0
		for j := range stamps {
			d := stamps[j].Sub(stamps[i])
			if d >= 0 && d < window {
				count++
			}
		}
		require.LessOrEqual(t, count, allowed, "too many admissions in one window")
	}
}

func TestLimiter_AcquireCancelled(t *testing.T) {
	l := New(0.1, 1)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := l.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
