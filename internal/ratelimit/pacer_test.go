package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacer_EnforcesSpacing(t *testing.T) {
	const spacing = 20 * time.Millisecond
	p := NewPacer(spacing, 4)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Acquire(ctx))
		p.Release()
	}
	elapsed := time.Since(start)

	// First call is immediate; the next two wait one spacing interval each.
	assert.GreaterOrEqual(t, elapsed, 2*spacing-5*time.Millisecond)
}

func TestPacer_BoundsInFlight(t *testing.T) {
	const maxInFlight = 2
	p := NewPacer(0, maxInFlight)
	ctx := context.Background()

	var current, peak int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, p.Acquire(ctx))
			n := atomic.AddInt64(&current, 1)
			for {
				old := atomic.LoadInt64(&peak)
				if n <= old || atomic.CompareAndSwapInt64(&peak, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&current, -1)
			p.Release()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(maxInFlight))
}

func TestPacer_AcquireRespectsCancellation(t *testing.T) {
	p := NewPacer(time.Hour, 1)
	ctx := context.Background()

	// Consume the single immediate token.
	require.NoError(t, p.Acquire(ctx))
	p.Release()

	cancelCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- p.Acquire(cancelCtx)
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after cancellation")
	}

	// The permit taken before waiting on spacing must have been released.
	assert.Equal(t, 0, p.InFlight())
}

func TestPacer_ZeroSpacingDoesNotBlock(t *testing.T) {
	p := NewPacer(0, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 50; i++ {
		require.NoError(t, p.Acquire(ctx))
		p.Release()
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestPacer_MinInFlightIsOne(t *testing.T) {
	p := NewPacer(0, 0)
	require.NoError(t, p.Acquire(context.Background()))
	assert.Equal(t, 1, p.InFlight())
	p.Release()
	assert.Equal(t, 0, p.InFlight())
}
