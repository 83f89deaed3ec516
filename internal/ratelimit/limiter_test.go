package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_WithinLimit(t *testing.T) {
	l := New(3, time.Second, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Acquire(ctx))
	}
}

func TestAcquire_TimesOutWhenWindowExhausted(t *testing.T) {
	l := New(1, time.Second, 20*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))

	start := time.Now()
	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestAcquire_WaitsForNextWindow(t *testing.T) {
	l := New(1, 100*time.Millisecond, time.Second)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))

	start := time.Now()
	require.NoError(t, l.Acquire(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestAcquire_ContextCanceled(t *testing.T) {
	l := New(1, time.Second, 5*time.Second)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAcquire_CanceledContextConsumesNoPermit(t *testing.T) {
	l := New(1, time.Second, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Acquire(ctx), context.Canceled)

	// The only permit of the window is still available.
	assert.NoError(t, l.Acquire(context.Background()))
}

func TestAcquire_ConcurrentCallersShareBudget(t *testing.T) {
	const limit = 5
	l := New(limit, 300*time.Millisecond, 2*time.Second)
	ctx := context.Background()

	start := time.Now()
	var mu sync.Mutex
	var grants []time.Duration

	var wg sync.WaitGroup
	for i := 0; i < 2*limit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(ctx); err == nil {
				mu.Lock()
				grants = append(grants, time.Since(start))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, grants, 2*limit)

	early := 0
	for _, g := range grants {
		if g < 150*time.Millisecond {
			early++
		}
	}
	assert.Equal(t, limit, early)
}

func TestNew_Defaults(t *testing.T) {
	l := New(0, 0, 0)
	assert.Equal(t, 1, l.limit)
	assert.Equal(t, time.Second, l.period)
}

func TestTryAcquire_WindowReset(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(2, time.Second, 0)
	l.now = func() time.Time { return now }

	_, ok := l.tryAcquire()
	assert.True(t, ok)
	_, ok = l.tryAcquire()
	assert.True(t, ok)

	wait, ok := l.tryAcquire()
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	now = now.Add(400 * time.Millisecond)
	wait, ok = l.tryAcquire()
	assert.False(t, ok)
	assert.Equal(t, 600*time.Millisecond, wait)

	now = now.Add(600 * time.Millisecond)
	_, ok = l.tryAcquire()
	assert.True(t, ok)
}
