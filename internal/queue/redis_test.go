package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T, key string) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	q := NewRedisQueue(client, key)
	// BRPOP only honours whole seconds.
	q.blockTimeout = time.Second
	return q, mr
}

// consumeUntil runs Consume until done reports true or the deadline passes.
func consumeUntil(t *testing.T, q *RedisQueue, handler Handler, done func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- q.Consume(ctx, handler) }()

	require.Eventually(t, done, 5*time.Second, 10*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}

func TestNewRedisQueue_DefaultKey(t *testing.T) {
	q, _ := newTestQueue(t, "")
	assert.Equal(t, "refresh_players", q.Key())
}

func TestEnqueueAndConsume(t *testing.T) {
	q, mr := newTestQueue(t, "jobs")
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, []byte(`{"job_id":"1"}`)))
	require.NoError(t, q.Enqueue(ctx, []byte(`{"job_id":"2"}`)))

	var mu sync.Mutex
	var got []string
	handler := func(ctx context.Context, payload []byte) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, string(payload))
		return nil
	}

	consumeUntil(t, q, handler, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	})

	// LPUSH + BRPOP is FIFO.
	assert.Equal(t, []string{`{"job_id":"1"}`, `{"job_id":"2"}`}, got)
	assert.False(t, mr.Exists("jobs"))
}

func TestConsume_RetriesThenDeadLetters(t *testing.T) {
	q, mr := newTestQueue(t, "jobs")
	require.NoError(t, q.Enqueue(context.Background(), []byte("poison")))

	var attempts atomic.Int32
	handler := func(ctx context.Context, payload []byte) error {
		attempts.Add(1)
		return errors.New("always fails")
	}

	consumeUntil(t, q, handler, func() bool {
		items, err := mr.List("jobs:dlq")
		return err == nil && len(items) == 1
	})

	// One initial attempt plus maxRetryAttempts retries.
	assert.Equal(t, int32(maxRetryAttempts+1), attempts.Load())
	items, err := mr.List("jobs:dlq")
	require.NoError(t, err)
	assert.Equal(t, []string{"poison"}, items)
	assert.False(t, mr.Exists(retryCounterKey("jobs", []byte("poison"))))
}

func TestConsume_RetrySucceeds(t *testing.T) {
	q, mr := newTestQueue(t, "jobs")
	require.NoError(t, q.Enqueue(context.Background(), []byte("flaky")))

	var attempts atomic.Int32
	handler := func(ctx context.Context, payload []byte) error {
		if attempts.Add(1) == 1 {
			return errors.New("transient")
		}
		return nil
	}

	consumeUntil(t, q, handler, func() bool { return attempts.Load() == 2 })

	assert.False(t, mr.Exists("jobs:dlq"))
	require.Eventually(t, func() bool {
		return !mr.Exists(retryCounterKey("jobs", []byte("flaky")))
	}, time.Second, 10*time.Millisecond)
}

func TestConsumeConcurrent(t *testing.T) {
	q, _ := newTestQueue(t, "jobs")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const jobs = 10
	for i := 0; i < jobs; i++ {
		require.NoError(t, q.Enqueue(ctx, []byte{byte('a' + i)}))
	}

	var handled atomic.Int32
	handler := func(ctx context.Context, payload []byte) error {
		handled.Add(1)
		return nil
	}

	errCh := make(chan error, 1)
	go func() { errCh <- q.ConsumeConcurrent(ctx, 3, 4, handler) }()

	require.Eventually(t, func() bool { return handled.Load() == jobs }, 5*time.Second, 10*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}
