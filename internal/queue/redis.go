package queue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"matchstats/internal/logging"
)

const (
	defaultRefreshQueueKey = "refresh_players"
	retrySuffix            = ":retry"
	dlqSuffix              = ":dlq"
	retryCounterSuffix     = ":retry-count:"
	maxRetryAttempts       = 3
	retryCounterTTL        = 24 * time.Hour
	brPopBlock             = 5 * time.Second
)

// Handler processes one job payload. A non-nil error schedules a retry.
type Handler func(ctx context.Context, payload []byte) error

// RedisQueue implements queue operations using Redis lists.
type RedisQueue struct {
	client       *redis.Client
	key          string
	blockTimeout time.Duration
}

// NewRedisQueue builds a Redis-backed queue helper. An empty key selects the
// default refresh queue.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = defaultRefreshQueueKey
	}
	return &RedisQueue{client: client, key: key, blockTimeout: brPopBlock}
}

// Key returns the name of the main list.
func (q *RedisQueue) Key() string {
	return q.key
}

// Enqueue pushes a job payload onto the queue.
func (q *RedisQueue) Enqueue(ctx context.Context, payload []byte) error {
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue to %s: %w", q.key, err)
	}
	return nil
}

// Consume uses BRPOP to deliver jobs to the handler until the context is canceled.
func (q *RedisQueue) Consume(ctx context.Context, handler Handler) error {
	for {
		payload, err := q.pop(ctx)
		if err != nil {
			return err
		}
		if payload == nil {
			continue
		}
		q.dispatch(ctx, handler, payload, "")
	}
}

// ConsumeConcurrent uses BRPOP to feed jobs to a worker pool for concurrent processing.
func (q *RedisQueue) ConsumeConcurrent(ctx context.Context, workerCount, bufferSize int, handler Handler) error {
	logger := logging.Logger()
	if workerCount < 1 {
		workerCount = 1
	}

	// Create job channel for workers
	jobChan := make(chan []byte, bufferSize)
	var wg sync.WaitGroup

	// Start worker goroutines
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			prefix := fmt.Sprintf("worker %d: ", workerID)
			for payload := range jobChan {
				q.dispatch(ctx, handler, payload, prefix)
			}
			logger.Infof("worker %d: exiting", workerID)
		}(i)
	}

	logger.Infof("started %d concurrent workers for queue %s", workerCount, q.key)

	shutdown := func(err error) error {
		close(jobChan)
		wg.Wait()
		return err
	}

	// BRPOP loop feeding jobs to workers
	for {
		payload, err := q.pop(ctx)
		if err != nil {
			return shutdown(err)
		}
		if payload == nil {
			continue
		}

		select {
		case jobChan <- payload:
			// Job submitted to worker pool
		case <-ctx.Done():
			return shutdown(ctx.Err())
		}
	}
}

// pop blocks for the next payload, preferring the retry list. It returns a nil
// payload when nothing arrived and an error only once ctx is done.
func (q *RedisQueue) pop(ctx context.Context) ([]byte, error) {
	logger := logging.Logger()
	if ctx.Err() != nil {
		logger.Warnf("redis consumer exiting: %v", ctx.Err())
		return nil, ctx.Err()
	}

	result, err := q.client.BRPop(ctx, q.blockTimeout, q.key+retrySuffix, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if ctx.Err() != nil {
			logger.Warnf("redis BRPOP canceled: %v", ctx.Err())
			return nil, ctx.Err()
		}
		logger.Warnf("redis BRPOP error: %v", err)
		return nil, nil
	}
	if len(result) < 2 {
		return nil, nil
	}
	return []byte(result[1]), nil
}

func (q *RedisQueue) dispatch(ctx context.Context, handler Handler, payload []byte, logPrefix string) {
	logger := logging.Logger()
	if err := handler(ctx, payload); err != nil {
		logger.Warnf("%shandler error, scheduling retry: %v", logPrefix, err)
		if err := q.handleRetry(ctx, payload); err != nil {
			logger.Errorf("%sretry handling failed: %v", logPrefix, err)
		}
		return
	}
	_ = q.clearRetryCounter(ctx, payload)
}

func (q *RedisQueue) handleRetry(ctx context.Context, payload []byte) error {
	logger := logging.Logger()
	attempt, err := q.incrementRetryCounter(ctx, payload)
	if err != nil {
		return err
	}
	if attempt > maxRetryAttempts {
		logger.Warnf("moving job to DLQ after %d attempts", attempt-1)
		_ = q.client.LPush(ctx, q.key+dlqSuffix, payload).Err()
		_ = q.clearRetryCounter(ctx, payload)
		return nil
	}
	return q.client.LPush(ctx, q.key+retrySuffix, payload).Err()
}

func (q *RedisQueue) incrementRetryCounter(ctx context.Context, payload []byte) (int64, error) {
	key := retryCounterKey(q.key, payload)
	count, err := q.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = q.client.Expire(ctx, key, retryCounterTTL).Err()
	return count, nil
}

func (q *RedisQueue) clearRetryCounter(ctx context.Context, payload []byte) error {
	key := retryCounterKey(q.key, payload)
	return q.client.Del(ctx, key).Err()
}

func retryCounterKey(queue string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s%s%s", queue, retryCounterSuffix, hex.EncodeToString(sum[:]))
}
