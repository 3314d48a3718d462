package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProcess_AllItemsComplete(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())

	items := make([]WorkItem[int], 5)
	for i := range items {
		i := i
		items[i] = WorkItem[int]{
			ID: fmt.Sprintf("item-%d", i),
			Execute: func(ctx context.Context) (int, error) {
				return i * 2, nil
			},
		}
	}

	results := Process(context.Background(), pool, items)
	require.Len(t, results, 5)

	sum := 0
	for _, r := range results {
		require.NoError(t, r.Err)
		sum += r.Result
	}
	assert.Equal(t, 20, sum)
}

func TestProcess_FailuresDoNotStopOthers(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())

	boom := errors.New("boom")
	items := []WorkItem[string]{
		{ID: "ok", Execute: func(ctx context.Context) (string, error) { return "fine", nil }},
		{ID: "bad", Execute: func(ctx context.Context) (string, error) { return "", boom }},
	}

	results := Process(context.Background(), pool, items)
	require.Len(t, results, 2)

	byID := make(map[string]WorkResult[string])
	for _, r := range results {
		byID[r.ID] = r
	}
	assert.NoError(t, byID["ok"].Err)
	assert.ErrorIs(t, byID["bad"].Err, boom)
}

func TestProcess_BoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())

	var current, peak int32
	var mu sync.Mutex

	items := make([]WorkItem[struct{}], 8)
	for i := range items {
		items[i] = WorkItem[struct{}]{
			ID: fmt.Sprintf("item-%d", i),
			Execute: func(ctx context.Context) (struct{}, error) {
				n := atomic.AddInt32(&current, 1)
				mu.Lock()
				if n > peak {
					peak = n
				}
				mu.Unlock()
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&current, -1)
				return struct{}{}, nil
			},
		}
	}

	Process(context.Background(), pool, items)
	assert.LessOrEqual(t, peak, int32(2))
}

func TestProcess_CancelledContext(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 1}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blocked := WorkItem[int]{
		ID: "blocked",
		Execute: func(ctx context.Context) (int, error) {
			return 1, nil
		},
	}

	results := Process(ctx, pool, []WorkItem[int]{blocked, blocked, blocked})
	require.Len(t, results, 3)
	// Items either ran before observing cancellation or report ctx.Err;
	// nothing is silently dropped.
	for _, r := range results {
		if r.Err != nil {
			assert.ErrorIs(t, r.Err, context.Canceled)
		}
	}
}

func TestProcess_EmptyInput(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 4}, zap.NewNop())
	assert.Nil(t, Process[int](context.Background(), pool, nil))
}

func TestNewWorkerPool_DefaultConcurrency(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{}, zap.NewNop())
	assert.Equal(t, 4, pool.config.MaxConcurrent)
}
