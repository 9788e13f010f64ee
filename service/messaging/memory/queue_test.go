package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_BufferedFIFO(t *testing.T) {
	ctx := context.Background()
	q := NewQueue[string]()
	for _, item := range []string{"a", "b", "c"} {
		require.NoError(t, q.Put(ctx, item))
	}
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 0, q.Waiting())
	for _, expected := range []string{"a", "b", "c"} {
		actual, err := q.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, expected, actual)
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueue_WaitersFIFO(t *testing.T) {
	ctx := context.Background()
	q := NewQueue[int]()
	results := make([]chan int, 3)
	for i := range results {
		results[i] = make(chan int, 1)
		go func(out chan int) {
			v, err := q.Get(ctx)
			assert.NoError(t, err)
			out <- v
		}(results[i])
		require.Eventually(t, func() bool { return q.Waiting() == i+1 }, time.Second, time.Millisecond)
	}
	assert.Equal(t, 0, q.Len())
	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Put(ctx, i))
	}
	for i, out := range results {
		select {
		case v := <-out:
			assert.Equal(t, i+1, v)
		case <-time.After(time.Second):
			t.Fatalf("waiter %d not resolved", i)
		}
	}
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Waiting())
}

func TestQueue_Cancel(t *testing.T) {
	q := NewQueue[string]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := q.Get(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 0, q.Waiting())

	require.NoError(t, q.Put(context.Background(), "kept"))
	assert.Equal(t, 1, q.Len())
}

func TestQueue_NeverBothNonEmpty(t *testing.T) {
	ctx := context.Background()
	q := NewQueue[int]()
	var wg sync.WaitGroup
	const n = 200
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_ = q.Put(ctx, i)
		}
	}()
	var received []int
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			v, err := q.Get(ctx)
			assert.NoError(t, err)
			received = append(received, v)
			q.mu.Lock()
			assert.False(t, len(q.items) > 0 && q.waiters.Len() > 0)
			q.mu.Unlock()
		}
	}()
	wg.Wait()
	require.Len(t, received, n)
	for i, v := range received {
		assert.Equal(t, i, v)
	}
}
