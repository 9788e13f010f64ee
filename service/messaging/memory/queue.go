package memory

import (
	"context"
	"sync"

	"github.com/viant/pocketflow/service/messaging"
)

// Queue is an in-memory messaging.Queue. The zero value is not usable; call
// NewQueue.
type Queue[T any] struct {
	mu      sync.Mutex
	items   []T
	waiters messaging.Waiters[T]
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Put delivers item to the earliest waiter or appends it to the backlog.
// The queue is unbounded, so Put never blocks nor rejects.
func (q *Queue[T]) Put(_ context.Context, item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.waiters.Deliver(item) {
		return nil
	}
	q.items = append(q.items, item)
	return nil
}

// Get returns the earliest item, waiting for one if the backlog is empty.
// With context.Background() it waits indefinitely.
func (q *Queue[T]) Get(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	q.mu.Lock()
	if len(q.items) > 0 {
		item := q.items[0]
		var zero T
		q.items[0] = zero
		q.items = q.items[1:]
		q.mu.Unlock()
		return item, nil
	}
	ch := q.waiters.Add()
	q.mu.Unlock()
	return messaging.Await[T](ctx, &q.mu, &q.waiters, ch)
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Waiting returns the number of blocked Get calls.
func (q *Queue[T]) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.waiters.Len()
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
