package messaging

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO handoff between independently running flows.
// Put never blocks; Get returns the earliest buffered item or waits for the
// next Put. At any instant either the buffered items or the waiters are empty.
type Queue[T any] interface {
	// Put hands item to the earliest waiter, or buffers it when nobody waits.
	Put(ctx context.Context, item T) error

	// Get returns the earliest buffered item, or blocks until a Put delivers
	// one or ctx is done.
	Get(ctx context.Context) (T, error)
}

// Waiters keeps pending Get calls in arrival order. It is not synchronised;
// queues guard it with their own lock.
type Waiters[T any] struct {
	pending []chan T
}

// Add registers a new waiter and returns its channel.
func (w *Waiters[T]) Add() chan T {
	ch := make(chan T, 1)
	w.pending = append(w.pending, ch)
	return ch
}

// Deliver hands item to the earliest waiter; false when nobody waits.
func (w *Waiters[T]) Deliver(item T) bool {
	if len(w.pending) == 0 {
		return false
	}
	ch := w.pending[0]
	w.pending[0] = nil
	w.pending = w.pending[1:]
	ch <- item
	return true
}

// Remove unregisters ch; false when it was already resolved.
func (w *Waiters[T]) Remove(ch chan T) bool {
	for i, candidate := range w.pending {
		if candidate == ch {
			w.pending = append(w.pending[:i], w.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of pending waiters.
func (w *Waiters[T]) Len() int {
	return len(w.pending)
}

// Await blocks until ch is resolved or ctx is done. On cancellation the
// waiter is removed under mu; if a Put already resolved it, the item is
// returned instead of being lost.
func Await[T any](ctx context.Context, mu sync.Locker, waiters *Waiters[T], ch chan T) (T, error) {
	select {
	case item := <-ch:
		return item, nil
	case <-ctx.Done():
	}
	mu.Lock()
	removed := waiters.Remove(ch)
	mu.Unlock()
	if !removed {
		return <-ch, nil
	}
	var zero T
	return zero, ctx.Err()
}
