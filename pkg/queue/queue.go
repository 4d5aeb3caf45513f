// Package queue provides a generic blocking FIFO used to hand values from a
// producer goroutine to one or more waiting consumers.
package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned by Send after Close, and by the receive methods
// once the queue is closed and drained.
var ErrQueueClosed = errors.New("queue is closed")

// MessageQueue is an unbounded, concurrency-safe FIFO with wait/notify
// semantics. Send never blocks beyond lock contention; Receive blocks until a
// value is available. Each sent value is delivered to exactly one receiver.
//
// The zero value is not ready for use; construct via New or NewWithCapacity.
type MessageQueue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	closed bool
}

// New creates an empty queue.
func New[T any]() *MessageQueue[T] {
	return NewWithCapacity[T](0)
}

// NewWithCapacity creates an empty queue with preallocated storage.
func NewWithCapacity[T any](capacity int) *MessageQueue[T] {
	if capacity < 0 {
		capacity = 0
	}
	q := &MessageQueue[T]{items: make([]T, 0, capacity)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Send appends v to the tail and wakes one waiting receiver.
func (q *MessageQueue[T]) Send(v T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.items = append(q.items, v)
	q.mu.Unlock()
	q.cond.Signal()
	return nil
}

// Receive blocks until a value is available and removes it from the head.
func (q *MessageQueue[T]) Receive() (T, error) {
	return q.ReceiveContext(context.Background())
}

// ReceiveContext blocks until a value is available, the queue is closed and
// drained, or ctx is done.
func (q *MessageQueue[T]) ReceiveContext(ctx context.Context) (T, error) {
	var zero T
	if ctx == nil {
		ctx = context.Background()
	}

	// wake every waiter on cancellation; each rechecks its own predicate
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		if q.closed {
			return zero, ErrQueueClosed
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		q.cond.Wait()
	}
	return q.pop(), nil
}

// TryReceive removes and returns the head value without blocking.
// ok is false when the queue is empty.
func (q *MessageQueue[T]) TryReceive() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return v, false
	}
	return q.pop(), true
}

// Len returns the number of queued values.
func (q *MessageQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty reports whether the queue holds no values.
func (q *MessageQueue[T]) IsEmpty() bool { return q.Len() == 0 }

// Close rejects further sends and wakes all receivers. Values already queued
// can still be received. Close is idempotent.
func (q *MessageQueue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Closed reports whether Close has been called.
func (q *MessageQueue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// pop must be called with q.mu held and a non-empty queue.
func (q *MessageQueue[T]) pop() T {
	var zero T
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return v
}
