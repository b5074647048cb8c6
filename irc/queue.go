package irc

import "sync"

// fifo is an unbounded FIFO queue safe for concurrent producers and
// consumers. Producers never block and entries are never dropped; pacing is
// the consumer's responsibility.
type fifo[T any] struct {
	mu    sync.Mutex
	items []T
}

func newFIFO[T any]() *fifo[T] { return &fifo[T]{} }

// push appends v to the tail of the queue.
func (q *fifo[T]) push(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
}

// prepend inserts vs at the head of the queue, ahead of existing entries,
// preserving the order of vs.
func (q *fifo[T]) prepend(vs ...T) {
	q.mu.Lock()
	q.items = append(vs, q.items...)
	q.mu.Unlock()
}

// pop removes and returns the head of the queue. The second return value is
// false when the queue is empty.
func (q *fifo[T]) pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	v := q.items[0]
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return v, true
}

// size returns the number of queued entries.
func (q *fifo[T]) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
