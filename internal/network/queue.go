package network

import "sync"

// Queue hands work from the network goroutine to the frame goroutine. Any
// goroutine may Push; only the frame goroutine should Drain.
type Queue struct {
	mu    sync.Mutex
	items []func()
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends fn. Nil functions are ignored.
func (q *Queue) Push(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, fn)
	q.mu.Unlock()
}

// Drain runs everything queued so far in FIFO order and returns how many
// ran. Work pushed while draining waits for the next call.
func (q *Queue) Drain() int {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()

	for _, fn := range items {
		fn()
	}
	return len(items)
}
