// Package queue implements the bounded-capacity, multi-producer /
// multi-consumer task FIFO seeded once before workers start.
package queue

import "github.com/es7s/macedon/internal/task"

// Queue is a FIFO with a non-blocking dequeue that reports "empty" to
// the caller instead of waiting. Capacity is fixed at creation time;
// all Enqueue calls are expected to happen before the first Dequeue.
type Queue struct {
	ch chan task.Task
}

// New creates a Queue sized for capacity entries.
func New(capacity int) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue{ch: make(chan task.Task, capacity)}
}

// Enqueue adds t to the queue. Never blocks as long as the queue was
// sized to accommodate every task seeded before workers start.
func (q *Queue) Enqueue(t task.Task) {
	q.ch <- t
}

// TryDequeue removes and returns the next task without blocking. The
// second return value is false when the queue is currently empty.
func (q *Queue) TryDequeue() (task.Task, bool) {
	select {
	case t := <-q.ch:
		return t, true
	default:
		return task.Task{}, false
	}
}

// Len reports the number of tasks currently buffered.
func (q *Queue) Len() int { return len(q.ch) }
