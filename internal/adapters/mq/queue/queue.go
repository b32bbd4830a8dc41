// Package queue hands partitions from the feed scan to the rebuild
// workers.
//
// The implementation is a bounded in-memory channel. Enqueue blocks
// while the buffer is full, so a scan cannot outrun the workers.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/podium/internal/domain/partition"
	"github.com/okian/podium/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 256
)

// Job is the unit of work flowing through the queue: one partition
// whose top of table may have changed.
type Job = partition.Partition

// Queue provides blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job to the queue, waiting for room when the
	// buffer is full. It returns ErrClosed after Close, or the
	// context error if ctx ends first.
	Enqueue(ctx context.Context, j Job) error

	// Dequeue returns a channel that will receive jobs as they become
	// available. The channel is closed once the queue is closed and
	// drained.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Close stops the queue. After closing, no new jobs can be
	// enqueued and the dequeue channels drain and close.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	// Apply all options
	for _, opt := range opts {
		opt(q)
	}

	q.jobs = make(chan Job, q.capacity)

	// Initialize metrics
	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a job to the queue, blocking while the buffer is full.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return ErrClosed
	}

	// The read lock is held across the send. Close takes the write
	// lock, so the channel cannot be closed mid-send.
	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.jobs))
		return nil
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return fmt.Errorf("enqueue wait: %w", ctx.Err())
	}
}

// Dequeue returns a channel that will receive jobs as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	// Wrap the channel to track dequeue metrics
	out := make(chan Job)
	go func() {
		defer close(out)
		for j := range q.jobs {
			select {
			case out <- j:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.jobs))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	return size
}

// Close stops the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil // already closed
	}

	// Close the jobs channel so consumers drain and stop
	close(q.jobs)
	q.closed = true

	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
