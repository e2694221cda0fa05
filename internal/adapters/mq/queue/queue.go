// Package queue defines the contract for enqueuing and consuming jobs.
//
// The in-memory implementation is a bounded channel. Enqueue never blocks:
// a full queue is reported to the caller as backpressure.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/kalpha/internal/domain/model"
	"github.com/okian/kalpha/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1_000
	defaultBufferSize    = 1_000
)

// Job is the payload type flowing through the queue.
type Job = model.Job

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job to the queue.
	// Returns ErrFull or ErrClosed when the job was not enqueued.
	Enqueue(ctx context.Context, j Job) error

	// Dequeue returns a channel that will receive jobs as they become available.
	// The channel will be closed when the queue is closed and drained. A job
	// leaves the queue only when a consumer receives it.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Cap returns the configured capacity.
	Cap() int

	// Close gracefully shuts down the queue.
	// After closing, no new jobs can be enqueued and the dequeue channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs       chan Job
	capacity   int
	bufferSize int
	mu         sync.RWMutex
	closed     bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	// Apply all options
	for _, opt := range opts {
		opt(q)
	}
	if q.bufferSize < q.capacity {
		q.bufferSize = q.capacity
	}

	q.jobs = make(chan Job, q.bufferSize)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	if len(q.jobs) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return fmt.Errorf("%w: capacity %d", ErrFull, q.capacity)
	}

	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		q.observe()
		return nil
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return fmt.Errorf("enqueue: %w", ctx.Err())
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns the queue's own channel. Consumers that stop reading leave
// the remaining jobs in place for the others.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Job {
	return q.jobs
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return q.observe()
}

// Cap returns the configured capacity.
func (q *InMemoryQueue) Cap() int {
	return q.capacity
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// observe publishes size and utilization gauges and returns the size.
func (q *InMemoryQueue) observe() int {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}
