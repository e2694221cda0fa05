// Package worker runs queued alpha jobs against a scorer and records outcomes.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/kalpha/internal/adapters/mq/queue"
	"github.com/okian/kalpha/internal/domain/model"
	"github.com/okian/kalpha/pkg/logger"
	"github.com/okian/kalpha/pkg/metrics"
)

// Default worker configuration constants.
const (
	metricsUpdateInterval = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = queue.Job

// Updater records job state transitions.
type Updater interface {
	MarkRunning(ctx context.Context, id string, at time.Time) error
	Finish(ctx context.Context, id string, result *model.Result, cause error, at time.Time) error
}

// Scorer computes the result of a request.
type Scorer interface {
	Score(ctx context.Context, req model.Request) (model.Result, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs and writes their outcome using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing jobs.
type InMemoryWorker struct {
	queue   Queue
	scorer  Scorer
	updater Updater
	name    string

	// Shutdown control
	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	// processed is shared with the owning pool, if any.
	processed *atomic.Int64

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, scorer Scorer, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		scorer:    scorer,
		updater:   updater,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		processed: new(atomic.Int64),
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "job failed", logger.String("job_id", job.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stop()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) stop() {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
}

// process runs a single job through pending -> running -> done|failed.
// The returned error is the scoring or store failure, already recorded.
func (w *InMemoryWorker) process(ctx context.Context, job Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	metrics.AddWorkerActive(1)
	defer func() {
		metrics.AddWorkerActive(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
		w.processed.Add(1)
	}()

	if err := w.updater.MarkRunning(ctx, job.ID, start); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("mark running: %w", err)
	}

	result, scoreErr := w.scorer.Score(ctx, job.Request)
	if scoreErr != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "scoring_error")
		metrics.RecordErrorByType("scoring_error", "medium")
	}

	var res *model.Result
	status := model.JobFailed
	if scoreErr == nil {
		res = &result
		status = model.JobDone
	}

	// The job must reach a final state even when ctx was cancelled mid-score.
	if err := w.updater.Finish(context.WithoutCancel(ctx), job.ID, res, scoreErr, time.Now()); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("finish: %w", err)
	}
	metrics.RecordJobFinished(string(status))

	if scoreErr != nil {
		return fmt.Errorf("score: %w", scoreErr)
	}
	w.logger.Debug(ctx, "job done",
		logger.String("job_id", job.ID),
		logger.Float64("alpha", result.Alpha),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	shutdown     chan struct{}
	shutdownOnce sync.Once

	// Metrics tracking
	processed         atomic.Int64
	lastProcessedTime time.Time

	logger logger.Logger
}

// NewPool creates a new worker pool. A workerCount below one uses runtime.NumCPU().
func NewPool(workerCount int, queue Queue, scorer Scorer, updater Updater, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             queue,
		shutdown:          make(chan struct{}),
		lastProcessedTime: time.Now(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(pool)
	}
	if pool.logger == nil {
		pool.logger = logger.Get().Named("worker-pool")
	}

	for i := 0; i < workerCount; i++ {
		name := "worker-" + strconv.Itoa(i)
		w := NewInMemoryWorker(queue, scorer, updater,
			WithName(name),
			WithLogger(pool.logger.Named(name)),
		)
		w.processed = &pool.processed
		pool.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerJobsPerSecond(0.0)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns how many jobs the pool has handled.
func (p *Pool) Processed() int64 {
	return p.processed.Load()
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}

	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater periodically publishes throughput.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	last := p.processed.Load()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			now := time.Now()
			current := p.processed.Load()
			if elapsed := now.Sub(p.lastProcessedTime).Seconds(); elapsed > 0 {
				metrics.UpdateWorkerJobsPerSecond(float64(current-last) / elapsed)
			}
			last = current
			p.lastProcessedTime = now
		}
	}
}

// Stop signals all workers and waits for them to finish their current job.
func (p *Pool) Stop() {
	p.signal()
	for _, worker := range p.workers {
		<-worker.done
	}
}

func (p *Pool) signal() {
	p.shutdownOnce.Do(func() { close(p.shutdown) })
	for _, worker := range p.workers {
		worker.stop()
	}
}

// Shutdown closes the queue, lets workers drain it, and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	// Closing the queue ends each worker's dequeue channel once it is drained.
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			p.signal()
			return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
		}
	}
	p.signal()
	return nil
}
