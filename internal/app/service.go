// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/okian/kalpha/internal/adapters/mq/queue"
	workerpool "github.com/okian/kalpha/internal/adapters/mq/worker"
	"github.com/okian/kalpha/internal/adapters/repository"
	"github.com/okian/kalpha/internal/domain/model"
	"github.com/okian/kalpha/internal/domain/scoring"
	"github.com/okian/kalpha/internal/domain/types"
	"github.com/okian/kalpha/pkg/logger"
	"github.com/okian/kalpha/pkg/metrics"
)

const stopTimeout = 30 * time.Second

// Service runs alpha computations synchronously or as queued jobs.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      *repository.MemoryStore
	jobQueue   *jobqueue.InMemoryQueue
	scorer     *instrumentedScorer
	workerPool *workerpool.Pool

	// Configuration
	workerCount  int
	queueSize    int
	jobRetention int
	scoringOpts  []scoring.Option
	custom       scoring.Scorer

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithJobRetention sets how many finished jobs are kept for lookup.
// Zero or negative keeps all of them.
func WithJobRetention(n int) Option {
	return func(s *Service) {
		s.jobRetention = n
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithScoring passes options to the default scorer.
func WithScoring(opts ...scoring.Option) Option {
	return func(s *Service) {
		s.scoringOpts = append(s.scoringOpts, opts...)
	}
}

// WithScorer replaces the default scorer. WithScoring is ignored when set.
func WithScorer(scorer scoring.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.custom = scorer
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		queueSize:    1_000,
		jobRetention: 10_000,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	var scorer scoring.Scorer = s.custom
	if scorer == nil {
		scorer = scoring.NewInMemoryScorer(s.scoringOpts...)
	}
	s.scorer = &instrumentedScorer{scorer: scorer}

	return s
}

// Start initializes the job store, queue and worker pool. Cancelling ctx does
// not stop the workers; call Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting alpha service...")

	s.store = repository.NewMemoryStore(repository.WithRetention(s.jobRetention))
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s.scorer, s.store,
		workerpool.WithPoolLogger(s.logger.Named("pool")),
	)
	// Workers outlive ctx; Stop is the only signal that ends them, after the
	// queue has drained.
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "alpha service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("job_retention", s.jobRetention),
	)

	return nil
}

// Stop closes the queue, waits for queued jobs to finish and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping alpha service...")

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "alpha service stopped",
		logger.Int("jobs_processed", int(s.workerPool.Processed())),
	)
}

// Compute runs req synchronously on the caller's goroutine.
func (s *Service) Compute(ctx context.Context, req model.Request) (model.Result, error) {
	return s.scorer.Score(ctx, req)
}

// Submit stores req as a pending job and queues it. An empty id is replaced
// by a random UUID. A full queue yields ErrBackpressure and the job is dropped.
func (s *Service) Submit(ctx context.Context, id string, req model.Request) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return "", ErrNotStarted
	}

	if id == "" {
		id = uuid.NewString()
	}

	job := model.Job{
		ID:        id,
		Status:    model.JobPending,
		Request:   req,
		Submitted: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, job); err != nil {
		return "", err
	}

	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		if derr := s.store.Delete(ctx, id); derr != nil {
			s.logger.Warn(ctx, "failed to drop rejected job", logger.String("job_id", id), logger.Error(derr))
		}
		if errors.Is(err, jobqueue.ErrFull) || errors.Is(err, jobqueue.ErrClosed) {
			return "", fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return "", err
	}

	metrics.RecordJobSubmitted()
	s.logger.Debug(ctx, "job queued", logger.String("job_id", id))
	return id, nil
}

// Job returns the current state of a submitted job.
func (s *Service) Job(ctx context.Context, id string) (types.JobView, error) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()

	if store == nil {
		return types.JobView{}, ErrNotStarted
	}
	job, err := store.Get(ctx, id)
	if err != nil {
		return types.JobView{}, err
	}
	return types.NewJobView(job), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Started:       s.started,
		WorkerCount:   s.workerCount,
		QueueCapacity: s.queueSize,
		Jobs:          map[model.JobStatus]int{},
	}

	if s.workerPool != nil {
		stats.WorkerCount = s.workerPool.Size()
	}

	if s.store != nil {
		ctx := context.Background()
		stats.QueueLength = s.jobQueue.Len(ctx)
		stats.Jobs = s.store.CountByStatus(ctx)
		metrics.UpdateJobsStored(s.store.Count(ctx))
	}

	return stats
}
