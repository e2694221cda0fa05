package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/kalpha/internal/domain/model"
	"github.com/okian/kalpha/pkg/metrics"
)

// MemoryStore is a mutex-guarded, in-memory Store.
//
// Finished jobs are tracked in completion order so that retention evicts
// the oldest result first. Pending and running jobs are never evicted.
type MemoryStore struct {
	mu        sync.RWMutex
	jobs      map[string]*model.Job
	finished  []string // completion order, oldest first
	retention int
}

// NewMemoryStore constructs a job store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		jobs:      make(map[string]*model.Job),
		retention: 10_000,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	metrics.UpdateJobsStored(0)
	return s
}

// Create implements Store.Create.
func (s *MemoryStore) Create(_ context.Context, job model.Job) error {
	if job.ID == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if job.Status == "" {
		job.Status = model.JobPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return fmt.Errorf("%w: %s", ErrJobExists, job.ID)
	}
	s.jobs[job.ID] = &job
	if job.Status.Final() {
		s.retire(job.ID)
	}
	metrics.UpdateJobsStored(len(s.jobs))
	return nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return model.Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *job, nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.jobs, id)
	if job.Status.Final() {
		s.forget(id)
	}
	metrics.UpdateJobsStored(len(s.jobs))
	return nil
}

// MarkRunning implements Store.MarkRunning.
func (s *MemoryStore) MarkRunning(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if job.Status != model.JobPending {
		return fmt.Errorf("%w: %s is %s", ErrInvalidTransition, id, job.Status)
	}
	job.Status = model.JobRunning
	job.Started = at
	return nil
}

// Finish implements Store.Finish.
func (s *MemoryStore) Finish(_ context.Context, id string, result *model.Result, cause error, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if job.Status.Final() {
		return fmt.Errorf("%w: %s is %s", ErrInvalidTransition, id, job.Status)
	}

	if cause != nil {
		job.Status = model.JobFailed
		job.Err = cause.Error()
		job.Result = nil
	} else {
		job.Status = model.JobDone
		job.Result = result
	}
	if job.Started.IsZero() {
		job.Started = at
	}
	job.Finished = at

	s.retire(id)
	metrics.UpdateJobsStored(len(s.jobs))
	return nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// CountByStatus implements Store.CountByStatus.
func (s *MemoryStore) CountByStatus(_ context.Context) map[model.JobStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[model.JobStatus]int, 4)
	for _, job := range s.jobs {
		out[job.Status]++
	}
	return out
}

// retire appends id to the completion order and evicts past retention.
// Must be called with s.mu held.
func (s *MemoryStore) retire(id string) {
	s.finished = append(s.finished, id)
	if s.retention <= 0 {
		return
	}
	for len(s.finished) > s.retention {
		oldest := s.finished[0]
		s.finished[0] = ""
		s.finished = s.finished[1:]
		delete(s.jobs, oldest)
		metrics.RecordJobEvicted()
	}
}

// forget drops id from the completion order. Must be called with s.mu held.
func (s *MemoryStore) forget(id string) {
	for i, v := range s.finished {
		if v == id {
			s.finished = append(s.finished[:i], s.finished[i+1:]...)
			return
		}
	}
}
