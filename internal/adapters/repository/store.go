// Package repository defines the job store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/kalpha/internal/domain/model"
)

// Store provides read/write access to asynchronous jobs.
type Store interface {
	// Create stores a new pending job. Returns ErrJobExists if the ID is taken.
	Create(ctx context.Context, job model.Job) error
	// Get returns a copy of the job. Returns ErrNotFound if the ID is unknown.
	Get(ctx context.Context, id string) (model.Job, error)
	// Delete removes a job regardless of its status.
	Delete(ctx context.Context, id string) error

	// MarkRunning moves a pending job to running.
	MarkRunning(ctx context.Context, id string, at time.Time) error
	// Finish moves a job to done, or to failed when cause is non-nil.
	Finish(ctx context.Context, id string, result *model.Result, cause error, at time.Time) error

	// Count returns the number of jobs held.
	Count(ctx context.Context) int
	// CountByStatus returns the number of jobs per status.
	CountByStatus(ctx context.Context) map[model.JobStatus]int
}
