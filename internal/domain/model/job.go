// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/kalpha/internal/domain/alpha"
)

// JobStatus is the lifecycle state of an asynchronous computation.
type JobStatus string

// Job states. A job moves pending -> running -> done|failed.
const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Final reports whether no further transition can happen.
func (s JobStatus) Final() bool {
	return s == JobDone || s == JobFailed
}

// Request describes one alpha computation over raw Cells.
type Request struct {
	Metric      string              // metric name; empty selects the configured default
	Missing     []string            // extra missing markers; Null is always missing
	Categorical bool                // code labels by first appearance
	ForceBulk   bool                // vectorize custom metrics
	Coders      alpha.Dataset[Cell] // one rating group per coder
}

// Result is the outcome of a Request.
type Result struct {
	alpha.Report
}

// Job is an asynchronous computation tracked by the job store.
type Job struct {
	ID        string
	Status    JobStatus
	Request   Request
	Result    *Result
	Err       string
	Submitted time.Time
	Started   time.Time
	Finished  time.Time
}
