// Package types contains the read shapes shared by the service and the HTTP API.
package types

import (
	"math"
	"time"

	"github.com/okian/kalpha/internal/domain/model"
)

// JobView is the externally visible state of a job.
type JobView struct {
	ID          string          `json:"job_id"`
	Status      model.JobStatus `json:"status"`
	Result      *model.Result   `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
}

// NewJobView builds the view of j.
func NewJobView(j model.Job) JobView {
	v := JobView{
		ID:          j.ID,
		Status:      j.Status,
		Result:      j.Result,
		Error:       j.Err,
		SubmittedAt: j.Submitted,
	}
	if j.Status.Final() {
		finished := j.Finished
		v.FinishedAt = &finished
	}
	return v
}

// Stats summarizes the service for monitoring.
type Stats struct {
	Started       bool                    `json:"started"`
	WorkerCount   int                     `json:"worker_count"`
	QueueCapacity int                     `json:"queue_capacity"`
	QueueLength   int                     `json:"queue_length"`
	Jobs          map[model.JobStatus]int `json:"jobs"`
}

// ReportView renders a result for JSON output. Non-finite numbers become
// null because JSON cannot carry NaN or Inf.
type ReportView struct {
	Alpha      *float64 `json:"alpha"`
	Observed   *float64 `json:"observed_disagreement"`
	Expected   *float64 `json:"expected_disagreement"`
	Metric     string   `json:"metric"`
	Coders     int      `json:"coders"`
	Items      int      `json:"items"`
	Values     int      `json:"values"`
	Vectorized bool     `json:"vectorized"`
	Mean       *float64 `json:"mean"`
	StdDev     *float64 `json:"stddev"`
}

// NewReportView builds the view of res. A nil result yields nil.
func NewReportView(res *model.Result) *ReportView {
	if res == nil {
		return nil
	}
	return &ReportView{
		Alpha:      finite(res.Alpha),
		Observed:   finite(res.Observed),
		Expected:   finite(res.Expected),
		Metric:     res.Metric,
		Coders:     res.Coders,
		Items:      res.Items,
		Values:     res.Values,
		Vectorized: res.Bulk,
		Mean:       finite(res.Mean),
		StdDev:     finite(res.StdDev),
	}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
