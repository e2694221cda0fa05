// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/kalpha/pkg/metrics"
)

// MetricsMiddleware records request count and latency for endpoint. Failed
// requests are also counted under the error code written in the body.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		ms := float64(time.Since(start).Milliseconds())
		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, ms)

		if rec.status < http.StatusBadRequest {
			return
		}
		code := rec.code
		if code == "" {
			// The handler wrote the status without going through fail.
			code = "untagged"
		}
		metrics.RecordErrorByEndpoint(endpoint, r.Method, code)
		metrics.RecordErrorByType(code, severity(rec.status))
		metrics.RecordErrorLatency("http", code, ms)
	}
}

// severity grades a failed status for the error metrics.
func severity(status int) string {
	switch status {
	case http.StatusInternalServerError:
		return "high"
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return "medium"
	default:
		return "low"
	}
}

// statusRecorder captures the status and, for failures, the error code.
type statusRecorder struct {
	http.ResponseWriter
	status int
	code   string
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

// tagError notes code on w when w records metrics.
func tagError(w http.ResponseWriter, code string) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.code = code
	}
}
