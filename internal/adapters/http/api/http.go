// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/kalpha/internal/adapters/loader"
	"github.com/okian/kalpha/internal/adapters/repository"
	service "github.com/okian/kalpha/internal/app"
	"github.com/okian/kalpha/internal/domain/alpha"
	"github.com/okian/kalpha/internal/domain/model"
	"github.com/okian/kalpha/internal/domain/types"
)

const defaultMaxBodyBytes = 8 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Compute runs a request synchronously.
	Compute(ctx context.Context, req model.Request) (model.Result, error)
	// Submit queues a request as a job and returns its ID.
	Submit(ctx context.Context, id string, req model.Request) (string, error)
	// Job returns the state of a submitted job.
	Job(ctx context.Context, id string) (types.JobView, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	alphaHandler  *AlphaHandler
	jobsHandler   *JobsHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	maxBodyBytes int64
}

// WithMaxBodyBytes limits request bodies. Non-positive values are ignored.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	o := serverOptions{maxBodyBytes: defaultMaxBodyBytes}

	// Apply all options
	for _, opt := range opts {
		opt(&o)
	}

	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		alphaHandler:  NewAlphaHandler(deps, o.maxBodyBytes),
		jobsHandler:   NewJobsHandler(deps, o.maxBodyBytes),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /alpha", MetricsMiddleware(s.alphaHandler.HandleCompute, "alpha"))
	mux.HandleFunc("POST /jobs", MetricsMiddleware(s.jobsHandler.HandleSubmit, "jobs"))
	mux.HandleFunc("GET /jobs/{id}", MetricsMiddleware(s.jobsHandler.HandleGet, "job"))
}

// alphaRequest is the body of POST /alpha and POST /jobs.
type alphaRequest struct {
	JobID       string            `json:"job_id,omitempty"`
	Metric      string            `json:"metric"`
	Missing     []string          `json:"missing"`
	Categorical bool              `json:"categorical"`
	ForceBulk   bool              `json:"force_bulk"`
	Coders      []json.RawMessage `json:"coders"`
}

func (a *alphaRequest) toModel() (model.Request, error) {
	coders, err := loader.DecodeCoders(a.Coders)
	if err != nil {
		return model.Request{}, err
	}
	return model.Request{
		Metric:      a.Metric,
		Missing:     a.Missing,
		Categorical: a.Categorical,
		ForceBulk:   a.ForceBulk,
		Coders:      coders,
	}, nil
}

// decodeRequest reads an alphaRequest from r, bounded by limit bytes.
func decodeRequest(w http.ResponseWriter, r *http.Request, limit int64, op string) (alphaRequest, model.Request, error) {
	var body alphaRequest
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return body, model.Request{}, WrapKind(op, ErrPayloadTooLarge, err)
		}
		return body, model.Request{}, WrapKind(op, ErrBadRequest, err)
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return body, model.Request{}, WrapKind(op, ErrBadRequest, err)
	}
	req, err := body.toModel()
	if err != nil {
		return body, model.Request{}, WrapKind(op, ErrBadRequest, err)
	}
	return body, req, nil
}

type jobResponse struct {
	JobID       string            `json:"job_id"`
	Status      model.JobStatus   `json:"status"`
	Result      *types.ReportView `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	SubmittedAt *time.Time        `json:"submitted_at,omitempty"`
	FinishedAt  *time.Time        `json:"finished_at,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	tagError(w, code)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps domain and service errors to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, alpha.ErrInsufficientData):
		return http.StatusUnprocessableEntity, "insufficient_data"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, alpha.ErrUnknownMetric),
		errors.Is(err, alpha.ErrInvalidMetric),
		errors.Is(err, alpha.ErrConversion),
		errors.Is(err, loader.ErrMalformedJSON),
		errors.Is(err, loader.ErrEmptyInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrInvalidID):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrJobExists):
		return http.StatusConflict, "conflict"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func fail(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}
