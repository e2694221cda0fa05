// Package scoring turns reliability requests into alpha results.
package scoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/kalpha/internal/domain/alpha"
	"github.com/okian/kalpha/internal/domain/model"
)

// Option applies a configuration option to the InMemoryScorer.
type Option func(*InMemoryScorer)

// WithDefaultMetric sets the metric used when a request names none.
func WithDefaultMetric(name string) Option {
	return func(s *InMemoryScorer) {
		if name != "" {
			s.defaultMetric = strings.ToLower(strings.TrimSpace(name))
		}
	}
}

// WithMissing sets the missing markers used when a request lists none.
func WithMissing(markers ...string) Option {
	return func(s *InMemoryScorer) {
		s.missing = append([]string(nil), markers...)
	}
}

// WithMetric registers a custom metric under m.Name. Built-in names cannot be
// replaced.
func WithMetric(m alpha.Metric) Option {
	return func(s *InMemoryScorer) {
		name := strings.ToLower(strings.TrimSpace(m.Name))
		if name == "" || m.Distance == nil {
			return
		}
		if _, err := alpha.ParseMetric(name); err == nil {
			return
		}
		s.custom[name] = m
	}
}

// Scorer computes a reliability result for a request.
type Scorer interface {
	// Score computes alpha, honoring ctx for cancellation.
	Score(ctx context.Context, req model.Request) (model.Result, error)
}

// InMemoryScorer implements Scorer with the alpha engine.
type InMemoryScorer struct {
	defaultMetric string
	missing       []string
	custom        map[string]alpha.Metric
}

// NewInMemoryScorer creates a new scorer with configuration options.
func NewInMemoryScorer(opts ...Option) *InMemoryScorer {
	s := &InMemoryScorer{
		defaultMetric: alpha.IntervalName,
		custom:        make(map[string]alpha.Metric),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Metric resolves a metric name: built-ins first, then registered custom
// metrics. An empty name selects the default metric.
func (s *InMemoryScorer) Metric(name string) (alpha.Metric, error) {
	if strings.TrimSpace(name) == "" {
		name = s.defaultMetric
	}
	m, err := alpha.ParseMetric(name)
	if err == nil {
		return m, nil
	}
	if m, ok := s.custom[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m, nil
	}
	return alpha.Metric{}, err
}

// Metrics lists the names Score accepts.
func (s *InMemoryScorer) Metrics() []string {
	names := []string{alpha.NominalName, alpha.IntervalName, alpha.RatioName}
	for name := range s.custom {
		names = append(names, name)
	}
	return names
}

// Score computes the result for req. Missing markers in req replace the
// configured defaults; Null cells are always missing.
func (s *InMemoryScorer) Score(ctx context.Context, req model.Request) (model.Result, error) {
	if err := ctx.Err(); err != nil {
		return model.Result{}, fmt.Errorf("context cancelled: %w", err)
	}

	m, err := s.Metric(req.Metric)
	if err != nil {
		return model.Result{}, err
	}

	markers := s.missing
	if req.Missing != nil {
		markers = req.Missing
	}
	opts := []alpha.Option[model.Cell]{alpha.WithMissing(model.Missing(markers...)...)}
	if req.Categorical {
		coder := alpha.NewCategoryCoder[model.Cell]()
		opts = append(opts, alpha.WithConverter(coder.Convert))
	} else {
		opts = append(opts, alpha.WithConverter(model.ConvertCell))
	}
	if req.ForceBulk {
		opts = append(opts, alpha.WithForceBulk[model.Cell]())
	}

	report, err := alpha.Analyze(req.Coders, m, opts...)
	if err != nil {
		return model.Result{}, err
	}
	return model.Result{Report: report}, nil
}
