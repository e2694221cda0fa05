package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/kalpha/internal/domain/alpha"
	"github.com/okian/kalpha/internal/domain/model"
	"github.com/okian/kalpha/internal/domain/scoring"
	"github.com/okian/kalpha/pkg/metrics"
)

// instrumentedScorer records engine metrics around a scoring.Scorer.
type instrumentedScorer struct {
	scorer scoring.Scorer
}

func (a *instrumentedScorer) Score(ctx context.Context, req model.Request) (model.Result, error) {
	start := time.Now()
	res, err := a.scorer.Score(ctx, req)
	latency := float64(time.Since(start).Microseconds()) / 1000

	// Label by the resolved metric only; request names are unbounded.
	label := res.Metric
	if label == "" {
		label = a.resolve(req.Metric)
	}
	metrics.RecordComputationLatency(label, latency)

	switch {
	case err == nil:
		metrics.RecordComputation(label, metrics.OutcomeOK)
		metrics.UpdateLastAlpha(label, res.Alpha)
		metrics.RecordPairable(res.Items, res.Values)
	case errors.Is(err, alpha.ErrInsufficientData):
		metrics.RecordComputation(label, metrics.OutcomeInsufficient)
		metrics.RecordInsufficientData()
	default:
		metrics.RecordComputation(label, metrics.OutcomeError)
		metrics.RecordErrorByComponent("engine", errorType(err))
	}
	return res, err
}

// resolve names the metric req would use, or "unresolved" when the scorer
// cannot say.
func (a *instrumentedScorer) resolve(name string) string {
	r, ok := a.scorer.(interface {
		Metric(name string) (alpha.Metric, error)
	})
	if !ok {
		return "unresolved"
	}
	m, err := r.Metric(name)
	if err != nil {
		return "unresolved"
	}
	return m.Name
}

func errorType(err error) string {
	switch {
	case errors.Is(err, alpha.ErrUnknownMetric):
		return "unknown_metric"
	case errors.Is(err, alpha.ErrConversion):
		return "conversion"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "context_cancelled"
	default:
		return "internal"
	}
}
