package alpha

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Report describes one alpha computation.
type Report struct {
	Alpha float64 `json:"alpha"`
	// Observed is Do, the mean within-item disagreement.
	Observed float64 `json:"observed_disagreement"`
	// Expected is De, the disagreement expected by chance. It stays 0 when
	// Observed is 0, because alpha is then 1 without computing it.
	Expected float64 `json:"expected_disagreement"`
	Metric   string  `json:"metric"`
	Coders   int     `json:"coders"`
	Items    int     `json:"items"`  // pairable items
	Values   int     `json:"values"` // pairable ratings (n)
	Bulk     bool    `json:"vectorized"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"stddev"`
}

// Compute returns Krippendorff's alpha for data under metric.
//
// It fails with ErrInsufficientData when no item has two valid ratings, and
// with ErrConversion when a rating cannot be converted. The result is not
// clamped; metrics that divide by zero (see RatioDistance) yield NaN or Inf.
func Compute[V comparable](data Dataset[V], metric Metric, opts ...Option[V]) (float64, error) {
	r, _, err := run(data, metric, newSettings(opts))
	if err != nil {
		return 0, err
	}
	return r.Alpha, nil
}

// Analyze is Compute plus the intermediate quantities and a summary of the
// pairable ratings.
func Analyze[V comparable](data Dataset[V], metric Metric, opts ...Option[V]) (Report, error) {
	r, units, err := run(data, metric, newSettings(opts))
	if err != nil {
		return Report{}, err
	}

	values := make([]float64, 0, r.Values)
	for _, g := range units.groups() {
		values = append(values, g...)
	}
	r.Mean, r.StdDev = stat.MeanStdDev(values, nil)
	return r, nil
}

func run[V comparable](data Dataset[V], metric Metric, s settings[V]) (Report, Units, error) {
	if metric.Distance == nil {
		return Report{}, Units{}, fmt.Errorf("%w: %q has no distance function", ErrInvalidMetric, metric.Name)
	}

	units, err := Normalize(data, s.convert, s.missing)
	if err != nil {
		return Report{}, Units{}, err
	}
	pairable := units.Pairable()
	n := pairable.Values()
	if n == 0 {
		return Report{}, Units{}, ErrInsufficientData
	}

	eval := NewEvaluator(metric, s.forceBulk)
	groups := pairable.groups()
	r := Report{
		Metric: metric.Name,
		Coders: len(data),
		Items:  pairable.Len(),
		Values: n,
		Bulk:   eval.Vectorized(),
	}

	r.Observed = Observed(eval, groups, n)
	if r.Observed == 0 {
		r.Alpha = 1
		return r, pairable, nil
	}

	r.Expected = Expected(eval, groups, n)
	if r.Expected == 0 {
		r.Alpha = 1
		return r, pairable, nil
	}
	r.Alpha = 1 - r.Observed/r.Expected
	return r, pairable, nil
}

// Observed returns Do: for every item with k ratings, the metric summed over
// all ordered rating pairs (self-pairs included) divided by k-1, totalled and
// divided by n.
func Observed(eval MetricEvaluator, groups [][]float64, n int) float64 {
	var do float64
	for _, g := range groups {
		do += eval.PairSum(g, g) / float64(len(g)-1)
	}
	return do / float64(n)
}

// Expected returns De: the metric summed over the full cross product of every
// pair of items' ratings (an item with itself included), divided by n(n-1).
func Expected(eval MetricEvaluator, groups [][]float64, n int) float64 {
	var de float64
	for _, g1 := range groups {
		for _, g2 := range groups {
			de += eval.PairSum(g1, g2)
		}
	}
	return de / float64(n*(n-1))
}
