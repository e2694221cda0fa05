package alpha

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Metric names accepted by ParseMetric.
const (
	NominalName  = "nominal"
	IntervalName = "interval"
	RatioName    = "ratio"
)

// DistanceFunc returns the distance between two converted ratings. It need
// not be symmetric, but callers should know that alpha then depends on the
// order in which coders are listed.
type DistanceFunc func(a, b float64) float64

// bulkKernel writes d(xs[i], y) into dst[i] for every i. tmp is scratch space
// of the same length.
type bulkKernel func(dst, tmp, xs []float64, y float64)

// Metric is a named distance function, optionally with a vectorized kernel.
type Metric struct {
	Name     string
	Distance DistanceFunc

	kernel bulkKernel
}

// Built-in metrics. All three carry a vectorized kernel.
var (
	Nominal  = Metric{Name: NominalName, Distance: NominalDistance, kernel: nominalKernel}
	Interval = Metric{Name: IntervalName, Distance: IntervalDistance, kernel: intervalKernel}
	Ratio    = Metric{Name: RatioName, Distance: RatioDistance, kernel: ratioKernel}
)

// Custom wraps a caller-supplied distance function. Custom metrics are
// evaluated pair by pair unless WithForceBulk is given.
func Custom(name string, fn DistanceFunc) Metric {
	return Metric{Name: name, Distance: fn}
}

// Vectorized reports whether the metric ships its own bulk kernel.
func (m Metric) Vectorized() bool { return m.kernel != nil }

// String implements fmt.Stringer.
func (m Metric) String() string { return m.Name }

// Builtins returns the nominal, interval and ratio metrics.
func Builtins() []Metric {
	return []Metric{Nominal, Interval, Ratio}
}

// ParseMetric resolves a built-in metric by name (case-insensitive).
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NominalName:
		return Nominal, nil
	case IntervalName:
		return Interval, nil
	case RatioName:
		return Ratio, nil
	default:
		return Metric{}, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
}

// NominalDistance is 1 for different categories and 0 otherwise.
func NominalDistance(a, b float64) float64 {
	if a != b {
		return 1
	}
	return 0
}

// IntervalDistance is the squared difference (a-b)^2.
func IntervalDistance(a, b float64) float64 {
	d := a - b
	return d * d
}

// RatioDistance is ((a-b)/(a+b))^2.
//
// When a+b == 0 the division is not guarded: a == b == 0 yields NaN and
// a == -b != 0 yields +Inf, and either value propagates into alpha.
func RatioDistance(a, b float64) float64 {
	q := (a - b) / (a + b)
	return q * q
}

func nominalKernel(dst, _, xs []float64, y float64) {
	for i, x := range xs {
		dst[i] = NominalDistance(x, y)
	}
}

func intervalKernel(dst, _, xs []float64, y float64) {
	copy(dst, xs)
	floats.AddConst(-y, dst)
	floats.Mul(dst, dst)
}

func ratioKernel(dst, tmp, xs []float64, y float64) {
	copy(dst, xs)
	floats.AddConst(-y, dst)
	copy(tmp, xs)
	floats.AddConst(y, tmp)
	floats.Div(dst, tmp)
	floats.Mul(dst, dst)
}

// broadcast turns a scalar distance into a kernel that applies it element-wise.
func broadcast(fn DistanceFunc) bulkKernel {
	return func(dst, _, xs []float64, y float64) {
		for i, x := range xs {
			dst[i] = fn(x, y)
		}
	}
}
