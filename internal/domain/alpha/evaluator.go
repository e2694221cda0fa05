package alpha

// MetricEvaluator sums a distance metric over the cross product of two rating
// lists: PairSum(xs, ys) = sum over y in ys of sum over x in xs of d(x, y).
//
// Implementations must agree bit for bit: both reduce one row of distances
// (fixed y, all xs) in index order and then add the row total.
type MetricEvaluator interface {
	PairSum(xs, ys []float64) float64
	// Vectorized reports whether rows are computed by a bulk kernel.
	Vectorized() bool
}

// NewEvaluator picks the evaluation strategy for m. Built-in metrics always
// use their vectorized kernel; custom metrics only when forceBulk is set.
func NewEvaluator(m Metric, forceBulk bool) MetricEvaluator {
	switch {
	case m.kernel != nil:
		return &bulkEvaluator{kernel: m.kernel}
	case forceBulk:
		return &bulkEvaluator{kernel: broadcast(m.Distance)}
	default:
		return scalarEvaluator{distance: m.Distance}
	}
}

type scalarEvaluator struct {
	distance DistanceFunc
}

func (e scalarEvaluator) PairSum(xs, ys []float64) float64 {
	var total float64
	for _, y := range ys {
		var row float64
		for _, x := range xs {
			row += e.distance(x, y)
		}
		total += row
	}
	return total
}

func (scalarEvaluator) Vectorized() bool { return false }

// bulkEvaluator is not safe for concurrent use; it reuses its row buffers.
type bulkEvaluator struct {
	kernel   bulkKernel
	row, tmp []float64
}

func (e *bulkEvaluator) PairSum(xs, ys []float64) float64 {
	if cap(e.row) < len(xs) {
		e.row = make([]float64, len(xs))
		e.tmp = make([]float64, len(xs))
	}
	row, tmp := e.row[:len(xs)], e.tmp[:len(xs)]

	var total float64
	for _, y := range ys {
		e.kernel(row, tmp, xs, y)
		total += sumRow(row)
	}
	return total
}

func (*bulkEvaluator) Vectorized() bool { return true }

// sumRow adds values in index order. floats.Sum is avoided on purpose: its
// assembly uses several accumulators and would not match scalarEvaluator.
func sumRow(row []float64) float64 {
	var s float64
	for _, v := range row {
		s += v
	}
	return s
}
