package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/kalpha/internal/domain/alpha"
)

// AbsoluteName names the absolute-difference metric.
const AbsoluteName = "absolute"

// Absolute is |a-b|, an interval distance that weighs large gaps linearly
// instead of quadratically. It has no vectorized kernel, so force_bulk
// decides how it is evaluated.
var Absolute = alpha.Custom(AbsoluteName, func(a, b float64) float64 {
	return math.Abs(a - b)
})

// Extras returns the custom metrics registered by WithExtras.
func Extras() []alpha.Metric {
	return []alpha.Metric{Absolute}
}

// WithExtras registers every metric returned by Extras.
func WithExtras() Option {
	return func(s *InMemoryScorer) {
		for _, m := range Extras() {
			WithMetric(m)(s)
		}
	}
}

// ValidateMetric reports whether name is a built-in metric or one of Extras.
func ValidateMetric(name string) error {
	if _, err := alpha.ParseMetric(name); err == nil {
		return nil
	}
	key := strings.ToLower(strings.TrimSpace(name))
	for _, m := range Extras() {
		if m.Name == key {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", alpha.ErrUnknownMetric, name)
}
