package alpha_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/kalpha/internal/domain/alpha"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDistances(t *testing.T) {
	Convey("Nominal distance", t, func() {
		So(alpha.NominalDistance(3, 3), ShouldEqual, 0.0)
		So(alpha.NominalDistance(3, 4), ShouldEqual, 1.0)
	})

	Convey("Interval distance", t, func() {
		So(alpha.IntervalDistance(1, 4), ShouldEqual, 9.0)
		So(alpha.IntervalDistance(4, 1), ShouldEqual, 9.0)
		So(alpha.IntervalDistance(2.5, 2.5), ShouldEqual, 0.0)
	})

	Convey("Ratio distance", t, func() {
		So(alpha.RatioDistance(1, 3), ShouldEqual, 0.25)
		So(alpha.RatioDistance(3, 1), ShouldEqual, 0.25)
		So(alpha.RatioDistance(5, 5), ShouldEqual, 0.0)

		Convey("is not guarded when a+b is zero", func() {
			So(math.IsNaN(alpha.RatioDistance(0, 0)), ShouldBeTrue)
			So(math.IsInf(alpha.RatioDistance(2, -2), 1), ShouldBeTrue)
		})
	})
}

func TestParseMetric(t *testing.T) {
	Convey("Given metric names", t, func() {
		Convey("Built-in names resolve regardless of case and spacing", func() {
			for name, want := range map[string]string{
				"nominal":    alpha.NominalName,
				" Interval ": alpha.IntervalName,
				"RATIO":      alpha.RatioName,
			} {
				m, err := alpha.ParseMetric(name)
				So(err, ShouldBeNil)
				So(m.Name, ShouldEqual, want)
				So(m.Vectorized(), ShouldBeTrue)
				So(m.String(), ShouldEqual, want)
			}
		})

		Convey("Unknown names fail with ErrUnknownMetric", func() {
			_, err := alpha.ParseMetric("ordinal")
			So(errors.Is(err, alpha.ErrUnknownMetric), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, `"ordinal"`)
		})
	})

	Convey("Custom metrics are not vectorized", t, func() {
		m := alpha.Custom("abs", func(a, b float64) float64 { return math.Abs(a - b) })
		So(m.Vectorized(), ShouldBeFalse)
		So(m.Distance(1, 4), ShouldEqual, 3.0)
	})

	Convey("Builtins lists the three metrics in order", t, func() {
		names := []string{}
		for _, m := range alpha.Builtins() {
			names = append(names, m.Name)
		}
		So(names, ShouldResemble, []string{"nominal", "interval", "ratio"})
	})
}
