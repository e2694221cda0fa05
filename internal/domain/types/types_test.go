package types_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/kalpha/internal/domain/alpha"
	"github.com/okian/kalpha/internal/domain/model"
	"github.com/okian/kalpha/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewJobView(t *testing.T) {
	Convey("Given a pending job", t, func() {
		submitted := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		job := model.Job{ID: "j1", Status: model.JobPending, Submitted: submitted}

		Convey("Then the view has no finish time and no result", func() {
			v := types.NewJobView(job)
			So(v.ID, ShouldEqual, "j1")
			So(v.Status, ShouldEqual, model.JobPending)
			So(v.SubmittedAt, ShouldEqual, submitted)
			So(v.FinishedAt, ShouldBeNil)
			So(v.Result, ShouldBeNil)
		})
	})

	Convey("Given a finished job", t, func() {
		finished := time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC)
		job := model.Job{
			ID:       "j2",
			Status:   model.JobDone,
			Result:   &model.Result{Report: alpha.Report{Alpha: 0.7}},
			Finished: finished,
		}

		Convey("Then the view carries the result and finish time", func() {
			v := types.NewJobView(job)
			So(v.Result.Alpha, ShouldEqual, 0.7)
			So(*v.FinishedAt, ShouldEqual, finished)
		})
	})

	Convey("Given a failed job", t, func() {
		job := model.Job{ID: "j3", Status: model.JobFailed, Err: "no items to compare"}

		Convey("Then the error text is exposed", func() {
			So(types.NewJobView(job).Error, ShouldEqual, "no items to compare")
		})
	})
}

func TestNewReportView(t *testing.T) {
	Convey("Given a nil result", t, func() {
		So(types.NewReportView(nil), ShouldBeNil)
	})

	Convey("Given a result with non-finite numbers", t, func() {
		res := &model.Result{
			Report: alpha.Report{
				Alpha:    math.NaN(),
				Observed: math.Inf(1),
				Expected: 2,
				Metric:   "ratio",
				Items:    3,
				Values:   6,
				Bulk:     true,
				Mean:     1.5,
				StdDev:   0.5,
			},
		}

		Convey("Then they become nil and finite values are kept", func() {
			v := types.NewReportView(res)
			So(v.Alpha, ShouldBeNil)
			So(v.Observed, ShouldBeNil)
			So(*v.Expected, ShouldEqual, 2)
			So(v.Metric, ShouldEqual, "ratio")
			So(v.Vectorized, ShouldBeTrue)
			So(*v.Mean, ShouldEqual, 1.5)
		})
	})
}
