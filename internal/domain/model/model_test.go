package model_test

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/okian/kalpha/internal/domain/alpha"
	"github.com/okian/kalpha/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestJobStatus(t *testing.T) {
	convey.Convey("Given the job states", t, func() {
		convey.Convey("Then only done and failed are final", func() {
			convey.So(model.JobPending.Final(), convey.ShouldBeFalse)
			convey.So(model.JobRunning.Final(), convey.ShouldBeFalse)
			convey.So(model.JobDone.Final(), convey.ShouldBeTrue)
			convey.So(model.JobFailed.Final(), convey.ShouldBeTrue)
		})
	})
}

func TestResultJSON(t *testing.T) {
	convey.Convey("Given a result", t, func() {
		res := model.Result{Report: alpha.Report{Alpha: 0.8, Metric: "interval", Items: 3}}

		convey.Convey("Then report fields are flattened", func() {
			out, err := json.Marshal(res)
			convey.So(err, convey.ShouldBeNil)

			var m map[string]any
			convey.So(json.Unmarshal(out, &m), convey.ShouldBeNil)
			convey.So(m["alpha"], convey.ShouldEqual, 0.8)
			convey.So(m["metric"], convey.ShouldEqual, "interval")
			convey.So(m, convey.ShouldNotContainKey, "Report")
		})
	})
}

func TestCell(t *testing.T) {
	convey.Convey("Cells decode every JSON scalar", t, func() {
		var cells []model.Cell
		err := json.Unmarshal([]byte(`[1, -2.5, "cat", true, false, null]`), &cells)
		convey.So(err, convey.ShouldBeNil)
		convey.So(cells, convey.ShouldResemble, []model.Cell{
			model.Text("1"), model.Text("-2.5"), model.Text("cat"),
			model.Text("1"), model.Text("0"), model.Null,
		})
	})

	convey.Convey("Cells reject nested values", t, func() {
		var c model.Cell
		err := c.UnmarshalJSON([]byte(`{"a": 1}`))
		convey.So(errors.Is(err, model.ErrInvalidRating), convey.ShouldBeTrue)
	})

	convey.Convey("Cells encode numbers unquoted", t, func() {
		out, err := json.Marshal([]model.Cell{model.Text("3"), model.Text("cat"), model.Null, model.Text("NaN")})
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(out), convey.ShouldEqual, `[3,"cat",null,"NaN"]`)
	})

	convey.Convey("Float parses valid cells only", t, func() {
		f, err := model.ConvertCell(model.Text(" 4.5 "))
		convey.So(err, convey.ShouldBeNil)
		convey.So(f, convey.ShouldEqual, 4.5)

		_, err = model.Null.Float()
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(model.Null.String(), convey.ShouldEqual, "null")
		convey.So(model.Text("x").String(), convey.ShouldEqual, "x")
	})

	convey.Convey("Missing always includes Null", t, func() {
		convey.So(model.Missing("*"), convey.ShouldResemble, []model.Cell{model.Null, model.Text("*")})
	})
}
