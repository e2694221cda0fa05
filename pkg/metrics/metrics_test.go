package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("alpha"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)
			manager.computations.WithLabelValues("interval", OutcomeOK).Inc()

			Convey("Then metrics are registered under the custom names", func() {
				So(manager, ShouldNotBeNil)
				count, err := testutil.GatherAndCount(registry, "test_alpha_computations_total")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
				So(testutil.ToFloat64(manager.computations.WithLabelValues("interval", OutcomeOK)), ShouldEqual, 1.0)
			})
		})

		Convey("When empty options are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "kalpha")
				So(manager.subsystem, ShouldEqual, "engine")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording engine metrics", func() {
			before := testutil.ToFloat64(globalManager.computations.WithLabelValues("nominal", OutcomeOK))
			RecordComputation("nominal", OutcomeOK)
			RecordComputationLatency("nominal", 1.5)
			UpdateLastAlpha("nominal", 0.691)
			RecordPairable(12, 26)
			RecordInsufficientData()

			Convey("Then the values are visible", func() {
				So(testutil.ToFloat64(globalManager.computations.WithLabelValues("nominal", OutcomeOK)), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.lastAlpha.WithLabelValues("nominal")), ShouldEqual, 0.691)
				So(testutil.ToFloat64(globalManager.insufficientData), ShouldBeGreaterThanOrEqualTo, 1.0)
			})
		})

		Convey("When recording job metrics", func() {
			before := testutil.ToFloat64(globalManager.jobsSubmitted)
			RecordJobSubmitted()
			RecordJobFinished("done")
			UpdateJobsStored(3)
			RecordJobEvicted()

			Convey("Then the values are visible", func() {
				So(testutil.ToFloat64(globalManager.jobsSubmitted), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.jobsStored), ShouldEqual, 3.0)
			})
		})

		Convey("When recording queue and worker metrics", func() {
			UpdateQueueCapacity(10)
			UpdateQueueSize(4)
			UpdateQueueUtilization(0.4)
			UpdateWorkerCount(2)
			AddWorkerActive(1)
			AddWorkerActive(-1)

			Convey("Then the gauges hold the latest value", func() {
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 10.0)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 4.0)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 2.0)
				So(testutil.ToFloat64(globalManager.workerActiveCount), ShouldEqual, 0.0)
			})

			Convey("And counters and histograms accept observations", func() {
				So(func() {
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					RecordQueueProcessingLatency(0.2)
					UpdateWorkerJobsPerSecond(3.5)
					RecordWorkerProcessingLatency(12)
					RecordWorkerError()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP, error and system metrics", func() {
			So(func() {
				RecordHTTPRequest("alpha", "POST", "200")
				RecordHTTPRequestDuration("alpha", "POST", "200", 3)
				RecordErrorByComponent("worker", "insufficient_data")
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("alpha", "POST", "client_error")
				RecordErrorLatency("http", "client_error", 1)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)

			Convey("Then the custom registry exposes them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "kalpha_engine_http_requests_total")
				So(names, ShouldContain, "kalpha_engine_system_goroutine_count")
			})
		})
	})
}
