package qsim

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	Convey("Given metrics on a shared registry", t, func() {
		reg := prometheus.NewRegistry()
		metrics := NewMetrics(reg)
		engine := NewEngine(WithConfig(serialConfig()), WithMetrics(metrics))

		Convey("Every gate is counted by path", func() {
			v, _ := NewAmplitudeVector(3)
			So(engine.ApplyGate(v, Must(H(0))), ShouldBeNil)
			So(engine.ApplyGate(v, Must(SWAP(0, 1))), ShouldBeNil)
			So(engine.ApplyGate(v, Must(Unitary("h3", hadamard3(), 0, 1, 2))), ShouldBeNil)

			So(testutil.ToFloat64(metrics.gatesApplied.WithLabelValues(PathSingle)), ShouldEqual, float64(1))
			So(testutil.ToFloat64(metrics.gatesApplied.WithLabelValues(PathGroup)), ShouldEqual, float64(1))
			So(testutil.ToFloat64(metrics.gatesApplied.WithLabelValues(PathDense)), ShouldEqual, float64(1))
			So(metrics.BackendCalls, ShouldEqual, int64(1))

			exported := metrics.ExportMetrics()
			So(exported["gates_applied"], ShouldEqual, int64(3))
			So(exported["breaker_state"], ShouldEqual, "closed")
		})

		Convey("Collectors are registered under the qsim namespace", func() {
			n, err := testutil.GatherAndCount(reg, "qsim_backend_fallbacks_total")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
		})

		Convey("Two metric sets on private registries do not collide", func() {
			So(func() { NewMetrics(nil); NewMetrics(nil) }, ShouldNotPanic)
		})

		Convey("Latency percentiles follow the recorded window", func() {
			for i := 1; i <= 100; i++ {
				metrics.recordGate(PathSingle, time.Now().Add(-time.Duration(i)*time.Millisecond))
			}

			So(metrics.GatesApplied, ShouldEqual, int64(100))

			Convey("They are computed on export, not per gate", func() {
				So(metrics.P95GateLatency, ShouldEqual, time.Duration(0))

				metrics.ExportMetrics()
				So(metrics.P95GateLatency, ShouldBeGreaterThanOrEqualTo, 96*time.Millisecond)
				So(metrics.P95GateLatency, ShouldBeLessThan, 97*time.Millisecond)
				So(metrics.P99GateLatency, ShouldBeGreaterThanOrEqualTo, 100*time.Millisecond)
			})

			Convey("Old entries roll out of the window", func() {
				for i := 0; i < 1000; i++ {
					metrics.recordGate(PathSingle, time.Now().Add(-time.Second))
				}

				exported := metrics.ExportMetrics()
				So(len(metrics.latencyWindows), ShouldEqual, 1000)
				So(metrics.P95GateLatency, ShouldBeGreaterThanOrEqualTo, time.Second)
				So(exported["p99_latency_us"], ShouldBeGreaterThanOrEqualTo, int64(1000000))
			})
		})
	})
}
