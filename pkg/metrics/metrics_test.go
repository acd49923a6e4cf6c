package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func gather(reg *prometheus.Registry) map[string]*dto.MetricFamily {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(reg), WithNamespace("test"), WithSubsystem("board"))

		Convey("When a leaderboard computation is recorded", func() {
			m.RecordLeaderboardComputation("score", 1.5)
			m.RecordLeaderboardComputation("score", 2.5)
			m.UpdateMembersTotal(42)

			Convey("Then the counter and gauge should reflect it", func() {
				families := gather(reg)
				comp := families["test_board_computations_total"]
				So(comp, ShouldNotBeNil)
				So(comp.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 2.0)
				So(families["test_board_members"].GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 42.0)
				So(families["test_board_computation_latency_milliseconds"].GetMetric()[0].GetHistogram().GetSampleCount(), ShouldEqual, uint64(2))
			})
		})

		Convey("When store operations succeed and fail", func() {
			m.RecordStoreOperation("list", 3, nil)
			m.RecordStoreOperation("list", 4, errors.New("boom"))

			Convey("Then only the failure should be counted as an error", func() {
				families := gather(reg)
				So(families["test_board_store_errors_total"].GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 1.0)
				So(families["test_board_store_latency_milliseconds"].GetMetric()[0].GetHistogram().GetSampleCount(), ShouldEqual, uint64(2))
			})
		})

		Convey("When HTTP traffic is recorded", func() {
			m.RecordHTTPRequest("leaderboard", "GET", "200", 12)
			m.RecordHTTPError("members", "GET", "not_found")

			Convey("Then both families should be exported", func() {
				families := gather(reg)
				So(families, ShouldContainKey, "test_board_http_requests_total")
				So(families, ShouldContainKey, "test_board_http_errors_total")
			})
		})
	})

	Convey("Given the global registry", t, func() {
		Convey("Then package helpers should record without panicking", func() {
			So(func() {
				RecordValentineSent()
				RecordValentineDuplicate()
				RecordValentineDelivered()
				RecordValentineDeliveryError()
				UpdateQueueSize(3)
				UpdateQueueCapacity(10)
				RecordQueueRejected("full")
				UpdateWorkerCount(2)
				RecordWorkerLatency(1)
				RecordMemberLookup("found")
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
