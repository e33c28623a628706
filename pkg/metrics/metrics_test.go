package metrics_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/developia-II/tree-rater-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given two managers", t, func() {
		a := metrics.New()
		b := metrics.New()

		Convey("Each has its own registry", func() {
			a.IncRateLimited()
			a.ObserveUpload(metrics.ResultSuccess, time.Now())
			a.ObserveUpload(metrics.ResultTooLarge, time.Now())

			n, err := testutil.GatherAndCount(a.Registry(), "tree_rater_uploads_total")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)

			n, err = testutil.GatherAndCount(b.Registry(), "tree_rater_uploads_total")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
		})

		Convey("The handler renders the exposition format", func() {
			a.IncLeaderboard(metrics.ResultSuccess)
			rec := httptest.NewRecorder()
			a.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
			So(rec.Code, ShouldEqual, 200)
			So(rec.Body.String(), ShouldContainSubstring, `tree_rater_leaderboard_requests_total{result="success"} 1`)
		})
	})
}
