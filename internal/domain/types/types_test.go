package types_test

import (
	"encoding/json"
	"testing"

	"github.com/slamweb/slam/internal/domain/sport"
	types "github.com/slamweb/slam/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJSONShapes(t *testing.T) {
	Convey("Given view types", t, func() {
		Convey("Defaults carry the untagged payload", func() {
			b, err := json.Marshal(types.Defaults{
				Type:  "Swimming",
				Extra: &sport.SwimmingExtra{MainStroke: "unknown"},
				Track: sport.Track{PaceAverage: "0"},
			})
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"extra":{"main_stroke":"unknown","stroke_avg":0,"swolf_avg":0}`)
			So(string(b), ShouldContainSubstring, `"pace_average":"0"`)
		})

		Convey("Jobs omit empty optional fields", func() {
			b, err := json.Marshal(types.Job{ID: "j", Status: "pending"})
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"job_id":"j"`)
			So(string(b), ShouldNotContainSubstring, "draft_id")
			So(string(b), ShouldNotContainSubstring, "duplicate")
		})
	})
}
