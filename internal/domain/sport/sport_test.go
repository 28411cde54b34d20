package sport

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTypeOf(t *testing.T) {
	Convey("TypeOf classifies by case-insensitive substring", t, func() {
		So(TypeOf("Swimming"), ShouldEqual, Swimming)
		So(TypeOf("OPEN_WATER_SWIM"), ShouldEqual, Swimming)
		So(TypeOf("Trail Running"), ShouldEqual, Running)
		So(TypeOf("Cycling"), ShouldEqual, Cycling)
		So(TypeOf("mountain bike"), ShouldEqual, Cycling)
		So(TypeOf("recycle"), ShouldEqual, Cycling)
		So(TypeOf("Yoga"), ShouldEqual, Unknown)
		So(TypeOf(""), ShouldEqual, Unknown)

		Convey("swim wins over run when both appear", func() {
			So(TypeOf("swimrun"), ShouldEqual, Swimming)
		})
	})

	Convey("ParseType only accepts canonical names", t, func() {
		So(ParseType("Running"), ShouldEqual, Running)
		So(ParseType("running"), ShouldEqual, Unknown)
		for _, st := range AllTypes {
			So(ParseType(st.String()), ShouldEqual, st)
		}
	})
}

func TestSportJSON(t *testing.T) {
	Convey("Given a swimming record from the backend", t, func() {
		raw := `{"id":7,"type":"Swimming","start_time":1694560000,"calories":200,
			"distance_meter":1000,"duration_second":600,"heart_rate_avg":120,"heart_rate_max":150,
			"pace_average":"3'59''","extra":{"main_stroke":"freestyle","stroke_avg":20,"swolf_avg":80},
			"tracks":[{"distance_meter":50,"duration_second":60,"pace_average":"2'00''","extra":{"stroke_avg":18}}]}`

		var s Sport
		So(json.Unmarshal([]byte(raw), &s), ShouldBeNil)

		Convey("extras are decoded as the swimming variant", func() {
			sw, ok := s.Extra.(*SwimmingExtra)
			So(ok, ShouldBeTrue)
			So(*sw, ShouldResemble, SwimmingExtra{MainStroke: "freestyle", StrokeAvg: 20, SwolfAvg: 80})

			tr, ok := s.Tracks[0].Extra.(*SwimmingExtra)
			So(ok, ShouldBeTrue)
			So(tr.StrokeAvg, ShouldEqual, 18)
			So(tr.MainStroke, ShouldEqual, "")
		})

		Convey("encoding produces the untagged wire shape", func() {
			out, err := json.Marshal(s)
			So(err, ShouldBeNil)
			var m map[string]any
			So(json.Unmarshal(out, &m), ShouldBeNil)
			So(m["extra"], ShouldResemble, map[string]any{"main_stroke": "freestyle", "stroke_avg": float64(20), "swolf_avg": float64(80)})
			So(m["id"], ShouldEqual, float64(7))
		})
	})

	Convey("Given a running record", t, func() {
		raw := `{"type":"Running","extra":{"speed_avg":10.5,"cadence_avg":"172","pace_min":"5'10''"}}`
		var s Sport
		So(json.Unmarshal([]byte(raw), &s), ShouldBeNil)
		r := s.Extra.(*RunningExtra)
		So(r.SpeedAvg, ShouldEqual, 10.5)
		So(r.CadenceAvg, ShouldEqual, 172)
		So(r.PaceMin, ShouldEqual, "5'10''")
		So(s.Tracks, ShouldNotBeNil)
		So(s.Tracks, ShouldBeEmpty)
	})

	Convey("Given a cycling record with a stray payload", t, func() {
		var s Sport
		So(json.Unmarshal([]byte(`{"type":"Cycling","extra":{"stroke_avg":3}}`), &s), ShouldBeNil)
		So(s.Extra, ShouldBeNil)

		out, _ := json.Marshal(s)
		So(string(out), ShouldNotContainSubstring, `"extra"`)
		So(string(out), ShouldContainSubstring, `"tracks":[]`)
	})

	Convey("Malformed extra payloads are rejected", t, func() {
		var s Sport
		err := json.Unmarshal([]byte(`{"type":"Running","extra":[1,2]}`), &s)
		So(err, ShouldNotBeNil)
	})
}

func TestExtraAccess(t *testing.T) {
	Convey("Set coerces values per field", t, func() {
		r := &RunningExtra{}
		So(r.Set(KeySpeedAvg, "12.75"), ShouldBeTrue)
		So(r.Set(KeyStepsTotal, 1234.9), ShouldBeTrue)
		So(r.Set(KeyPaceMax, "6'00''"), ShouldBeTrue)
		So(r.Set(KeyMainStroke, "x"), ShouldBeFalse)
		So(r.SpeedAvg, ShouldEqual, 12.75)
		So(r.StepsTotal, ShouldEqual, 1234)

		v, ok := r.Get(KeyPaceMax)
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, "6'00''")
		_, ok = r.Get("nope")
		So(ok, ShouldBeFalse)
	})

	Convey("Clone is deep", t, func() {
		s := &Sport{Type: "Swimming", Extra: &SwimmingExtra{StrokeAvg: 1}, Tracks: []Track{{Extra: &SwimmingExtra{SwolfAvg: 2}}}}
		c := s.Clone()
		c.Extra.Set(KeyStrokeAvg, 9)
		c.Tracks[0].Extra.Set(KeySwolfAvg, 9)
		So(s.Extra.(*SwimmingExtra).StrokeAvg, ShouldEqual, 1)
		So(s.Tracks[0].Extra.(*SwimmingExtra).SwolfAvg, ShouldEqual, 2)
	})

	Convey("ExtraFromMap fills known keys", t, func() {
		e := ExtraFromMap(Swimming, map[string]any{"stroke_avg": 20, "swolf_avg": "80", "other": true})
		So(e, ShouldResemble, Extra(&SwimmingExtra{StrokeAvg: 20, SwolfAvg: 80}))
		So(ExtraFromMap(Cycling, map[string]any{"stroke_avg": 1}), ShouldBeNil)
	})

	Convey("Numeric prefixes parse leniently", t, func() {
		So(ParseIntPrefix("12abc"), ShouldEqual, 12)
		So(ParseIntPrefix("3.9"), ShouldEqual, 3)
		So(ParseIntPrefix("abc"), ShouldEqual, 0)
		So(ParseIntPrefix(" -4"), ShouldEqual, -4)
		So(ParseFloatPrefix("3.5km"), ShouldEqual, 3.5)
		So(ParseFloatPrefix("."), ShouldEqual, 0)
		So(ParseFloatPrefix("7."), ShouldEqual, 7)
	})
}

func TestValidate(t *testing.T) {
	Convey("Given records with mismatched payloads", t, func() {
		Convey("a running extra on a swimming record fails", func() {
			s := &Sport{Type: "Swimming", Extra: &RunningExtra{}}
			So(errors.Is(s.Validate(), ErrTypeMismatch), ShouldBeTrue)
		})
		Convey("a payload on a cycling track fails", func() {
			s := &Sport{Type: "Cycling", Tracks: []Track{{Extra: &SwimmingExtra{}}}}
			err := s.Validate()
			So(errors.Is(err, ErrTypeMismatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "track 0")
		})
		Convey("negative counters fail", func() {
			s := &Sport{Type: "Running", Calories: -1}
			So(errors.Is(s.Validate(), ErrInvalidRecord), ShouldBeTrue)
		})
		Convey("a matching record passes", func() {
			s := &Sport{Type: "Running", Extra: &RunningExtra{}, Tracks: []Track{{}}}
			So(s.Validate(), ShouldBeNil)
		})
	})

	Convey("Retype replaces foreign payloads", t, func() {
		def := func(t SportType) Extra { return NewExtra(t) }
		s := &Sport{Type: "Swimming", Extra: &SwimmingExtra{StrokeAvg: 3}, Tracks: []Track{{Extra: &SwimmingExtra{}}}}
		s.Retype(Running, def)
		So(s.Type, ShouldEqual, "Running")
		So(s.Extra.Type(), ShouldEqual, Running)
		So(s.Tracks[0].Extra.Type(), ShouldEqual, Running)

		s.Retype(Cycling, def)
		So(s.Extra, ShouldBeNil)
		So(s.Tracks[0].Extra, ShouldBeNil)
	})

	Convey("Blank starts at now with a zero pace", t, func() {
		now := time.Unix(1700000000, 0)
		s := Blank(Swimming, now, func(t SportType) Extra { return NewExtra(t) })
		So(s.StartTime, ShouldEqual, 1700000000)
		So(s.PaceAverage, ShouldEqual, ZeroPace)
		So(s.Extra.Type(), ShouldEqual, Swimming)
	})
}

func TestTimeFormats(t *testing.T) {
	Convey("HMS round trips", t, func() {
		So(FormatHMS(3725), ShouldEqual, "01:02:05")
		So(FormatHMS(0), ShouldEqual, "00:00:00")
		So(FormatHMS(-5), ShouldEqual, "00:00:00")
		So(FormatHMS(90000), ShouldEqual, "25:00:00")
		So(ParseHMS("01:02:05"), ShouldEqual, 3725)
		So(ParseHMS("1:2"), ShouldEqual, 3720)
		So(ParseHMS("x:1:"), ShouldEqual, 60)
		So(ParseHMS(""), ShouldEqual, 0)
	})

	Convey("Input datetimes use the given location", t, func() {
		loc := time.FixedZone("CST", 8*3600)
		So(FormatInputDateTime(1694560000, loc), ShouldEqual, "2023-09-13T07:06:40")
		So(FormatDisplayDateTime(1694560000, loc), ShouldEqual, "2023-09-13 07:06:40")
		So(ParseInputDateTime("2023-09-13T07:06:40", loc), ShouldEqual, 1694560000)
		So(ParseInputDateTime("2023-09-13 07:06:40", loc), ShouldEqual, 1694560000)
		So(ParseInputDateTime("2023", loc), ShouldEqual, time.Date(2023, 1, 1, 0, 0, 0, 0, loc).Unix())
	})
}
