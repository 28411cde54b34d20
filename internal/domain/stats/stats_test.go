package stats

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQueryValidate(t *testing.T) {
	Convey("Given statistics queries", t, func() {
		So(Query{Kind: KindYear, Year: 2024}.Validate(), ShouldBeNil)
		So(Query{Kind: KindTotal, Year: 2024}.Validate(), ShouldBeNil)
		So(Query{Kind: KindMonth, Year: 2024, Month: 2}.Validate(), ShouldBeNil)
		So(Query{Kind: KindWeek, Year: 2020, Week: 53}.Validate(), ShouldBeNil)

		So(errors.Is(Query{Kind: "decade", Year: 2024}.Validate(), ErrInvalidQuery), ShouldBeTrue)
		So(errors.Is(Query{Kind: KindMonth, Year: 2024}.Validate(), ErrInvalidQuery), ShouldBeTrue)
		So(errors.Is(Query{Kind: KindWeek, Year: 2024, Week: 54}.Validate(), ErrInvalidQuery), ShouldBeTrue)
		So(errors.Is(Query{Kind: KindYear}.Validate(), ErrInvalidQuery), ShouldBeTrue)
	})
}

func TestSeries(t *testing.T) {
	Convey("Given a summary with buckets", t, func() {
		s := &Summary{Buckets: []StatBucket{
			{Date: 1, Calories: 100, Duration: 600, Count: 1},
			{Date: 3, Calories: 300, Duration: 1800, Count: 2},
			{Date: 40, Calories: 9, Duration: 9, Count: 9},
			{Date: -2, Calories: 7, Duration: 7, Count: 7},
		}}

		Convey("a year window has twelve monthly points", func() {
			pts := Series(Query{Kind: KindYear, Year: 2024}, s, "zh")
			So(len(pts), ShouldEqual, 12)
			So(pts[0].Label, ShouldEqual, "1月")
			So(pts[2].Calories, ShouldEqual, 300)
			So(pts[11].Calories, ShouldEqual, 9)
			So(pts[0].Calories, ShouldEqual, 7)
		})

		Convey("a month window has one point per day", func() {
			pts := Series(Query{Kind: KindMonth, Year: 2024, Month: 2}, s, "en")
			So(len(pts), ShouldEqual, 29)
			So(pts[28].Count, ShouldEqual, 9)
			So(pts[1].Label, ShouldEqual, "2")
		})

		Convey("a week window runs Monday to Sunday", func() {
			pts := Series(Query{Kind: KindWeek, Year: 2024, Week: 5}, s, "en")
			So(len(pts), ShouldEqual, 7)
			So(pts[0].Label, ShouldEqual, "Mon")
			So(pts[6].Label, ShouldEqual, "Sun")
			So(pts[6].Duration, ShouldEqual, 9)
		})

		Convey("the total window has no points", func() {
			So(Series(Query{Kind: KindTotal, Year: 2024}, s, "en"), ShouldBeEmpty)
		})
	})

	Convey("A nil summary still yields labelled empty slots", t, func() {
		pts := Series(Query{Kind: KindYear, Year: 2024}, nil, "en")
		So(len(pts), ShouldEqual, 12)
		So(pts[9].Label, ShouldEqual, "M10")
	})
}

func TestThinZeros(t *testing.T) {
	Convey("Zero runs keep one point in three", t, func() {
		in := []Point{
			{Slot: 1, Calories: 5},
			{Slot: 2}, {Slot: 3}, {Slot: 4}, {Slot: 5}, {Slot: 6}, {Slot: 7}, {Slot: 8},
			{Slot: 9, Calories: 1},
			{Slot: 10}, {Slot: 11},
		}
		out := ThinZeros(in)
		slots := make([]int, 0, len(out))
		for _, p := range out {
			slots = append(slots, p.Slot)
		}
		So(slots, ShouldResemble, []int{1, 2, 5, 9})
	})
}

func TestCalendarHelpers(t *testing.T) {
	Convey("DaysInMonth handles leap years", t, func() {
		So(DaysInMonth(2024, 2), ShouldEqual, 29)
		So(DaysInMonth(2023, 2), ShouldEqual, 28)
		So(DaysInMonth(2024, 12), ShouldEqual, 31)
	})

	now := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)

	Convey("YearOptions runs back to the earliest year", t, func() {
		e := 2021
		So(YearOptions(now, &e), ShouldResemble, []int{2024, 2023, 2022, 2021})
		So(len(YearOptions(now, nil)), ShouldEqual, 10)
		So(YearOptions(now, nil)[9], ShouldEqual, 2015)
		future := 2030
		So(YearOptions(now, &future), ShouldResemble, []int{2024})
	})

	Convey("YearOptions ignores an implausibly early year", t, func() {
		for _, bogus := range []int{0, -5000, 1} {
			years := YearOptions(now, &bogus)
			So(len(years), ShouldEqual, 100)
			So(years[0], ShouldEqual, 2024)
			So(years[99], ShouldEqual, 1925)
		}
	})

	Convey("MonthOptions counts down from the current month", t, func() {
		So(MonthOptions(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)), ShouldResemble, []int{3, 2, 1})
	})

	Convey("LastWeeks labels Monday to Sunday ranges", t, func() {
		weeks := LastWeeks(now, 2)
		So(weeks, ShouldResemble, []WeekOption{
			{Year: 2024, Week: 1, Label: "01/01-01/07"},
			{Year: 2023, Week: 52, Label: "12/25-12/31"},
		})
		So(len(LastWeeks(now, 12)), ShouldEqual, 12)
		So(LastWeeks(now, 0), ShouldBeEmpty)
	})

	Convey("ISOWeek follows ISO 8601", t, func() {
		y, w := ISOWeek(time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC))
		So(y, ShouldEqual, 2020)
		So(w, ShouldEqual, 53)
	})

	Convey("ParseKind and DefaultQuery", t, func() {
		k, ok := ParseKind("week")
		So(ok, ShouldBeTrue)
		So(k, ShouldEqual, KindWeek)
		_, ok = ParseKind("")
		So(ok, ShouldBeFalse)
		So(DefaultQuery(now), ShouldResemble, Query{Kind: KindYear, Year: 2024})
	})
}
