// Package stats holds the statistics wire types and the chart series derived from them.
package stats

import (
	"fmt"
	"time"

	"github.com/slamweb/slam/internal/domain/sport"
)

// Kind selects the statistics window.
type Kind string

const (
	KindYear  Kind = "year"
	KindMonth Kind = "month"
	KindWeek  Kind = "week"
	KindTotal Kind = "total"
)

// maxYearsOffered bounds YearOptions against a bogus earliest year.
const maxYearsOffered = 100

// ParseKind accepts the four window names.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindYear, KindMonth, KindWeek, KindTotal:
		return k, true
	}
	return "", false
}

// StatBucket aggregates one time slot. Date is the 1-based slot index within
// the window: month of year, day of month or ISO weekday.
type StatBucket struct {
	Date     int `json:"date"`
	Duration int `json:"duration"`
	Calories int `json:"calories"`
	Count    int `json:"count"`
}

// TypeBucket aggregates one sport type over the window.
type TypeBucket struct {
	Type          string `json:"type"`
	Duration      int    `json:"duration"`
	Calories      int    `json:"calories"`
	Count         int    `json:"count"`
	DistanceMeter int    `json:"distance_meter"`
}

// Summary is the backend's statistics response.
type Summary struct {
	Buckets             []StatBucket  `json:"buckets"`
	TypeBuckets         []TypeBucket  `json:"type_buckets"`
	TotalCount          int           `json:"total_count"`
	TotalCalories       int           `json:"total_calories"`
	TotalDurationSecond int           `json:"total_duration_second"`
	TotalDistanceMeter  int           `json:"total_distance_meter"`
	Sports              []sport.Sport `json:"sports"`
	EarliestYear        *int          `json:"earliest_year,omitempty"`
}

// Query selects a statistics window.
type Query struct {
	Kind  Kind `json:"kind"`
	Year  int  `json:"year"`
	Month int  `json:"month,omitempty"`
	Week  int  `json:"week,omitempty"`
}

// Validate checks the fields each kind needs.
func (q Query) Validate() error {
	if _, ok := ParseKind(string(q.Kind)); !ok {
		return fmt.Errorf("%w: kind %q", ErrInvalidQuery, q.Kind)
	}
	if q.Year <= 0 {
		return fmt.Errorf("%w: year must be positive", ErrInvalidQuery)
	}
	switch q.Kind {
	case KindMonth:
		if q.Month < 1 || q.Month > 12 {
			return fmt.Errorf("%w: month must be 1..12", ErrInvalidQuery)
		}
	case KindWeek:
		if q.Week < 1 || q.Week > 53 {
			return fmt.Errorf("%w: week must be 1..53", ErrInvalidQuery)
		}
	}
	return nil
}

// Point is one bar of a chart.
type Point struct {
	Slot     int    `json:"slot"`
	Label    string `json:"label"`
	Calories int    `json:"calories"`
	Duration int    `json:"duration"`
	Count    int    `json:"count"`
}

var shortWeekdays = map[string][7]string{
	"zh": {"周一", "周二", "周三", "周四", "周五", "周六", "周日"},
	"en": {"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
}

// Slots is the number of chart points for q: 12 months, the days of the
// month, 7 weekdays, or none for the total window.
func Slots(q Query) int {
	switch q.Kind {
	case KindYear:
		return 12
	case KindMonth:
		return DaysInMonth(q.Year, q.Month)
	case KindWeek:
		return 7
	default:
		return 0
	}
}

// Series spreads the summary buckets over the window's slots. Bucket dates are
// clamped into [1, slots], so out-of-range buckets land on the edge slots.
func Series(q Query, s *Summary, lang string) []Point {
	n := Slots(q)
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{Slot: i + 1, Label: slotLabel(q.Kind, i+1, lang)}
	}
	if n == 0 || s == nil {
		return points
	}
	for _, b := range s.Buckets {
		idx := min(max(b.Date, 1), n) - 1
		points[idx].Calories = b.Calories
		points[idx].Duration = b.Duration
		points[idx].Count = b.Count
	}
	return points
}

func slotLabel(k Kind, slot int, lang string) string {
	switch k {
	case KindYear:
		if lang == "zh" {
			return fmt.Sprintf("%d月", slot)
		}
		return fmt.Sprintf("M%02d", slot)
	case KindWeek:
		names, ok := shortWeekdays[lang]
		if !ok {
			names = shortWeekdays["en"]
		}
		return names[slot-1]
	default:
		return fmt.Sprint(slot)
	}
}

// ThinZeros keeps every non-zero point and, from each run of zero-calorie
// points, one point per three, so sparse charts stay readable.
func ThinZeros(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for i := 0; i < len(points); {
		if points[i].Calories != 0 {
			out = append(out, points[i])
			i++
			continue
		}
		start := i
		for i < len(points) && points[i].Calories == 0 {
			i++
		}
		for g := 0; g < (i-start)/3; g++ {
			out = append(out, points[start+g*3])
		}
	}
	return out
}

// DaysInMonth returns the number of days of month in year.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// YearOptions lists selectable years from now back to earliest, newest first.
// Without an earliest year the last ten years are offered; there is always at
// least the current year and never more than maxYearsOffered.
func YearOptions(now time.Time, earliest *int) []int {
	cur := now.Year()
	start := cur - 9
	if earliest != nil {
		start = *earliest
	}
	start = min(max(start, cur-maxYearsOffered+1), cur)
	years := make([]int, 0, cur-start+1)
	for y := cur; y >= start; y-- {
		years = append(years, y)
	}
	return years
}

// MonthOptions lists the months of the current year up to now, newest first.
func MonthOptions(now time.Time) []int {
	cm := int(now.Month())
	months := make([]int, 0, cm)
	for m := cm; m >= 1; m-- {
		months = append(months, m)
	}
	return months
}

// WeekOption is one selectable ISO week.
type WeekOption struct {
	Year  int    `json:"year"`
	Week  int    `json:"week"`
	Label string `json:"label"`
}

// ISOWeek returns the ISO 8601 year and week of t.
func ISOWeek(t time.Time) (year, week int) {
	return t.ISOWeek()
}

// LastWeeks lists the n ISO weeks ending with the one containing now, newest
// first, each labelled "MM/DD-MM/DD" from Monday to Sunday.
func LastWeeks(now time.Time, n int) []WeekOption {
	out := make([]WeekOption, 0, max(n, 0))
	d := now
	for i := 0; i < n; i++ {
		y, w := d.ISOWeek()
		monday := d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
		sunday := monday.AddDate(0, 0, 6)
		out = append(out, WeekOption{
			Year:  y,
			Week:  w,
			Label: fmt.Sprintf("%02d/%02d-%02d/%02d", monday.Month(), monday.Day(), sunday.Month(), sunday.Day()),
		})
		d = d.AddDate(0, 0, -7)
	}
	return out
}

// DefaultQuery is the window the statistics page opens on: the current year.
func DefaultQuery(now time.Time) Query {
	return Query{Kind: KindYear, Year: now.Year()}
}
