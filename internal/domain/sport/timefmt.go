package sport

import (
	"fmt"
	"strings"
	"time"
)

// InputDateTimeLayout is the datetime-local form field layout.
const InputDateTimeLayout = "2006-01-02T15:04:05"

// FormatHMS renders seconds as zero-padded hh:mm:ss. Hours are not wrapped at 24.
func FormatHMS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// ParseHMS is the inverse of FormatHMS. Missing or malformed parts count as 0,
// so "1:2" is 3720 seconds.
func ParseHMS(v string) int {
	parts := strings.Split(v, ":")
	var hms [3]int
	for i := 0; i < len(parts) && i < 3; i++ {
		hms[i] = ParseIntPrefix(parts[i])
	}
	return hms[0]*3600 + hms[1]*60 + hms[2]
}

// FormatInputDateTime renders a unix timestamp in loc for a datetime-local input.
func FormatInputDateTime(unix int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(unix, 0).In(loc).Format(InputDateTimeLayout)
}

// FormatDisplayDateTime is FormatInputDateTime with a space instead of the T.
func FormatDisplayDateTime(unix int64, loc *time.Location) string {
	return strings.Replace(FormatInputDateTime(unix, loc), "T", " ", 1)
}

// ParseInputDateTime accepts "YYYY-MM-DDThh:mm:ss" or the space-separated form.
// Missing date parts default to 1 and missing time parts to 0.
func ParseInputDateTime(v string, loc *time.Location) int64 {
	if loc == nil {
		loc = time.Local
	}
	norm := strings.Replace(strings.TrimSpace(v), " ", "T", 1)
	datePart, timePart, _ := strings.Cut(norm, "T")

	var ymd [3]int
	for i, p := range strings.SplitN(datePart, "-", 3) {
		ymd[i] = ParseIntPrefix(p)
	}
	var hms [3]int
	if timePart != "" {
		for i, p := range strings.SplitN(timePart, ":", 3) {
			hms[i] = ParseIntPrefix(p)
		}
	}
	month, day := ymd[1], ymd[2]
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	return time.Date(ymd[0], time.Month(month), day, hms[0], hms[1], hms[2], 0, loc).Unix()
}
