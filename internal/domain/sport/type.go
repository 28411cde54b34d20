// Package sport holds the sport record model shared by the client and the backend wire format.
package sport

import "strings"

// SportType is the closed set of sport categories the client understands.
type SportType int

const (
	Unknown SportType = iota
	Swimming
	Running
	Cycling
)

// AllTypes lists every SportType, in declaration order.
var AllTypes = []SportType{Unknown, Swimming, Running, Cycling}

func (t SportType) String() string {
	switch t {
	case Swimming:
		return "Swimming"
	case Running:
		return "Running"
	case Cycling:
		return "Cycling"
	default:
		return "Unknown"
	}
}

// TypeOf classifies a free-form type string by case-insensitive substring:
// "swim" first, then "run", then "cycle" or "bike".
func TypeOf(s string) SportType {
	key := strings.ToLower(s)
	switch {
	case strings.Contains(key, "swim"):
		return Swimming
	case strings.Contains(key, "run"):
		return Running
	case strings.Contains(key, "cycle"), strings.Contains(key, "bike"):
		return Cycling
	default:
		return Unknown
	}
}

// ParseType matches the canonical names exactly and returns Unknown otherwise.
func ParseType(s string) SportType {
	for _, t := range AllTypes {
		if t.String() == s {
			return t
		}
	}
	return Unknown
}

// MarshalText renders the canonical name so SportType can be used in JSON.
func (t SportType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts any spelling TypeOf understands.
func (t *SportType) UnmarshalText(b []byte) error {
	*t = TypeOf(string(b))
	return nil
}
