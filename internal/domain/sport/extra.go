package sport

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Extra payload keys, shared with the field schema.
const (
	KeyMainStroke      = "main_stroke"
	KeyStrokeAvg       = "stroke_avg"
	KeySwolfAvg        = "swolf_avg"
	KeySpeedAvg        = "speed_avg"
	KeyCadenceAvg      = "cadence_avg"
	KeyStrideLengthAvg = "stride_length_avg"
	KeyStepsTotal      = "steps_total"
	KeyPaceMin         = "pace_min"
	KeyPaceMax         = "pace_max"
)

// Swimming stroke values.
const (
	StrokeUnknown      = "unknown"
	StrokeFreestyle    = "freestyle"
	StrokeButterfly    = "butterfly"
	StrokeBreaststroke = "breaststroke"
	StrokeBackstroke   = "backstroke"
	StrokeMedley       = "medley"
)

// Strokes lists the stroke values in display order.
var Strokes = []string{StrokeUnknown, StrokeFreestyle, StrokeButterfly, StrokeBreaststroke, StrokeBackstroke, StrokeMedley}

// ZeroPace is the placeholder pace used before any value is known.
const ZeroPace = "0'00''"

// Extra is the sport-specific payload. The variant is determined by the parent
// record's type; the wire form carries no tag of its own.
type Extra interface {
	// Type is the sport type this variant belongs to.
	Type() SportType
	// Get returns the value stored under a schema key.
	Get(key string) (any, bool)
	// Set coerces v into the field at key. It reports false for unknown keys.
	Set(key string, v any) bool
	Clone() Extra

	isExtra()
}

// SwimmingExtra is the payload of Swimming records.
type SwimmingExtra struct {
	MainStroke string `json:"main_stroke"`
	StrokeAvg  int    `json:"stroke_avg"`
	SwolfAvg   int    `json:"swolf_avg"`
}

func (*SwimmingExtra) isExtra()        {}
func (*SwimmingExtra) Type() SportType { return Swimming }

func (e *SwimmingExtra) Clone() Extra {
	c := *e
	return &c
}

func (e *SwimmingExtra) Get(key string) (any, bool) {
	switch key {
	case KeyMainStroke:
		return e.MainStroke, true
	case KeyStrokeAvg:
		return e.StrokeAvg, true
	case KeySwolfAvg:
		return e.SwolfAvg, true
	}
	return nil, false
}

func (e *SwimmingExtra) Set(key string, v any) bool {
	switch key {
	case KeyMainStroke:
		e.MainStroke = toString(v)
	case KeyStrokeAvg:
		e.StrokeAvg = toInt(v)
	case KeySwolfAvg:
		e.SwolfAvg = toInt(v)
	default:
		return false
	}
	return true
}

// RunningExtra is the payload of Running records.
type RunningExtra struct {
	SpeedAvg        float64 `json:"speed_avg"`
	CadenceAvg      int     `json:"cadence_avg"`
	StrideLengthAvg int     `json:"stride_length_avg"`
	StepsTotal      int     `json:"steps_total"`
	PaceMin         string  `json:"pace_min"`
	PaceMax         string  `json:"pace_max"`
}

func (*RunningExtra) isExtra()        {}
func (*RunningExtra) Type() SportType { return Running }

func (e *RunningExtra) Clone() Extra {
	c := *e
	return &c
}

func (e *RunningExtra) Get(key string) (any, bool) {
	switch key {
	case KeySpeedAvg:
		return e.SpeedAvg, true
	case KeyCadenceAvg:
		return e.CadenceAvg, true
	case KeyStrideLengthAvg:
		return e.StrideLengthAvg, true
	case KeyStepsTotal:
		return e.StepsTotal, true
	case KeyPaceMin:
		return e.PaceMin, true
	case KeyPaceMax:
		return e.PaceMax, true
	}
	return nil, false
}

func (e *RunningExtra) Set(key string, v any) bool {
	switch key {
	case KeySpeedAvg:
		e.SpeedAvg = toFloat(v)
	case KeyCadenceAvg:
		e.CadenceAvg = toInt(v)
	case KeyStrideLengthAvg:
		e.StrideLengthAvg = toInt(v)
	case KeyStepsTotal:
		e.StepsTotal = toInt(v)
	case KeyPaceMin:
		e.PaceMin = toString(v)
	case KeyPaceMax:
		e.PaceMax = toString(v)
	default:
		return false
	}
	return true
}

// NewExtra returns an empty payload for t, or nil when t carries no payload.
func NewExtra(t SportType) Extra {
	switch t {
	case Swimming:
		return &SwimmingExtra{}
	case Running:
		return &RunningExtra{}
	case Unknown, Cycling:
		return nil
	default:
		return nil
	}
}

// ExtraFromMap builds the payload for t from loose key/value data.
// Missing keys keep their zero value and unknown keys are ignored.
func ExtraFromMap(t SportType, m map[string]any) Extra {
	e := NewExtra(t)
	if e == nil || m == nil {
		return e
	}
	for k, v := range m {
		e.Set(k, v)
	}
	return e
}

// DecodeExtra interprets a raw wire payload according to the parent type.
// null or absent payloads yield nil. Payloads of types without extra data are dropped.
func DecodeExtra(t SportType, raw json.RawMessage) (Extra, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if NewExtra(t) == nil {
		return nil, nil
	}
	var m map[string]any
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode %s extra: %w", t, err)
	}
	return ExtraFromMap(t, m), nil
}

func toInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return int(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		f, _ := x.Float64()
		return toInt(f)
	case string:
		return ParseIntPrefix(x)
	case bool:
		if x {
			return 1
		}
	}
	return 0
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, _ := x.Float64()
		return f
	case string:
		return ParseFloatPrefix(x)
	}
	return 0
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// ParseIntPrefix parses the leading integer of s ("12abc" -> 12, "3.9" -> 3),
// returning 0 when s has no leading digits.
func ParseIntPrefix(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// ParseFloatPrefix parses the leading decimal number of s, returning 0 when there is none.
func ParseFloatPrefix(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0
	}
	return f
}
