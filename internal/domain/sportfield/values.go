package sportfield

import (
	"strconv"

	"github.com/slamweb/slam/internal/domain/sport"
)

// DefaultExtraByType returns a fresh canonical zero payload for t, or nil for
// types without extra data.
func DefaultExtraByType(t sport.SportType) sport.Extra {
	switch t {
	case sport.Swimming:
		return &sport.SwimmingExtra{MainStroke: sport.StrokeUnknown}
	case sport.Running:
		return &sport.RunningExtra{PaceMin: sport.ZeroPace, PaceMax: sport.ZeroPace}
	case sport.Cycling, sport.Unknown:
		return nil
	default:
		return nil
	}
}

// DefaultTrackByType returns an empty track carrying t's default payload.
func DefaultTrackByType(t sport.SportType) sport.Track {
	return sport.Track{
		DistanceMeter:  0,
		DurationSecond: 0,
		PaceAverage:    "0",
		Extra:          DefaultExtraByType(t),
	}
}

// Resolve returns the payload's value for cfg, or cfg's default when the
// payload is nil, has no such key, or belongs to a type other than t.
func Resolve(t sport.SportType, extra sport.Extra, cfg FieldConfig) any {
	if extra != nil && extra.Type() == t {
		if v, ok := extra.Get(cfg.Key); ok && v != nil {
			return v
		}
	}
	return cfg.Default
}

// DisplayValue renders the effective value as form text. A Number field
// holding 0 renders as "" so the input shows its placeholder instead; this is
// a presentation rule only and the stored value stays 0.
func DisplayValue(t sport.SportType, extra sport.Extra, cfg FieldConfig) string {
	v := Resolve(t, extra, cfg)
	if cfg.Kind == KindNumber && isZero(v) {
		return ""
	}
	return format(v)
}

// ParseInput converts raw input for cfg: the field's own parser when set,
// otherwise Number fields parse as integers (0 on failure) and Text/Select
// fields keep the raw string.
func ParseInput(cfg FieldConfig, raw string) any {
	if cfg.Parse != nil {
		return cfg.Parse(raw)
	}
	if cfg.Kind == KindNumber {
		return sport.ParseIntPrefix(raw)
	}
	return raw
}

func isZero(v any) bool {
	switch x := v.(type) {
	case int:
		return x == 0
	case int64:
		return x == 0
	case float64:
		return x == 0
	case string:
		return x == "0"
	}
	return false
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}
