// Package sportfield describes, per sport type, which extra fields a record
// carries and how they are labelled, defaulted, laid out and parsed.
//
// Everything here is pure and total: lookups never fail, malformed numeric
// input becomes 0 and unknown types simply have no fields.
package sportfield

import (
	"fmt"

	"github.com/slamweb/slam/internal/domain/sport"
	"github.com/slamweb/slam/internal/i18n"
)

// FieldKind selects the input widget for a field.
type FieldKind string

const (
	KindSelect FieldKind = "select"
	KindNumber FieldKind = "number"
	KindText   FieldKind = "text"
)

// FieldOption is one choice of a Select field.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ParseFunc converts raw user input into the stored value.
type ParseFunc func(raw string) any

// FieldConfig describes one editable extra field.
type FieldConfig struct {
	Key     string        `json:"key"`
	Label   string        `json:"label"`
	Kind    FieldKind     `json:"kind"`
	Options []FieldOption `json:"options,omitempty"`
	Parse   ParseFunc     `json:"-"`
	Default any           `json:"default"`
}

// Validate checks the Select invariant: options exist and the default is one of them.
func (c FieldConfig) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidField)
	}
	if c.Kind != KindSelect {
		return nil
	}
	if len(c.Options) == 0 {
		return fmt.Errorf("%w: select %q has no options", ErrInvalidField, c.Key)
	}
	def, _ := c.Default.(string)
	for _, o := range c.Options {
		if o.Value == def {
			return nil
		}
	}
	return fmt.Errorf("%w: select %q default %v is not an option", ErrInvalidField, c.Key, c.Default)
}

// ParseInt parses the leading integer of raw, 0 when there is none.
func ParseInt(raw string) any { return sport.ParseIntPrefix(raw) }

// ParseFloat parses the leading decimal of raw, 0 when there is none.
func ParseFloat(raw string) any { return sport.ParseFloatPrefix(raw) }

func label(lang i18n.Lang, key string) string {
	return i18n.Label(lang, "addsports."+key)
}

func swimmingFields(lang i18n.Lang) []FieldConfig {
	strokeLabels := map[string]string{
		sport.StrokeUnknown:      "strokeUnknown",
		sport.StrokeFreestyle:    "strokeFreestyle",
		sport.StrokeButterfly:    "strokeButterfly",
		sport.StrokeBreaststroke: "strokeBreaststroke",
		sport.StrokeBackstroke:   "strokeBackstroke",
		sport.StrokeMedley:       "strokeMedley",
	}
	options := make([]FieldOption, 0, len(sport.Strokes))
	for _, s := range sport.Strokes {
		options = append(options, FieldOption{Value: s, Label: label(lang, strokeLabels[s])})
	}
	return []FieldConfig{
		{Key: sport.KeyMainStroke, Label: label(lang, "submitStrokeLabel"), Kind: KindSelect, Options: options, Default: sport.StrokeUnknown},
		{Key: sport.KeyStrokeAvg, Label: label(lang, "submitStrokeAvgLabel"), Kind: KindNumber, Parse: ParseInt, Default: 0},
		{Key: sport.KeySwolfAvg, Label: label(lang, "submitSwolfAvgLabel"), Kind: KindNumber, Parse: ParseInt, Default: 0},
	}
}

func runningFields(lang i18n.Lang) []FieldConfig {
	return []FieldConfig{
		{Key: sport.KeySpeedAvg, Label: label(lang, "runSpeedAvgLabel"), Kind: KindNumber, Parse: ParseFloat, Default: 0.0},
		{Key: sport.KeyCadenceAvg, Label: label(lang, "runCadenceAvgLabel"), Kind: KindNumber, Parse: ParseInt, Default: 0},
		{Key: sport.KeyStrideLengthAvg, Label: label(lang, "runStrideLengthAvgLabel"), Kind: KindNumber, Parse: ParseInt, Default: 0},
		{Key: sport.KeyStepsTotal, Label: label(lang, "runStepsTotalLabel"), Kind: KindNumber, Parse: ParseInt, Default: 0},
		{Key: sport.KeyPaceMin, Label: label(lang, "runPaceMinLabel"), Kind: KindText, Default: sport.ZeroPace},
		{Key: sport.KeyPaceMax, Label: label(lang, "runPaceMaxLabel"), Kind: KindText, Default: sport.ZeroPace},
	}
}

// ExtraConfigByType returns the ordered extra fields for t, built fresh on every call.
// Types without a payload get an empty, non-nil list.
func ExtraConfigByType(lang i18n.Lang, t sport.SportType) []FieldConfig {
	switch t {
	case sport.Swimming:
		return swimmingFields(lang)
	case sport.Running:
		return runningFields(lang)
	case sport.Cycling, sport.Unknown:
		return []FieldConfig{}
	default:
		return []FieldConfig{}
	}
}

// Field finds the config for key among the extra fields of t.
func Field(lang i18n.Lang, t sport.SportType, key string) (FieldConfig, bool) {
	for _, f := range ExtraConfigByType(lang, t) {
		if f.Key == key {
			return f, true
		}
	}
	return FieldConfig{}, false
}

// TypeOptions lists the sport types as select options.
func TypeOptions(lang i18n.Lang) []FieldOption {
	opts := make([]FieldOption, 0, len(sport.AllTypes))
	for _, t := range sport.AllTypes {
		opts = append(opts, FieldOption{Value: t.String(), Label: label(lang, "opt"+t.String())})
	}
	return opts
}

// Basic field keys of a record and of a track.
const (
	BasicType           = "type"
	BasicStartTime      = "start_time"
	BasicCalories       = "calories"
	BasicDistanceMeter  = "distance_meter"
	BasicDurationSecond = "duration_second"
	BasicHeartRateAvg   = "heart_rate_avg"
	BasicHeartRateMax   = "heart_rate_max"
	BasicPaceAverage    = "pace_average"
)

// BasicConfig describes the type-independent fields of a record. Start time
// and duration are text fields holding "YYYY-MM-DDThh:mm:ss" and "hh:mm:ss".
func BasicConfig(lang i18n.Lang) []FieldConfig {
	return []FieldConfig{
		{Key: BasicType, Label: label(lang, "submitTypeLabel"), Kind: KindSelect, Options: TypeOptions(lang), Default: sport.Unknown.String()},
		{Key: BasicStartTime, Label: label(lang, "submitStartTimeLabel"), Kind: KindText, Default: ""},
		{Key: BasicCalories, Label: label(lang, "submitCaloriesLabel"), Kind: KindNumber, Parse: ParseInt, Default: 0},
		{Key: BasicDistanceMeter, Label: label(lang, "submitDistanceLabel"), Kind: KindNumber, Parse: ParseInt, Default: 0},
		{Key: BasicDurationSecond, Label: label(lang, "submitDurationLabel"), Kind: KindText, Default: sport.FormatHMS(0)},
		{Key: BasicPaceAverage, Label: label(lang, "submitPaceLabel"), Kind: KindText, Default: sport.ZeroPace},
		{Key: BasicHeartRateAvg, Label: label(lang, "submitHRAvgLabel"), Kind: KindNumber, Parse: ParseInt, Default: 0},
		{Key: BasicHeartRateMax, Label: label(lang, "submitHRMaxLabel"), Kind: KindNumber, Parse: ParseInt, Default: 0},
	}
}

// TrackBasicConfig describes the type-independent fields of a track.
func TrackBasicConfig(lang i18n.Lang) []FieldConfig {
	return []FieldConfig{
		{Key: BasicDistanceMeter, Label: label(lang, "submitDistanceLabel"), Kind: KindNumber, Parse: ParseInt, Default: 0},
		{Key: BasicDurationSecond, Label: label(lang, "submitDurationLabel"), Kind: KindText, Default: sport.FormatHMS(0)},
		{Key: BasicPaceAverage, Label: label(lang, "submitPaceLabel"), Kind: KindText, Default: "0"},
	}
}
