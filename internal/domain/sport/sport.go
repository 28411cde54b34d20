package sport

import (
	"encoding/json"
	"fmt"
	"time"
)

// Track is one lap or segment of a sport record. Its Extra is interpreted by
// the parent record's type.
type Track struct {
	DistanceMeter  int    `json:"distance_meter"`
	DurationSecond int    `json:"duration_second"`
	PaceAverage    string `json:"pace_average"`
	Extra          Extra  `json:"extra,omitempty"`
}

// Sport is a single activity record as exchanged with the backend.
type Sport struct {
	ID             int64   `json:"id"`
	Type           string  `json:"type"`
	StartTime      int64   `json:"start_time"`
	Calories       int     `json:"calories"`
	DistanceMeter  int     `json:"distance_meter"`
	DurationSecond int     `json:"duration_second"`
	HeartRateAvg   int     `json:"heart_rate_avg"`
	HeartRateMax   int     `json:"heart_rate_max"`
	PaceAverage    string  `json:"pace_average"`
	Extra          Extra   `json:"extra,omitempty"`
	Tracks         []Track `json:"tracks"`
}

// Kind classifies the record's free-form type string.
func (s *Sport) Kind() SportType { return TypeOf(s.Type) }

type wireTrack struct {
	DistanceMeter  int             `json:"distance_meter"`
	DurationSecond int             `json:"duration_second"`
	PaceAverage    string          `json:"pace_average"`
	Extra          json.RawMessage `json:"extra"`
}

type wireSport struct {
	ID             int64           `json:"id"`
	Type           string          `json:"type"`
	StartTime      int64           `json:"start_time"`
	Calories       int             `json:"calories"`
	DistanceMeter  int             `json:"distance_meter"`
	DurationSecond int             `json:"duration_second"`
	HeartRateAvg   int             `json:"heart_rate_avg"`
	HeartRateMax   int             `json:"heart_rate_max"`
	PaceAverage    string          `json:"pace_average"`
	Extra          json.RawMessage `json:"extra"`
	Tracks         []wireTrack     `json:"tracks"`
}

// UnmarshalJSON decodes the record and interprets every extra payload
// according to the record's own type.
func (s *Sport) UnmarshalJSON(b []byte) error {
	var w wireSport
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	kind := TypeOf(w.Type)

	extra, err := DecodeExtra(kind, w.Extra)
	if err != nil {
		return err
	}
	tracks := make([]Track, 0, len(w.Tracks))
	for i, wt := range w.Tracks {
		te, err := DecodeExtra(kind, wt.Extra)
		if err != nil {
			return fmt.Errorf("track %d: %w", i, err)
		}
		tracks = append(tracks, Track{
			DistanceMeter:  wt.DistanceMeter,
			DurationSecond: wt.DurationSecond,
			PaceAverage:    wt.PaceAverage,
			Extra:          te,
		})
	}

	*s = Sport{
		ID:             w.ID,
		Type:           w.Type,
		StartTime:      w.StartTime,
		Calories:       w.Calories,
		DistanceMeter:  w.DistanceMeter,
		DurationSecond: w.DurationSecond,
		HeartRateAvg:   w.HeartRateAvg,
		HeartRateMax:   w.HeartRateMax,
		PaceAverage:    w.PaceAverage,
		Extra:          extra,
		Tracks:         tracks,
	}
	return nil
}

// MarshalJSON always emits a tracks array, even for records without tracks.
func (s Sport) MarshalJSON() ([]byte, error) {
	type plain Sport
	p := plain(s)
	if p.Tracks == nil {
		p.Tracks = []Track{}
	}
	return json.Marshal(p)
}

// Clone returns a deep copy.
func (s *Sport) Clone() *Sport {
	c := *s
	if s.Extra != nil {
		c.Extra = s.Extra.Clone()
	}
	c.Tracks = make([]Track, len(s.Tracks))
	for i, t := range s.Tracks {
		c.Tracks[i] = t
		if t.Extra != nil {
			c.Tracks[i].Extra = t.Extra.Clone()
		}
	}
	return &c
}

// Retype reinterprets every payload under t: payloads that already match are
// kept, others are replaced by def(t).
func (s *Sport) Retype(t SportType, def func(SportType) Extra) {
	s.Type = t.String()
	if s.Extra == nil || s.Extra.Type() != t {
		s.Extra = def(t)
	}
	for i := range s.Tracks {
		if s.Tracks[i].Extra == nil || s.Tracks[i].Extra.Type() != t {
			s.Tracks[i].Extra = def(t)
		}
	}
}

// Validate checks that every payload belongs to the record's type and that
// counters are not negative.
func (s *Sport) Validate() error {
	kind := s.Kind()
	if err := checkExtra(kind, s.Extra); err != nil {
		return fmt.Errorf("extra: %w", err)
	}
	for i, t := range s.Tracks {
		if err := checkExtra(kind, t.Extra); err != nil {
			return fmt.Errorf("track %d extra: %w", i, err)
		}
		if t.DistanceMeter < 0 || t.DurationSecond < 0 {
			return fmt.Errorf("%w: track %d has negative distance or duration", ErrInvalidRecord, i)
		}
	}
	if s.Calories < 0 || s.DistanceMeter < 0 || s.DurationSecond < 0 || s.HeartRateAvg < 0 || s.HeartRateMax < 0 {
		return fmt.Errorf("%w: negative counters", ErrInvalidRecord)
	}
	return nil
}

func checkExtra(kind SportType, e Extra) error {
	want := NewExtra(kind) != nil
	switch {
	case e == nil:
		return nil
	case !want:
		return fmt.Errorf("%w: %s records carry no extra, got %s", ErrTypeMismatch, kind, e.Type())
	case e.Type() != kind:
		return fmt.Errorf("%w: %s record with %s extra", ErrTypeMismatch, kind, e.Type())
	}
	return nil
}

// Blank returns a new record template for t started at now.
func Blank(t SportType, now time.Time, def func(SportType) Extra) *Sport {
	return &Sport{
		Type:        t.String(),
		StartTime:   now.Unix(),
		PaceAverage: ZeroPace,
		Extra:       def(t),
		Tracks:      []Track{},
	}
}
