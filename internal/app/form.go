package service

import (
	"context"
	"strconv"

	"github.com/slamweb/slam/internal/domain/model"
	"github.com/slamweb/slam/internal/domain/sport"
	"github.com/slamweb/slam/internal/domain/sportfield"
	"github.com/slamweb/slam/internal/domain/types"
	"github.com/slamweb/slam/internal/i18n"
)

// Form renders the draft with id as form fields. perRow > 0 lays the extra
// fields out uniformly; otherwise the type's built-in layout is used.
func (s *Service) Form(ctx context.Context, id string, lang i18n.Lang, perRow int) (types.Form, error) {
	d, err := s.GetDraft(ctx, id)
	if err != nil {
		return types.Form{}, err
	}
	return s.BuildForm(d, lang, perRow), nil
}

// BuildForm renders d without touching the store.
func (s *Service) BuildForm(d *model.Draft, lang i18n.Lang, perRow int) types.Form {
	sp := d.Sport
	kind := sp.Kind()

	basic := make([]types.FieldView, 0, 8)
	for _, cfg := range sportfield.BasicConfig(lang) {
		basic = append(basic, fieldView(cfg, s.basicValue(sp, cfg)))
	}

	tracks := make([]types.TrackForm, 0, len(sp.Tracks))
	for i, tr := range sp.Tracks {
		tb := make([]types.FieldView, 0, 3)
		for _, cfg := range sportfield.TrackBasicConfig(lang) {
			tb = append(tb, fieldView(cfg, trackValue(tr, cfg)))
		}
		tracks = append(tracks, types.TrackForm{
			Index: i,
			Basic: tb,
			Extra: extraRows(lang, kind, tr.Extra, perRow),
		})
	}

	return types.Form{
		DraftID: d.ID,
		Lang:    string(lang),
		Type:    kind.String(),
		Basic:   basic,
		Extra:   extraRows(lang, kind, sp.Extra, perRow),
		Tracks:  tracks,
	}
}

func extraRows(lang i18n.Lang, t sport.SportType, extra sport.Extra, perRow int) [][]types.FieldView {
	fields := sportfield.ExtraConfigByType(lang, t)
	rows := sportfield.GroupByLayout(fields, sportfield.LayoutFor(t, len(fields), perRow))
	out := make([][]types.FieldView, 0, len(rows))
	for _, row := range rows {
		views := make([]types.FieldView, 0, len(row))
		for _, cfg := range row {
			views = append(views, fieldView(cfg, sportfield.DisplayValue(t, extra, cfg)))
		}
		out = append(out, views)
	}
	return out
}

func fieldView(cfg sportfield.FieldConfig, value string) types.FieldView {
	return types.FieldView{
		Key:     cfg.Key,
		Label:   cfg.Label,
		Kind:    cfg.Kind,
		Options: cfg.Options,
		Value:   value,
	}
}

// numberText hides zero so the input shows its placeholder.
func numberText(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func (s *Service) basicValue(sp *sport.Sport, cfg sportfield.FieldConfig) string {
	switch cfg.Key {
	case sportfield.BasicType:
		return sp.Kind().String()
	case sportfield.BasicStartTime:
		return sport.FormatInputDateTime(sp.StartTime, s.location)
	case sportfield.BasicCalories:
		return numberText(sp.Calories)
	case sportfield.BasicDistanceMeter:
		return numberText(sp.DistanceMeter)
	case sportfield.BasicDurationSecond:
		return sport.FormatHMS(sp.DurationSecond)
	case sportfield.BasicHeartRateAvg:
		return numberText(sp.HeartRateAvg)
	case sportfield.BasicHeartRateMax:
		return numberText(sp.HeartRateMax)
	case sportfield.BasicPaceAverage:
		return sp.PaceAverage
	}
	return ""
}

func trackValue(tr sport.Track, cfg sportfield.FieldConfig) string {
	switch cfg.Key {
	case sportfield.BasicDistanceMeter:
		return numberText(tr.DistanceMeter)
	case sportfield.BasicDurationSecond:
		return sport.FormatHMS(tr.DurationSecond)
	case sportfield.BasicPaceAverage:
		return tr.PaceAverage
	}
	return ""
}

// Schema returns the labelled extra fields of t grouped into rows.
func (s *Service) Schema(lang i18n.Lang, t sport.SportType, perRow int) types.Schema {
	fields := sportfield.ExtraConfigByType(lang, t)
	layout := sportfield.LayoutFor(t, len(fields), perRow)
	return types.Schema{
		Type:   t.String(),
		Lang:   string(lang),
		Layout: layout,
		Rows:   sportfield.GroupByLayout(fields, layout),
	}
}

// Defaults returns the blank payload and track of t.
func (s *Service) Defaults(t sport.SportType) types.Defaults {
	return types.Defaults{
		Type:  t.String(),
		Extra: sportfield.DefaultExtraByType(t),
		Track: sportfield.DefaultTrackByType(t),
	}
}
