package service

import (
	"context"
	"fmt"

	"github.com/slamweb/slam/internal/domain/model"
	"github.com/slamweb/slam/internal/domain/sport"
	"github.com/slamweb/slam/internal/domain/sportfield"
	"github.com/slamweb/slam/internal/domain/types"
	"github.com/slamweb/slam/internal/i18n"
	"github.com/slamweb/slam/pkg/logger"
	"github.com/slamweb/slam/pkg/metrics"
)

// NewDraft opens a blank draft of type t.
func (s *Service) NewDraft(ctx context.Context, t sport.SportType) (*model.Draft, error) {
	if err := s.checkStarted(); err != nil {
		return nil, err
	}
	return s.drafts.Create(ctx, &model.Draft{
		Origin: model.OriginBlank,
		Sport:  sport.Blank(t, s.now(), sportfield.DefaultExtraByType),
	})
}

// DraftFromRecord opens a draft editing an existing record. The record keeps
// its id, so submitting the draft updates it.
func (s *Service) DraftFromRecord(ctx context.Context, rec *sport.Sport) (*model.Draft, error) {
	if err := s.checkStarted(); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &InputError{Key: "errors.submitFailed", Detail: "missing sport record"}
	}
	sp := rec.Clone()
	if err := sp.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	origin := model.OriginRecord
	if sp.ID == 0 {
		origin = model.OriginBlank
	}
	return s.drafts.Create(ctx, &model.Draft{Origin: origin, Sport: sp})
}

// GetDraft returns the draft with id.
func (s *Service) GetDraft(ctx context.Context, id string) (*model.Draft, error) {
	if err := s.checkStarted(); err != nil {
		return nil, err
	}
	return s.drafts.Get(ctx, id)
}

// DeleteDraft discards the draft with id.
func (s *Service) DeleteDraft(ctx context.Context, id string) error {
	if err := s.checkStarted(); err != nil {
		return err
	}
	return s.drafts.Delete(ctx, id)
}

// ListDrafts returns all open drafts, most recently edited first.
func (s *Service) ListDrafts(ctx context.Context) ([]*model.Draft, error) {
	if err := s.checkStarted(); err != nil {
		return nil, err
	}
	return s.drafts.List(ctx), nil
}

// SetBasic sets one type-independent field of the draft's record from form
// input. Changing the type resets every extra payload to the new type's
// defaults.
func (s *Service) SetBasic(ctx context.Context, id, field, raw string) (*model.Draft, error) {
	if err := s.checkStarted(); err != nil {
		return nil, err
	}
	return s.drafts.Update(ctx, id, func(d *model.Draft) error {
		return s.applyBasic(d.Sport, field, raw)
	})
}

func (s *Service) applyBasic(sp *sport.Sport, field, raw string) error {
	switch field {
	case sportfield.BasicType:
		t := sport.ParseType(raw)
		if t == sport.Unknown {
			t = sport.TypeOf(raw)
		}
		sp.Retype(t, sportfield.DefaultExtraByType)
	case sportfield.BasicStartTime:
		sp.StartTime = sport.ParseInputDateTime(raw, s.location)
	case sportfield.BasicCalories:
		sp.Calories = sport.ParseIntPrefix(raw)
	case sportfield.BasicDistanceMeter:
		sp.DistanceMeter = sport.ParseIntPrefix(raw)
	case sportfield.BasicDurationSecond:
		sp.DurationSecond = sport.ParseHMS(raw)
	case sportfield.BasicHeartRateAvg:
		sp.HeartRateAvg = sport.ParseIntPrefix(raw)
	case sportfield.BasicHeartRateMax:
		sp.HeartRateMax = sport.ParseIntPrefix(raw)
	case sportfield.BasicPaceAverage:
		sp.PaceAverage = raw
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// SetExtraField sets one sport-specific field of the draft's record. The
// input is parsed by the field's schema, so malformed numbers become 0.
func (s *Service) SetExtraField(ctx context.Context, id, key, raw string) (*model.Draft, error) {
	if err := s.checkStarted(); err != nil {
		return nil, err
	}
	return s.drafts.Update(ctx, id, func(d *model.Draft) error {
		e, err := setExtra(d.Sport.Kind(), d.Sport.Extra, key, raw)
		if err != nil {
			return err
		}
		d.Sport.Extra = e
		return nil
	})
}

// setExtra returns extra with key set from raw, starting from the type's
// defaults when extra is missing or of another type.
func setExtra(t sport.SportType, extra sport.Extra, key, raw string) (sport.Extra, error) {
	cfg, ok := sportfield.Field(i18n.Default, t, key)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, t, key)
	}
	if extra == nil || extra.Type() != t {
		extra = sportfield.DefaultExtraByType(t)
	}
	if !extra.Set(key, sportfield.ParseInput(cfg, raw)) {
		return nil, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, t, key)
	}
	return extra, nil
}

// AddTrack appends an empty track carrying the type's default payload.
func (s *Service) AddTrack(ctx context.Context, id string) (*model.Draft, error) {
	if err := s.checkStarted(); err != nil {
		return nil, err
	}
	return s.drafts.Update(ctx, id, func(d *model.Draft) error {
		d.Sport.Tracks = append(d.Sport.Tracks, sportfield.DefaultTrackByType(d.Sport.Kind()))
		return nil
	})
}

// RemoveTrack deletes the track at index.
func (s *Service) RemoveTrack(ctx context.Context, id string, index int) (*model.Draft, error) {
	if err := s.checkStarted(); err != nil {
		return nil, err
	}
	return s.drafts.Update(ctx, id, func(d *model.Draft) error {
		if index < 0 || index >= len(d.Sport.Tracks) {
			return fmt.Errorf("%w: %d of %d", ErrTrackIndex, index, len(d.Sport.Tracks))
		}
		d.Sport.Tracks = append(d.Sport.Tracks[:index], d.Sport.Tracks[index+1:]...)
		return nil
	})
}

// SetTrackField sets a basic or extra field of the track at index.
func (s *Service) SetTrackField(ctx context.Context, id string, index int, field, raw string) (*model.Draft, error) {
	if err := s.checkStarted(); err != nil {
		return nil, err
	}
	return s.drafts.Update(ctx, id, func(d *model.Draft) error {
		if index < 0 || index >= len(d.Sport.Tracks) {
			return fmt.Errorf("%w: %d of %d", ErrTrackIndex, index, len(d.Sport.Tracks))
		}
		tr := &d.Sport.Tracks[index]
		switch field {
		case sportfield.BasicDistanceMeter:
			tr.DistanceMeter = sport.ParseIntPrefix(raw)
		case sportfield.BasicDurationSecond:
			tr.DurationSecond = sport.ParseHMS(raw)
		case sportfield.BasicPaceAverage:
			tr.PaceAverage = raw
		default:
			e, err := setExtra(d.Sport.Kind(), tr.Extra, field, raw)
			if err != nil {
				return err
			}
			tr.Extra = e
		}
		return nil
	})
}

// Submit sends the draft's record to the backend, inserting it when it has
// no id and updating it otherwise. The draft is discarded on success and
// kept for another attempt on failure.
func (s *Service) Submit(ctx context.Context, id string, lang i18n.Lang) (types.SubmitResult, error) {
	if err := s.checkStarted(); err != nil {
		return types.SubmitResult{}, err
	}
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return types.SubmitResult{}, err
	}
	sp := d.Sport
	kind := sp.Kind().String()
	if err := sp.Validate(); err != nil {
		metrics.RecordDraftSubmitted(kind, "invalid")
		return types.SubmitResult{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	action := "inserted"
	if sp.ID == 0 {
		err = s.remote.Insert(ctx, sp)
	} else {
		action = "updated"
		err = s.remote.Update(ctx, sp)
	}
	if err != nil {
		metrics.RecordDraftSubmitted(kind, "failed")
		s.notify(lang, err)
		return types.SubmitResult{}, fmt.Errorf("submit draft %s: %w", id, err)
	}
	metrics.RecordDraftSubmitted(kind, action)

	if err := s.drafts.Delete(ctx, id); err != nil {
		s.logger.Warn(ctx, "submitted draft already gone", logger.String("draft_id", id), logger.Error(err))
	}
	s.logger.Info(ctx, "draft submitted",
		logger.String("draft_id", id),
		logger.String("action", action),
		logger.String("type", kind),
	)
	return types.SubmitResult{Action: action, Type: kind}, nil
}
