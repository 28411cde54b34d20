package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/slamweb/slam/internal/adapters/remote/sportapi"
	"github.com/slamweb/slam/internal/domain/sport"
	"github.com/slamweb/slam/internal/domain/stats"
	"github.com/slamweb/slam/internal/domain/types"
	"github.com/slamweb/slam/internal/i18n"
)

const minPasswordLength = 6

// ListSports returns one page of the user's records. Pages start at 0, the
// newest records. A non-positive size means the default page size; sizes
// above the configured maximum are capped.
func (s *Service) ListSports(ctx context.Context, page, size int, lang i18n.Lang) ([]sport.Sport, error) {
	if page < 0 {
		page = 0
	}
	switch {
	case size <= 0:
		size = defaultPageSize
	case size > s.maxPageSize:
		size = s.maxPageSize
	}
	out, err := s.remote.List(ctx, page, size)
	if err != nil {
		s.notify(lang, err)
		return nil, err
	}
	return out, nil
}

// DeleteSport removes a record on the backend.
func (s *Service) DeleteSport(ctx context.Context, id int64, lang i18n.Lang) error {
	if id <= 0 {
		return &InputError{Key: "errors.deleteFailed", Detail: fmt.Sprintf("invalid record id %d", id)}
	}
	if err := s.remote.Delete(ctx, id); err != nil {
		s.notify(lang, err)
		return err
	}
	return nil
}

// ImportSports uploads a vendor export file.
func (s *Service) ImportSports(ctx context.Context, file []byte, filename, vendor string, lang i18n.Lang) error {
	if len(file) == 0 {
		return &InputError{Key: "errors.uploadFailed", Detail: "empty import file"}
	}
	if err := s.remote.Import(ctx, file, filename, strings.TrimSpace(vendor)); err != nil {
		s.notify(lang, err)
		return err
	}
	return nil
}

// Stats fetches the summary for q and derives its chart and the selectable
// windows around it.
func (s *Service) Stats(ctx context.Context, q stats.Query, lang i18n.Lang) (types.StatsView, error) {
	if err := q.Validate(); err != nil {
		return types.StatsView{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	sum, err := s.remote.Stats(ctx, q)
	if err != nil {
		s.notify(lang, err)
		return types.StatsView{}, err
	}
	return s.statsView(q, sum, lang), nil
}

func (s *Service) statsView(q stats.Query, sum *stats.Summary, lang i18n.Lang) types.StatsView {
	if sum == nil {
		sum = &stats.Summary{}
	}
	now := s.now().In(s.location)
	v := types.StatsView{
		Query:   q,
		Summary: sum,
		Series:  stats.Series(q, sum, string(lang)),
		Years:   stats.YearOptions(now, sum.EarliestYear),
	}
	switch q.Kind {
	case stats.KindMonth:
		v.Months = stats.MonthOptions(now)
	case stats.KindWeek:
		v.Weeks = stats.LastWeeks(now, recentWeeksOffered)
	}
	return v
}

// Overview fetches the first page of records and the current year's
// statistics concurrently.
func (s *Service) Overview(ctx context.Context, lang i18n.Lang) (types.Overview, error) {
	q := stats.DefaultQuery(s.now().In(s.location))

	var (
		sports []sport.Sport
		sum    *stats.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sports, err = s.remote.List(gctx, 0, overviewPageSize)
		return err
	})
	g.Go(func() error {
		var err error
		sum, err = s.remote.Stats(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		s.notify(lang, err)
		return types.Overview{}, err
	}
	return types.Overview{Sports: sports, Stats: s.statsView(q, sum, lang)}, nil
}

// Register checks the form locally before creating the account. An empty
// nickname defaults to the user name.
func (s *Service) Register(ctx context.Context, name, password, confirm, nickname string, lang i18n.Lang) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "" || password == "" || confirm == "":
		return errRegisterFill
	case utf8.RuneCountInString(password) < minPasswordLength:
		return errRegisterLength
	case password != confirm:
		return errRegisterMismatch
	}
	if strings.TrimSpace(nickname) == "" {
		nickname = name
	}
	if err := s.remote.Register(ctx, name, password, nickname); err != nil {
		s.notify(lang, err)
		return err
	}
	return nil
}

// Login signs in and keeps the session cookie for later calls.
func (s *Service) Login(ctx context.Context, name, password string, lang i18n.Lang) error {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return &InputError{Key: "register.errorFill"}
	}
	if err := s.remote.Login(ctx, name, password); err != nil {
		s.notify(lang, err)
		return err
	}
	return nil
}

// Logout ends the session. The local session is dropped even when the
// backend call fails.
func (s *Service) Logout(ctx context.Context, lang i18n.Lang) error {
	if err := s.remote.Logout(ctx); err != nil {
		s.notify(lang, err)
		return err
	}
	return nil
}

// Info returns the signed-in user's profile.
func (s *Service) Info(ctx context.Context, lang i18n.Lang) (types.User, error) {
	u, err := s.remote.Info(ctx)
	if err != nil {
		s.notify(lang, err)
		return types.User{}, err
	}
	return types.User{Nickname: u.Nickname, Avatar: u.Avatar}, nil
}

// UploadAvatar replaces the user's avatar and returns its new URL.
func (s *Service) UploadAvatar(ctx context.Context, data []byte, filename string, lang i18n.Lang) (string, error) {
	if len(data) == 0 {
		return "", &InputError{Key: "errors.uploadFailed", Detail: "empty avatar"}
	}
	url, err := s.remote.UploadAvatar(ctx, data, filename)
	if err != nil {
		s.notify(lang, err)
		return "", err
	}
	return url, nil
}

// Session reports the locally held session without calling the backend.
func (s *Service) Session() (sportapi.Session, error) {
	return s.remote.Session()
}
