package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/slamweb/slam/internal/domain/sport"
	"github.com/slamweb/slam/internal/domain/stats"
	"github.com/slamweb/slam/internal/domain/types"
	"github.com/slamweb/slam/internal/i18n"
)

// SportDependencies describes the record relays.
type SportDependencies interface {
	ListSports(ctx context.Context, page, size int, lang i18n.Lang) ([]sport.Sport, error)
	DeleteSport(ctx context.Context, id int64, lang i18n.Lang) error
	ImportSports(ctx context.Context, file []byte, filename, vendor string, lang i18n.Lang) error
	Stats(ctx context.Context, q stats.Query, lang i18n.Lang) (types.StatsView, error)
	Overview(ctx context.Context, lang i18n.Lang) (types.Overview, error)
}

// SportsHandler serves the record, statistics and overview routes.
type SportsHandler struct {
	deps SportDependencies
	cfg  *settings
}

// NewSportsHandler creates a new sports handler.
func NewSportsHandler(deps SportDependencies, cfg *settings) *SportsHandler {
	return &SportsHandler{deps: deps, cfg: cfg}
}

type deleteSportRequest struct {
	ID int64 `json:"id"`
}

// HandleList handles GET /sports?page=&size=. Pages start at 0.
func (h *SportsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_sports"
	lang := requestLang(r, h.cfg.defaultLang)
	page, err := queryInt(r, "page", 0)
	if err != nil {
		writeFailure(w, lang, WrapKind(op, ErrBadRequest, err))
		return
	}
	size, err := queryInt(r, "size", 0)
	if err != nil {
		writeFailure(w, lang, WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := h.deps.ListSports(r.Context(), page, size, lang)
	if err != nil {
		writeFailure(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleDelete handles POST /sports/delete.
func (h *SportsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_sport"
	lang := requestLang(r, h.cfg.defaultLang)
	var req deleteSportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, lang, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.DeleteSport(r.Context(), req.ID, lang); err != nil {
		writeFailure(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, types.Ack{Success: true})
}

// HandleImport handles POST /sports/import with a multipart file and vendor.
func (h *SportsHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.import_sports"
	lang := requestLang(r, h.cfg.defaultLang)
	if err := parseMultipart(w, r, h.cfg.maxUpload); err != nil {
		writeFailure(w, lang, WrapKind(op, ErrBadRequest, err))
		return
	}
	file, err := formFile(r, "file")
	if err != nil {
		writeFailure(w, lang, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.ImportSports(r.Context(), file.Data, file.Name, r.FormValue("vendor"), lang); err != nil {
		writeFailure(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, types.Ack{Success: true})
}

// HandleStats handles GET /sports/stats?kind=&year=&month=&week=.
func (h *SportsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.sport_stats"
	lang := requestLang(r, h.cfg.defaultLang)
	kind, ok := stats.ParseKind(r.URL.Query().Get("kind"))
	if !ok {
		writeFailure(w, lang, WrapKind(op, ErrBadRequest, errors.New("kind must be year, month, week or total")))
		return
	}
	q := stats.Query{Kind: kind}
	var err error
	for _, p := range []struct {
		name string
		dst  *int
	}{{"year", &q.Year}, {"month", &q.Month}, {"week", &q.Week}} {
		if *p.dst, err = queryInt(r, p.name, 0); err != nil {
			writeFailure(w, lang, WrapKind(op, ErrBadRequest, err))
			return
		}
	}
	v, err := h.deps.Stats(r.Context(), q, lang)
	if err != nil {
		writeFailure(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleOverview handles GET /overview.
func (h *SportsHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	lang := requestLang(r, h.cfg.defaultLang)
	o, err := h.deps.Overview(r.Context(), lang)
	if err != nil {
		writeFailure(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
