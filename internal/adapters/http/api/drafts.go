package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/slamweb/slam/internal/domain/model"
	"github.com/slamweb/slam/internal/domain/sport"
	"github.com/slamweb/slam/internal/domain/types"
	"github.com/slamweb/slam/internal/i18n"
)

// DraftDependencies describes the draft operations the handlers need.
type DraftDependencies interface {
	NewDraft(ctx context.Context, t sport.SportType) (*model.Draft, error)
	DraftFromRecord(ctx context.Context, rec *sport.Sport) (*model.Draft, error)
	GetDraft(ctx context.Context, id string) (*model.Draft, error)
	DeleteDraft(ctx context.Context, id string) error
	ListDrafts(ctx context.Context) ([]*model.Draft, error)
	SetBasic(ctx context.Context, id, field, raw string) (*model.Draft, error)
	SetExtraField(ctx context.Context, id, key, raw string) (*model.Draft, error)
	AddTrack(ctx context.Context, id string) (*model.Draft, error)
	RemoveTrack(ctx context.Context, id string, index int) (*model.Draft, error)
	SetTrackField(ctx context.Context, id string, index int, field, raw string) (*model.Draft, error)
	Submit(ctx context.Context, id string, lang i18n.Lang) (types.SubmitResult, error)
	Form(ctx context.Context, id string, lang i18n.Lang, perRow int) (types.Form, error)
}

// DraftsHandler serves the /drafts routes.
type DraftsHandler struct {
	deps DraftDependencies
	cfg  *settings
}

// NewDraftsHandler creates a new drafts handler.
func NewDraftsHandler(deps DraftDependencies, cfg *settings) *DraftsHandler {
	return &DraftsHandler{deps: deps, cfg: cfg}
}

// createDraftRequest opens a blank draft of Type, or a draft editing Sport.
type createDraftRequest struct {
	Type  string       `json:"type"`
	Sport *sport.Sport `json:"sport"`
}

// patchDraftRequest sets one field. Scope is basic, extra or track; Index
// selects the track.
type patchDraftRequest struct {
	Scope string `json:"scope"`
	Index int    `json:"index"`
	Field string `json:"field"`
	Value string `json:"value"`
}

const (
	scopeBasic = "basic"
	scopeExtra = "extra"
	scopeTrack = "track"
)

func draftView(d *model.Draft) types.Draft {
	return types.Draft{
		ID:        d.ID,
		Origin:    string(d.Origin),
		Sport:     d.Sport,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// HandleCreate handles POST /drafts.
func (h *DraftsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_draft"
	lang := requestLang(r, h.cfg.defaultLang)
	var req createDraftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, lang, WrapKind(op, ErrBadRequest, err))
		return
	}

	if req.Sport == nil && req.Type == "" {
		writeFailure(w, lang, NewKind(op, ErrBadRequest))
		return
	}

	var (
		d   *model.Draft
		err error
	)
	if req.Sport != nil {
		d, err = h.deps.DraftFromRecord(r.Context(), req.Sport)
	} else {
		d, err = h.deps.NewDraft(r.Context(), sport.TypeOf(req.Type))
	}
	if err != nil {
		writeFailure(w, lang, err)
		return
	}
	writeJSON(w, http.StatusCreated, draftView(d))
}

// HandleList handles GET /drafts.
func (h *DraftsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.deps.ListDrafts(r.Context())
	if err != nil {
		writeFailure(w, requestLang(r, h.cfg.defaultLang), err)
		return
	}
	out := make([]types.Draft, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, draftView(d))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /drafts/{id}.
func (h *DraftsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.GetDraft(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, requestLang(r, h.cfg.defaultLang), err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(d))
}

// HandleDelete handles DELETE /drafts/{id}.
func (h *DraftsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteDraft(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, requestLang(r, h.cfg.defaultLang), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePatch handles PATCH /drafts/{id}.
func (h *DraftsHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.patch_draft"
	lang := requestLang(r, h.cfg.defaultLang)
	id := chi.URLParam(r, "id")

	var req patchDraftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, lang, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Field == "" {
		writeFailure(w, lang, WrapKind(op, ErrBadRequest, errors.New("missing field")))
		return
	}

	var (
		d   *model.Draft
		err error
	)
	switch req.Scope {
	case scopeBasic, "":
		d, err = h.deps.SetBasic(r.Context(), id, req.Field, req.Value)
	case scopeExtra:
		d, err = h.deps.SetExtraField(r.Context(), id, req.Field, req.Value)
	case scopeTrack:
		d, err = h.deps.SetTrackField(r.Context(), id, req.Index, req.Field, req.Value)
	default:
		err = WrapKind(op, ErrBadRequest, errors.New("scope must be basic, extra or track"))
	}
	if err != nil {
		writeFailure(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(d))
}

// HandleAddTrack handles POST /drafts/{id}/tracks.
func (h *DraftsHandler) HandleAddTrack(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.AddTrack(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, requestLang(r, h.cfg.defaultLang), err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(d))
}

// HandleRemoveTrack handles DELETE /drafts/{id}/tracks/{index}.
func (h *DraftsHandler) HandleRemoveTrack(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_track"
	lang := requestLang(r, h.cfg.defaultLang)
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeFailure(w, lang, WrapKind(op, ErrBadRequest, err))
		return
	}
	d, err := h.deps.RemoveTrack(r.Context(), chi.URLParam(r, "id"), index)
	if err != nil {
		writeFailure(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(d))
}

// HandleSubmit handles POST /drafts/{id}/submit.
func (h *DraftsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	lang := requestLang(r, h.cfg.defaultLang)
	res, err := h.deps.Submit(r.Context(), chi.URLParam(r, "id"), lang)
	if err != nil {
		writeFailure(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleForm handles GET /drafts/{id}/form?lang=&per_row=.
func (h *DraftsHandler) HandleForm(w http.ResponseWriter, r *http.Request) {
	const op = "api.draft_form"
	lang := requestLang(r, h.cfg.defaultLang)
	perRow, err := queryInt(r, "per_row", h.cfg.perRow)
	if err != nil {
		writeFailure(w, lang, WrapKind(op, ErrBadRequest, err))
		return
	}
	f, err := h.deps.Form(r.Context(), chi.URLParam(r, "id"), lang, perRow)
	if err != nil {
		writeFailure(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}
