// Package view serves server-rendered HTML fragments of draft forms, for
// shells that embed the editor without running the layout themselves.
package view

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/slamweb/slam/internal/adapters/http/api"
	repository "github.com/slamweb/slam/internal/adapters/repository"
	"github.com/slamweb/slam/internal/domain/types"
	"github.com/slamweb/slam/internal/i18n"
)

// FormSource builds the form of a stored draft.
type FormSource interface {
	Form(ctx context.Context, id string, lang i18n.Lang, perRow int) (types.Form, error)
}

// Handler renders draft fragments.
type Handler struct {
	forms       FormSource
	defaultLang i18n.Lang
	perRow      int
}

// NewHandler creates a view handler. perRow is used when a request has none.
func NewHandler(forms FormSource, defaultLang i18n.Lang, perRow int) *Handler {
	if _, ok := i18n.Parse(string(defaultLang)); !ok {
		defaultLang = i18n.Default
	}
	if perRow < 0 {
		perRow = 0
	}
	return &Handler{forms: forms, defaultLang: defaultLang, perRow: perRow}
}

// Register attaches the view routes to r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/view/drafts/{id}/extra", api.MetricsMiddleware(h.HandleExtra, "view_extra"))
	r.Get("/view/drafts/{id}/tracks", api.MetricsMiddleware(h.HandleTracks, "view_tracks"))
}

// HandleExtra handles GET /view/drafts/{id}/extra?lang=&per_row=&readonly=.
func (h *Handler) HandleExtra(w http.ResponseWriter, r *http.Request) {
	form, readonly, ok := h.load(w, r)
	if !ok {
		return
	}
	render(w, r, ExtraRows(form.Extra, "", readonly))
}

// HandleTracks handles GET /view/drafts/{id}/tracks?lang=&per_row=&readonly=.
func (h *Handler) HandleTracks(w http.ResponseWriter, r *http.Request) {
	form, readonly, ok := h.load(w, r)
	if !ok {
		return
	}
	render(w, r, TrackRows(form.Tracks, readonly))
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (types.Form, bool, bool) {
	q := r.URL.Query()
	lang := i18n.Resolve(q.Get("lang"), r.Header.Get("Accept-Language"), h.defaultLang)
	perRow := h.perRow
	if raw := q.Get("per_row"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid per_row", http.StatusBadRequest)
			return types.Form{}, false, false
		}
		perRow = n
	}
	readonly, _ := strconv.ParseBool(q.Get("readonly"))

	form, err := h.forms.Form(r.Context(), chi.URLParam(r, "id"), lang, perRow)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, i18n.Label(lang, "errors.notFound"), http.StatusNotFound)
		return types.Form{}, false, false
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return types.Form{}, false, false
	}
	return form, readonly, true
}

func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
