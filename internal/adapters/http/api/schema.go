package api

import (
	"net/http"

	"github.com/slamweb/slam/internal/domain/sport"
	"github.com/slamweb/slam/internal/domain/types"
	"github.com/slamweb/slam/internal/i18n"
)

// SchemaDependencies describes the field schema lookups.
type SchemaDependencies interface {
	Schema(lang i18n.Lang, t sport.SportType, perRow int) types.Schema
	Defaults(t sport.SportType) types.Defaults
}

// SchemaHandler serves the per-type field schema.
type SchemaHandler struct {
	deps SchemaDependencies
	cfg  *settings
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(deps SchemaDependencies, cfg *settings) *SchemaHandler {
	return &SchemaHandler{deps: deps, cfg: cfg}
}

// HandleExtra handles GET /schema/extra?type=&lang=&per_row=.
func (h *SchemaHandler) HandleExtra(w http.ResponseWriter, r *http.Request) {
	const op = "api.schema_extra"
	lang := requestLang(r, h.cfg.defaultLang)
	perRow, err := queryInt(r, "per_row", h.cfg.perRow)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Schema(lang, typeParam(r), perRow))
}

// HandleDefaults handles GET /schema/defaults?type=.
func (h *SchemaHandler) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Defaults(typeParam(r)))
}

// typeParam classifies the type query parameter; anything unrecognized is Unknown.
func typeParam(r *http.Request) sport.SportType {
	return sport.TypeOf(r.URL.Query().Get("type"))
}
