// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/slamweb/slam/internal/adapters/remote/sportapi"
	repository "github.com/slamweb/slam/internal/adapters/repository"
	service "github.com/slamweb/slam/internal/app"
	"github.com/slamweb/slam/internal/domain/recognition"
	"github.com/slamweb/slam/internal/domain/stats"
	"github.com/slamweb/slam/internal/i18n"
)

// Dependencies required by HTTP handlers. *service.Service implements it.
type Dependencies interface {
	DraftDependencies
	SportDependencies
	RecognitionDependencies
	UserDependencies
	SchemaDependencies
	StatsProvider
}

var _ Dependencies = (*service.Service)(nil)

// Server wires HTTP routes for the client core API.
type Server struct {
	healthHandler      *HealthHandler
	statusHandler      *StatusHandler
	schemaHandler      *SchemaHandler
	draftsHandler      *DraftsHandler
	sportsHandler      *SportsHandler
	recognitionHandler *RecognitionHandler
	userHandler        *UserHandler
}

// Option configures the Server.
type Option func(*settings)

type settings struct {
	defaultLang i18n.Lang
	perRow      int
	maxUpload   int64
}

// WithDefaultLang sets the language used when a request names none.
func WithDefaultLang(lang i18n.Lang) Option {
	return func(s *settings) {
		if _, ok := i18n.Parse(string(lang)); ok {
			s.defaultLang = lang
		}
	}
}

// WithExtraPerRow sets the extra-field row width used when a request has no per_row.
func WithExtraPerRow(n int) Option {
	return func(s *settings) {
		if n >= 0 {
			s.perRow = n
		}
	}
}

// WithMaxUploadSize caps multipart request bodies.
func WithMaxUploadSize(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := &settings{defaultLang: i18n.Default, maxUpload: 64 << 20}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statusHandler:      NewStatusHandler(statsProvider),
		schemaHandler:      NewSchemaHandler(deps, cfg),
		draftsHandler:      NewDraftsHandler(deps, cfg),
		sportsHandler:      NewSportsHandler(deps, cfg),
		recognitionHandler: NewRecognitionHandler(deps, cfg),
		userHandler:        NewUserHandler(deps, cfg),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/status", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))

	r.Get("/schema/extra", MetricsMiddleware(s.schemaHandler.HandleExtra, "schema_extra"))
	r.Get("/schema/defaults", MetricsMiddleware(s.schemaHandler.HandleDefaults, "schema_defaults"))

	r.Route("/drafts", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.draftsHandler.HandleList, "drafts"))
		r.Post("/", MetricsMiddleware(s.draftsHandler.HandleCreate, "drafts"))
		r.Get("/{id}", MetricsMiddleware(s.draftsHandler.HandleGet, "draft"))
		r.Delete("/{id}", MetricsMiddleware(s.draftsHandler.HandleDelete, "draft"))
		r.Patch("/{id}", MetricsMiddleware(s.draftsHandler.HandlePatch, "draft"))
		r.Get("/{id}/form", MetricsMiddleware(s.draftsHandler.HandleForm, "draft_form"))
		r.Post("/{id}/tracks", MetricsMiddleware(s.draftsHandler.HandleAddTrack, "draft_tracks"))
		r.Delete("/{id}/tracks/{index}", MetricsMiddleware(s.draftsHandler.HandleRemoveTrack, "draft_tracks"))
		r.Post("/{id}/submit", MetricsMiddleware(s.draftsHandler.HandleSubmit, "draft_submit"))
	})

	r.Get("/sports", MetricsMiddleware(s.sportsHandler.HandleList, "sports"))
	r.Post("/sports/delete", MetricsMiddleware(s.sportsHandler.HandleDelete, "sports_delete"))
	r.Post("/sports/import", MetricsMiddleware(s.sportsHandler.HandleImport, "sports_import"))
	r.Get("/sports/stats", MetricsMiddleware(s.sportsHandler.HandleStats, "sports_stats"))
	r.Get("/overview", MetricsMiddleware(s.sportsHandler.HandleOverview, "overview"))

	r.Post("/recognitions", MetricsMiddleware(s.recognitionHandler.HandleSubmit, "recognitions"))
	r.Get("/recognitions/{id}", MetricsMiddleware(s.recognitionHandler.HandleGet, "recognition"))

	r.Route("/user", func(r chi.Router) {
		r.Post("/register", MetricsMiddleware(s.userHandler.HandleRegister, "user_register"))
		r.Post("/login", MetricsMiddleware(s.userHandler.HandleLogin, "user_login"))
		r.Post("/logout", MetricsMiddleware(s.userHandler.HandleLogout, "user_logout"))
		r.Get("/info", MetricsMiddleware(s.userHandler.HandleInfo, "user_info"))
		r.Get("/session", MetricsMiddleware(s.userHandler.HandleSession, "user_session"))
		r.Post("/avatar", MetricsMiddleware(s.userHandler.HandleAvatar, "user_avatar"))
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to a status and a message in lang.
func writeFailure(w http.ResponseWriter, lang i18n.Lang, err error) {
	status, code := classify(err)
	writeJSON(w, status, errorResponse{Code: code, Message: message(lang, err)})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, sportapi.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, sportapi.ErrTimeout):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, sportapi.ErrServerBusy):
		return http.StatusBadGateway, "busy"
	case errors.Is(err, sportapi.ErrNetwork), errors.Is(err, sportapi.ErrDecode):
		return http.StatusBadGateway, "network"
	case errors.Is(err, sportapi.ErrRemote):
		return http.StatusBadRequest, "remote"
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrUnknownField),
		errors.Is(err, service.ErrTrackIndex),
		errors.Is(err, stats.ErrInvalidQuery),
		errors.Is(err, repository.ErrInvalidDraft):
		return http.StatusUnprocessableEntity, "invalid"
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, repository.ErrJobNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrBackpressure),
		errors.Is(err, repository.ErrCapacity):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func message(lang i18n.Lang, err error) string {
	var ie *service.InputError
	switch {
	case errors.As(err, &ie):
		return ie.Message(lang)
	case errors.Is(err, recognition.ErrNoImages),
		errors.Is(err, recognition.ErrNotImage),
		errors.Is(err, recognition.ErrTooManyImages),
		errors.Is(err, recognition.ErrImageTooLarge):
		return i18n.Label(lang, "errors.recognizeFailed")
	case errors.Is(err, repository.ErrNotFound):
		return i18n.Label(lang, "errors.notFound")
	case errors.Is(err, service.ErrBackpressure):
		return i18n.Label(lang, "errors.queueFull")
	case errors.Is(err, sportapi.ErrUnauthorized):
		return http.StatusText(http.StatusUnauthorized)
	case errors.Is(err, sportapi.ErrTimeout),
		errors.Is(err, sportapi.ErrServerBusy),
		errors.Is(err, sportapi.ErrNetwork),
		errors.Is(err, sportapi.ErrRemote):
		return sportapi.UserMessage(lang, err)
	}
	return err.Error()
}

// requestLang picks the lang query parameter, then Accept-Language, then def.
func requestLang(r *http.Request, def i18n.Lang) i18n.Lang {
	return i18n.Resolve(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), def)
}

// queryInt reads a non-negative integer query parameter, def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}
