package api

import (
	"context"
	"net/http"

	"github.com/slamweb/slam/internal/adapters/remote/sportapi"
	"github.com/slamweb/slam/internal/domain/types"
	"github.com/slamweb/slam/internal/i18n"
)

// UserDependencies describes the account relays.
type UserDependencies interface {
	Register(ctx context.Context, name, password, confirm, nickname string, lang i18n.Lang) error
	Login(ctx context.Context, name, password string, lang i18n.Lang) error
	Logout(ctx context.Context, lang i18n.Lang) error
	Info(ctx context.Context, lang i18n.Lang) (types.User, error)
	UploadAvatar(ctx context.Context, data []byte, filename string, lang i18n.Lang) (string, error)
	Session() (sportapi.Session, error)
}

// UserHandler serves the /user routes.
type UserHandler struct {
	deps UserDependencies
	cfg  *settings
}

// NewUserHandler creates a new user handler.
func NewUserHandler(deps UserDependencies, cfg *settings) *UserHandler {
	return &UserHandler{deps: deps, cfg: cfg}
}

type registerRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
	Nickname string `json:"nickname"`
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type avatarResponse struct {
	Avatar string `json:"avatar"`
}

// HandleRegister handles POST /user/register.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register"
	lang := requestLang(r, h.cfg.defaultLang)
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, lang, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.Register(r.Context(), req.Name, req.Password, req.Confirm, req.Nickname, lang); err != nil {
		writeFailure(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, types.Ack{Success: true})
}

// HandleLogin handles POST /user/login.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	lang := requestLang(r, h.cfg.defaultLang)
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, lang, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.Login(r.Context(), req.Name, req.Password, lang); err != nil {
		writeFailure(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, types.Ack{Success: true})
}

// HandleLogout handles POST /user/logout.
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	lang := requestLang(r, h.cfg.defaultLang)
	if err := h.deps.Logout(r.Context(), lang); err != nil {
		writeFailure(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, types.Ack{Success: true})
}

// HandleInfo handles GET /user/info.
func (h *UserHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	lang := requestLang(r, h.cfg.defaultLang)
	u, err := h.deps.Info(r.Context(), lang)
	if err != nil {
		writeFailure(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HandleSession handles GET /user/session. It answers from the local cookie
// and never calls the backend.
func (h *UserHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Session()
	if err != nil {
		writeFailure(w, requestLang(r, h.cfg.defaultLang), err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// HandleAvatar handles POST /user/avatar with a multipart file part.
func (h *UserHandler) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	const op = "api.upload_avatar"
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
	url, err := h.deps.UploadAvatar(r.Context(), file.Data, file.Name, lang)
	if err != nil {
		writeFailure(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, avatarResponse{Avatar: url})
}
