package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slamweb/slam/internal/domain/recognition"
	"github.com/slamweb/slam/internal/domain/types"
	"github.com/slamweb/slam/internal/i18n"
)

// RecognitionDependencies describes the asynchronous recognition flow.
type RecognitionDependencies interface {
	SubmitRecognition(ctx context.Context, images []recognition.Image, lang i18n.Lang) (types.Job, error)
	GetJob(ctx context.Context, id string) (types.Job, error)
}

// RecognitionHandler serves the /recognitions routes.
type RecognitionHandler struct {
	deps RecognitionDependencies
	cfg  *settings
}

// NewRecognitionHandler creates a new recognition handler.
func NewRecognitionHandler(deps RecognitionDependencies, cfg *settings) *RecognitionHandler {
	return &RecognitionHandler{deps: deps, cfg: cfg}
}

// HandleSubmit handles POST /recognitions with one or more multipart image
// parts. A new job is accepted with 202; an upload identical to a job still
// known answers 200 with that job and duplicate set.
func (h *RecognitionHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_recognition"
	lang := requestLang(r, h.cfg.defaultLang)
	if err := parseMultipart(w, r, h.cfg.maxUpload); err != nil {
		writeFailure(w, lang, WrapKind(op, ErrBadRequest, err))
		return
	}
	images, err := formFiles(r, "image")
	if err != nil {
		writeFailure(w, lang, WrapKind(op, ErrBadRequest, err))
		return
	}
	job, err := h.deps.SubmitRecognition(r.Context(), images, lang)
	if err != nil {
		writeFailure(w, lang, err)
		return
	}
	status := http.StatusAccepted
	if job.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, job)
}

// HandleGet handles GET /recognitions/{id}.
func (h *RecognitionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	job, err := h.deps.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, requestLang(r, h.cfg.defaultLang), err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
