package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/mq/queue"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/pipeline"
)

// CaptureDependencies defines the interface for triggering capture cycles.
type CaptureDependencies interface {
	RequestCapture(ctx context.Context) (model.CaptureJob, error)
	LastReport() (pipeline.Report, bool)
}

// CaptureHandler handles capture requests.
type CaptureHandler struct {
	deps CaptureDependencies
}

// NewCaptureHandler creates a new capture handler.
func NewCaptureHandler(deps CaptureDependencies) *CaptureHandler {
	return &CaptureHandler{deps: deps}
}

type captureResponse struct {
	Status    string    `json:"status"`
	ID        string    `json:"id"`
	Season    int       `json:"season"`
	Requested time.Time `json:"requested"`
}

// HandlePostCapture handles POST /capture. A request while a cycle is in
// flight is a no-op answered with 409.
func (h *CaptureHandler) HandlePostCapture(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_capture"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	job, err := h.deps.RequestCapture(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, captureResponse{
			Status:    "accepted",
			ID:        job.ID,
			Season:    job.Season,
			Requested: job.Requested,
		})
	case errors.Is(err, pipeline.ErrBusy):
		writeError(w, http.StatusConflict, "busy", Wrap(op, err))
	case errors.Is(err, pipeline.ErrSeasonInactive):
		writeError(w, http.StatusConflict, "season_inactive", Wrap(op, err))
	case errors.Is(err, queue.ErrFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, queue.ErrClosed), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// HandleGetLast handles GET /captures/last.
func (h *CaptureHandler) HandleGetLast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	rep, ok := h.deps.LastReport()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", errors.New("no capture has run yet"))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
