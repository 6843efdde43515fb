package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/export"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
)

// ExportDependencies defines the interface for export snapshots.
type ExportDependencies interface {
	Export(ctx context.Context) []model.RankedRecord
	WriteCSV(ctx context.Context, w io.Writer) error
	SaveExport(ctx context.Context) (string, error)
}

// ExportHandler handles export requests.
type ExportHandler struct {
	deps ExportDependencies
	now  func() time.Time
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps ExportDependencies) *ExportHandler {
	return &ExportHandler{deps: deps, now: time.Now}
}

type savedResponse struct {
	Path string `json:"path"`
}

// HandleExport handles GET /export?format=csv|json and POST /export.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	switch r.Method {
	case http.MethodGet:
		h.serveSnapshot(w, r)
	case http.MethodPost:
		path, err := h.deps.SaveExport(r.Context())
		switch {
		case err == nil:
			writeJSON(w, http.StatusCreated, savedResponse{Path: path})
		case errors.Is(err, export.ErrEmpty):
			writeError(w, http.StatusConflict, "empty_buffer", Wrap(op, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (h *ExportHandler) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_export"
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, h.deps.Export(r.Context()))
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="snapshot_%s.csv"`, h.now().Format("20060102_150405")))
		if err := h.deps.WriteCSV(r.Context(), w); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
	default:
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, fmt.Errorf("unknown format %q", format)))
	}
}
