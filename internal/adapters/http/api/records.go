package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/repository"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
)

// RecordDependencies defines the interface for reading and editing the buffer.
type RecordDependencies interface {
	Records(ctx context.Context) []model.PlayerRecord
	UpdateRecord(ctx context.Context, index int, r model.PlayerRecord) error
	ClearRecords(ctx context.Context) int
}

// RecordsHandler handles buffer requests.
type RecordsHandler struct {
	deps RecordDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

type indexedRecord struct {
	Index int `json:"index"`
	model.PlayerRecord
}

type recordsResponse struct {
	Count   int             `json:"count"`
	Records []indexedRecord `json:"records"`
}

type clearResponse struct {
	Removed int `json:"removed"`
}

// HandleRecords handles GET /records and DELETE /records.
func (h *RecordsHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		recs := h.deps.Records(r.Context())
		out := recordsResponse{Count: len(recs), Records: make([]indexedRecord, len(recs))}
		for i, rec := range recs {
			out.Records[i] = indexedRecord{Index: i, PlayerRecord: rec}
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodDelete:
		writeJSON(w, http.StatusOK, clearResponse{Removed: h.deps.ClearRecords(r.Context())})
	default:
		methodNotAllowed(w, "GET, DELETE")
	}
}

// HandlePutRecord handles PUT /records/{index}.
func (h *RecordsHandler) HandlePutRecord(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_record"
	if r.Method != http.MethodPut {
		methodNotAllowed(w, http.MethodPut)
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	var rec model.PlayerRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	rec.IGN = strings.TrimSpace(rec.IGN)

	switch err := h.deps.UpdateRecord(r.Context(), index, rec); {
	case err == nil:
		writeJSON(w, http.StatusOK, indexedRecord{Index: index, PlayerRecord: rec})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, repository.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, "invalid_record", WrapKind(op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
