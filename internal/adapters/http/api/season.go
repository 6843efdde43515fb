package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ravushimo/gunsmoke-scanner/internal/domain/season"
)

// SeasonDependencies defines the interface for season queries and overrides.
type SeasonDependencies interface {
	Season() season.Period
	SetSeason(number int) (season.Period, error)
	ClearSeason() season.Period
}

// SeasonHandler handles season requests.
type SeasonHandler struct {
	deps SeasonDependencies
}

// NewSeasonHandler creates a new season handler.
func NewSeasonHandler(deps SeasonDependencies) *SeasonHandler {
	return &SeasonHandler{deps: deps}
}

type seasonRequest struct {
	Number int `json:"number"`
}

// HandleSeason handles GET, PUT and DELETE /season.
func (h *SeasonHandler) HandleSeason(w http.ResponseWriter, r *http.Request) {
	const op = "api.season"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Season())
	case http.MethodPut:
		var req seasonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		p, err := h.deps.SetSeason(req.Number)
		if err != nil {
			if errors.Is(err, season.ErrInvalidSeason) {
				writeError(w, http.StatusBadRequest, "invalid_season", WrapKind(op, ErrBadRequest, err))
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		writeJSON(w, http.StatusOK, h.deps.ClearSeason())
	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}
