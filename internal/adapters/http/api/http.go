// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CaptureDependencies
	RecordDependencies
	ExportDependencies
	SeasonDependencies
}

// Server wires HTTP routes for the scanner API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	captureHandler *CaptureHandler
	recordsHandler *RecordsHandler
	exportHandler  *ExportHandler
	seasonHandler  *SeasonHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		captureHandler: NewCaptureHandler(deps),
		recordsHandler: NewRecordsHandler(deps),
		exportHandler:  NewExportHandler(deps),
		seasonHandler:  NewSeasonHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/capture", MetricsMiddleware(s.captureHandler.HandlePostCapture, "capture"))
	mux.HandleFunc("/captures/last", MetricsMiddleware(s.captureHandler.HandleGetLast, "captures_last"))
	mux.HandleFunc("/records", MetricsMiddleware(s.recordsHandler.HandleRecords, "records"))
	mux.HandleFunc("/records/{index}", MetricsMiddleware(s.recordsHandler.HandlePutRecord, "record"))
	mux.HandleFunc("/export", MetricsMiddleware(s.exportHandler.HandleExport, "export"))
	mux.HandleFunc("/season", MetricsMiddleware(s.seasonHandler.HandleSeason, "season"))
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

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}
