package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/showdesk/internal/core"
)

// handleDownloadTemplate serves the header-only import template.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := core.WriteTemplate(&buf); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeCSV(w, "show_import_template.csv", buf.Bytes())
}

// handleExport streams every show matching the list query as CSV, ignoring
// paging. The file re-imports unchanged.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	archived := parseArchived(r)

	var buf bytes.Buffer
	n, err := s.service.ExportShows(r.Context(), &buf, archived, parseListState(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	prefix := "shows"
	if archived {
		prefix = "archived_shows"
	}
	w.Header().Set("X-Row-Count", strconv.Itoa(n))
	writeCSV(w, fmt.Sprintf("%s_%s.csv", prefix, time.Now().Format("20060102")), buf.Bytes())
}

func writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// handleRevenue returns the dashboard revenue summary.
func (s *Server) handleRevenue(w http.ResponseWriter, r *http.Request) {
	sum, err := s.service.RevenueSummary(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleHealth reports liveness, import load and the show API breaker.
// An open breaker reports "degraded", still with 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	body := map[string]any{
		"import":   s.service.LimiterStatus(),
		"sessions": s.service.SessionCount(),
	}
	if s.circuit != nil {
		state := s.circuit.CircuitState()
		body["show_api_circuit"] = state
		if state == "open" {
			status = "degraded"
		}
	}
	body["status"] = status
	writeJSON(w, http.StatusOK, body)
}
