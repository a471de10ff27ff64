package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/showdesk/internal/core"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

// handlePreviewImport parses, validates and duplicate-checks an uploaded
// CSV file and returns the import session. A file with invalid rows is
// rejected with 422 and every row error.
func (s *Server) handlePreviewImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.respondError(w, r, core.ErrFileTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", ErrInvalidBody, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, core.ErrNoFile)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	sess, err := s.service.AnalyzeImport(ctx, header.Filename, file, core.AnalyzeOptions{
		SessionID: r.FormValue("session_id"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// handleGetImport returns the current state of an import session.
func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Session(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type rowActionRequest struct {
	Action string `json:"action"`
}

// handleSetRowAction changes the commit action of one preview row.
func (s *Server) handleSetRowAction(w http.ResponseWriter, r *http.Request) {
	rowParam := chi.URLParam(r, "row")
	row, err := strconv.Atoi(rowParam)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %q", core.ErrRowNotFound, rowParam))
		return
	}

	var req rowActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	action, err := core.ParseAction(req.Action)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, err := s.service.SetAction(chi.URLParam(r, "sessionID"), row, action)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// handleCommitImport applies the session in one batch. Partial failure is
// a 200 with the counts; only a failed call is an error.
func (s *Server) handleCommitImport(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.CommitImport(ctx, chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if result.Refresh {
		w.Header().Set("HX-Trigger", "showsChanged")
	}
	if isHTMX(r) {
		renderPartial(w, r, http.StatusOK, commitResultPartial(result))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDiscardImport closes an import without committing it.
func (s *Server) handleDiscardImport(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DiscardSession(chi.URLParam(r, "sessionID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleImportStatus reports import slot usage and open sessions.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"limiter":  s.service.LimiterStatus(),
		"sessions": s.service.SessionCount(),
	})
}
