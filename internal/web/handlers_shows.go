package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/showdesk/internal/core"
)

// handleListShows returns one filtered, sorted page of shows.
func (s *Server) handleListShows(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.QueryShows(r.Context(), parseArchived(r), parseListState(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleCreateShow validates a show with the import row rules and creates it.
func (s *Server) handleCreateShow(w http.ResponseWriter, r *http.Request) {
	var rec core.ShowRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		s.respondError(w, r, err)
		return
	}

	created, err := s.service.CreateShow(WithRequestMetadata(r.Context(), r), rec)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("HX-Trigger", "showsChanged")
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateShow(w http.ResponseWriter, r *http.Request) {
	var rec core.ShowRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		s.respondError(w, r, err)
		return
	}

	updated, err := s.service.UpdateShow(WithRequestMetadata(r.Context(), r), chi.URLParam(r, "id"), rec)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("HX-Trigger", "showsChanged")
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteShow(w http.ResponseWriter, r *http.Request) {
	s.showMutation(w, r, s.service.DeleteShow)
}

func (s *Server) handleArchiveShow(w http.ResponseWriter, r *http.Request) {
	s.showMutation(w, r, s.service.ArchiveShow)
}

func (s *Server) handleUnarchiveShow(w http.ResponseWriter, r *http.Request) {
	s.showMutation(w, r, s.service.UnarchiveShow)
}

// showMutation runs a single-show operation keyed by the {id} URL parameter.
func (s *Server) showMutation(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string) error) {
	if err := op(WithRequestMetadata(r.Context(), r), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("HX-Trigger", "showsChanged")
	w.WriteHeader(http.StatusNoContent)
}

type bulkRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleBulkArchive(w http.ResponseWriter, r *http.Request) {
	s.bulkMutation(w, r, s.service.BulkArchive)
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	s.bulkMutation(w, r, s.service.BulkDelete)
}

// bulkMutation decodes {"ids": [...]} and reports the per-batch result.
func (s *Server) bulkMutation(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, ids []string) (*core.BulkResult, error)) {
	var req bulkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := op(WithRequestMetadata(r.Context(), r), req.IDs)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if res.Successful > 0 {
		w.Header().Set("HX-Trigger", "showsChanged")
	}
	writeJSON(w, http.StatusOK, res)
}

type checkTitleRequest struct {
	Title     string `json:"title"`
	ExcludeID string `json:"exclude_id"`
}

// handleCheckTitle answers one title check. Debouncing is the caller's job.
func (s *Server) handleCheckTitle(w http.ResponseWriter, r *http.Request) {
	var req checkTitleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.CheckTitle(r.Context(), req.Title, req.ExcludeID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
