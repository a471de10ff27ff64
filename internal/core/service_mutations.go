package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNoIDs is returned by bulk operations called with an empty id list.
var ErrNoIDs = errors.New("no show ids provided")

// CreateShow validates a show from a form and creates it.
func (s *Service) CreateShow(ctx context.Context, rec ShowRecord) (*ShowRecord, error) {
	norm, err := NormalizeRecord(rec)
	if err != nil {
		return nil, err
	}
	norm.ID = ""

	created, err := s.api.CreateShow(ctx, norm)
	if err != nil {
		return nil, fmt.Errorf("create show: %w", err)
	}
	slog.Info("show created", "id", created.ID, "title", created.Title, "ip", GetIPAddressFromContext(ctx))
	return created, nil
}

// UpdateShow validates a show from a form and replaces show id with it.
func (s *Service) UpdateShow(ctx context.Context, id string, rec ShowRecord) (*ShowRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("update show: %w", ErrNoIDs)
	}
	norm, err := NormalizeRecord(rec)
	if err != nil {
		return nil, err
	}
	norm.ID = id

	updated, err := s.api.UpdateShow(ctx, id, norm)
	if err != nil {
		return nil, fmt.Errorf("update show: %w", err)
	}
	slog.Info("show updated", "id", id, "title", updated.Title, "ip", GetIPAddressFromContext(ctx))
	return updated, nil
}

// DeleteShow permanently deletes a show.
func (s *Service) DeleteShow(ctx context.Context, id string) error {
	if err := s.api.DeleteShow(ctx, id); err != nil {
		return fmt.Errorf("delete show: %w", err)
	}
	slog.Info("show deleted", "id", id, "ip", GetIPAddressFromContext(ctx))
	return nil
}

// ArchiveShow soft-deletes a show.
func (s *Service) ArchiveShow(ctx context.Context, id string) error {
	if err := s.api.ArchiveShow(ctx, id); err != nil {
		return fmt.Errorf("archive show: %w", err)
	}
	slog.Info("show archived", "id", id)
	return nil
}

// UnarchiveShow restores an archived show.
func (s *Service) UnarchiveShow(ctx context.Context, id string) error {
	if err := s.api.UnarchiveShow(ctx, id); err != nil {
		return fmt.Errorf("unarchive show: %w", err)
	}
	slog.Info("show unarchived", "id", id)
	return nil
}

// BulkArchive archives several shows in one call.
func (s *Service) BulkArchive(ctx context.Context, ids []string) (*BulkResult, error) {
	ids = compactIDs(ids)
	if len(ids) == 0 {
		return nil, ErrNoIDs
	}
	res, err := s.api.BulkArchive(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("bulk archive: %w", err)
	}
	slog.Info("shows archived", "requested", len(ids), "successful", res.Successful, "failed", res.Failed)
	return res, nil
}

// BulkDelete permanently deletes several shows in one call.
func (s *Service) BulkDelete(ctx context.Context, ids []string) (*BulkResult, error) {
	ids = compactIDs(ids)
	if len(ids) == 0 {
		return nil, ErrNoIDs
	}
	res, err := s.api.BulkDelete(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("bulk delete: %w", err)
	}
	slog.Info("shows deleted", "requested", len(ids), "successful", res.Successful, "failed", res.Failed)
	return res, nil
}

// CheckTitle asks the show API whether title is taken. excludeID is the
// show being edited, which never counts as its own duplicate.
func (s *Service) CheckTitle(ctx context.Context, title, excludeID string) (*TitleCheck, error) {
	title = strings.TrimSpace(title)
	out := &TitleCheck{Title: title}
	if title == "" {
		return out, nil
	}

	m, err := s.api.CheckSingleDuplicate(ctx, ShowRecord{ID: excludeID, Title: title})
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	if m == nil || !m.Exists {
		return out, nil
	}
	if excludeID != "" && m.ExistingShow != nil && m.ExistingShow.ID == excludeID {
		return out, nil
	}

	out.IsDuplicate = true
	out.ExistingShow = m.ExistingShow
	out.IsArchived = m.IsArchived
	out.Suggestion = SuggestEditExisting
	if m.IsArchived {
		out.Suggestion = SuggestUnarchiveAndEdit
	}
	return out, nil
}

// compactIDs trims ids and drops blanks and repeats, keeping order.
func compactIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
