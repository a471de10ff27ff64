package core

import (
	"context"
	"fmt"
	"io"
)

// ListShows fetches active shows, or archived ones when archived is true.
func (s *Service) ListShows(ctx context.Context, archived bool) ([]ShowRecord, error) {
	if archived {
		recs, err := s.api.ListArchivedShows(ctx)
		if err != nil {
			return nil, fmt.Errorf("list archived shows: %w", err)
		}
		for i := range recs {
			recs[i].Archived = true
		}
		return recs, nil
	}

	recs, err := s.api.ListShows(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	return recs, nil
}

// QueryShows fetches shows and applies the list state. The page is
// recomputed only when the shows or the state changed since the last query.
func (s *Service) QueryShows(ctx context.Context, archived bool, state ListState) (*ListPage, error) {
	recs, err := s.ListShows(ctx, archived)
	if err != nil {
		return nil, err
	}
	page := s.views[archived].PageFor(recs, state)
	return &page, nil
}

// ExportShows writes the filtered and sorted show list as CSV, all pages.
func (s *Service) ExportShows(ctx context.Context, w io.Writer, archived bool, state ListState) (int, error) {
	recs, err := s.ListShows(ctx, archived)
	if err != nil {
		return 0, err
	}
	state.Page = 1
	state.PageSize = len(recs) + 1
	page := Apply(state, recs)
	if err := WriteExport(w, page.Rows); err != nil {
		return 0, err
	}
	return len(page.Rows), nil
}
