package showapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/showdesk/internal/core"
)

type idsRequest struct {
	IDs []string `json:"ids"`
}

type duplicatesRequest struct {
	Records []core.ShowRecord `json:"records"`
}

type duplicatesResponse struct {
	Duplicates []core.DuplicateMatch `json:"duplicates"`
}

type bulkCreateRequest struct {
	Records []core.ShowRecord `json:"records"`
	Actions []core.RowAction  `json:"actions"`
}

func (c *Client) ListShows(ctx context.Context) ([]core.ShowRecord, error) {
	var out []core.ShowRecord
	if err := c.do(ctx, "shows.list", http.MethodGet, "/podcasts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListArchivedShows(ctx context.Context) ([]core.ShowRecord, error) {
	var out []core.ShowRecord
	if err := c.do(ctx, "shows.list_archived", http.MethodGet, "/podcasts/archived", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateShow(ctx context.Context, rec core.ShowRecord) (*core.ShowRecord, error) {
	var out core.ShowRecord
	if err := c.do(ctx, "shows.create", http.MethodPost, "/podcasts", rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateShow(ctx context.Context, id string, rec core.ShowRecord) (*core.ShowRecord, error) {
	var out core.ShowRecord
	if err := c.do(ctx, "shows.update", http.MethodPut, showPath(id), rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteShow(ctx context.Context, id string) error {
	return c.do(ctx, "shows.delete", http.MethodDelete, showPath(id), nil, nil)
}

func (c *Client) ArchiveShow(ctx context.Context, id string) error {
	return c.do(ctx, "shows.archive", http.MethodPost, showPath(id, "archive"), nil, nil)
}

func (c *Client) UnarchiveShow(ctx context.Context, id string) error {
	return c.do(ctx, "shows.unarchive", http.MethodPost, showPath(id, "unarchive"), nil, nil)
}

func (c *Client) BulkArchive(ctx context.Context, ids []string) (*core.BulkResult, error) {
	var out core.BulkResult
	if err := c.do(ctx, "shows.bulk_archive", http.MethodPost, "/podcasts/bulk-archive", idsRequest{IDs: ids}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) BulkDelete(ctx context.Context, ids []string) (*core.BulkResult, error) {
	var out core.BulkResult
	if err := c.do(ctx, "shows.bulk_delete", http.MethodPost, "/podcasts/bulk-delete", idsRequest{IDs: ids}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckSingleDuplicate asks whether rec's title is taken. rec.ID, when set,
// is the show being edited.
func (c *Client) CheckSingleDuplicate(ctx context.Context, rec core.ShowRecord) (*core.DuplicateMatch, error) {
	var out core.DuplicateMatch
	if err := c.do(ctx, "shows.check_duplicate", http.MethodPost, "/podcasts/check-duplicate", rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckDuplicates checks every record in one round trip. The answers are
// index-aligned with recs.
func (c *Client) CheckDuplicates(ctx context.Context, recs []core.ShowRecord) ([]core.DuplicateMatch, error) {
	var out duplicatesResponse
	if err := c.do(ctx, "shows.check_duplicates", http.MethodPost, "/podcasts/check-duplicates", duplicatesRequest{Records: recs}, &out); err != nil {
		return nil, err
	}
	if len(out.Duplicates) != len(recs) {
		return nil, fmt.Errorf("show api: check duplicates: got %d results for %d records", len(out.Duplicates), len(recs))
	}
	return out.Duplicates, nil
}

// BulkCreateWithActions applies one import in a single call. Per-row
// failures come back in the result, not as an error.
func (c *Client) BulkCreateWithActions(ctx context.Context, recs []core.ShowRecord, actions []core.RowAction) (*core.BulkResult, error) {
	var out core.BulkResult
	req := bulkCreateRequest{Records: recs, Actions: actions}
	if err := c.do(ctx, "shows.bulk_create", http.MethodPost, "/podcasts/bulk-create-with-actions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
