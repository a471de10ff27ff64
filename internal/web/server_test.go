package web

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/showdesk/internal/config"
	"github.com/JonMunkholm/showdesk/internal/core"
)

// stubAPI is a minimal in-memory show API.
type stubAPI struct {
	mu       sync.Mutex
	active   []core.ShowRecord
	archived []core.ShowRecord
	commits  [][]core.RowAction
	checkErr error
}

func (f *stubAPI) match(title string) core.DuplicateMatch {
	for _, rec := range f.active {
		if strings.EqualFold(rec.Title, title) {
			rec := rec
			return core.DuplicateMatch{Exists: true, ExistingShow: &rec}
		}
	}
	for _, rec := range f.archived {
		if strings.EqualFold(rec.Title, title) {
			rec := rec
			return core.DuplicateMatch{Exists: true, ExistingShow: &rec, IsArchived: true}
		}
	}
	return core.DuplicateMatch{}
}

func (f *stubAPI) ListShows(ctx context.Context) ([]core.ShowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.ShowRecord(nil), f.active...), nil
}

func (f *stubAPI) ListArchivedShows(ctx context.Context) ([]core.ShowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.ShowRecord(nil), f.archived...), nil
}

func (f *stubAPI) CreateShow(ctx context.Context, rec core.ShowRecord) (*core.ShowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = "new-id"
	f.active = append(f.active, rec)
	return &rec, nil
}

func (f *stubAPI) UpdateShow(ctx context.Context, id string, rec core.ShowRecord) (*core.ShowRecord, error) {
	return nil, errors.New("show api: status 404: not found")
}

func (f *stubAPI) DeleteShow(ctx context.Context, id string) error    { return nil }
func (f *stubAPI) ArchiveShow(ctx context.Context, id string) error   { return nil }
func (f *stubAPI) UnarchiveShow(ctx context.Context, id string) error { return nil }

func (f *stubAPI) BulkArchive(ctx context.Context, ids []string) (*core.BulkResult, error) {
	return &core.BulkResult{Successful: len(ids)}, nil
}

func (f *stubAPI) BulkDelete(ctx context.Context, ids []string) (*core.BulkResult, error) {
	return &core.BulkResult{Successful: len(ids)}, nil
}

func (f *stubAPI) CheckSingleDuplicate(ctx context.Context, rec core.ShowRecord) (*core.DuplicateMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.match(rec.Title)
	return &m, nil
}

func (f *stubAPI) CheckDuplicates(ctx context.Context, recs []core.ShowRecord) ([]core.DuplicateMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	out := make([]core.DuplicateMatch, len(recs))
	for i, rec := range recs {
		out[i] = f.match(rec.Title)
	}
	return out, nil
}

func (f *stubAPI) BulkCreateWithActions(ctx context.Context, recs []core.ShowRecord, actions []core.RowAction) (*core.BulkResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits = append(f.commits, actions)
	n := 0
	for _, a := range actions {
		if a.Action != core.ActionSkip {
			n++
		}
	}
	return &core.BulkResult{Successful: n}, nil
}

type stubCircuit string

func (c stubCircuit) CircuitState() string { return string(c) }

func testConfig() *config.Config {
	return &config.Config{
		Import: config.ImportConfig{
			MaxFileSize:   1 << 20,
			MaxRows:       100,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
			SessionTTL:    time.Hour,
		},
		Rate:     config.RateLimitConfig{Enabled: false, RequestsPerMinute: 100, ImportLimit: 10},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, api *stubAPI, cfg *config.Config) *Server {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	svc := core.NewService(api, cfg.Import)
	return NewServer(svc, cfg, stubCircuit("closed"))
}

func uploadRequest(t *testing.T, csvBody string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "shows.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csvBody))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import/preview", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestPreviewImport_ValidationRejectsFile(t *testing.T) {
	api := &stubAPI{}
	s := newTestServer(t, api, nil)

	rec := serve(s, uploadRequest(t, "Show Name,Show Type\nAlpha,Original\n,Original\nGamma,Licensed\n"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "VAL001", body.Code)
	assert.Equal(t, []string{
		"Row 2: Missing required field 'Show Name'",
		"Row 3: Invalid Show Type 'Licensed'. Must be one of: Original, Branded, Partner",
	}, body.Errors)
	assert.Zero(t, s.service.SessionCount())
}

func TestPreviewImport_NoFile(t *testing.T) {
	s := newTestServer(t, &stubAPI{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/import/preview", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := serve(s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE004", decodeError(t, rec).Code)
}

func TestPreviewImport_DuplicateCheckFailure(t *testing.T) {
	api := &stubAPI{checkErr: errors.New("show api: status 503: unavailable")}
	s := newTestServer(t, api, nil)

	rec := serve(s, uploadRequest(t, "Show Name\nAlpha\n"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "DUP001", decodeError(t, rec).Code)
	assert.Zero(t, s.service.SessionCount())
}

func TestImportFlow(t *testing.T) {
	api := &stubAPI{active: []core.ShowRecord{{ID: "a1", Title: "Alpha", ShowType: "Original", IsActive: true}}}
	s := newTestServer(t, api, nil)

	rec := serve(s, uploadRequest(t, "Show Name,Show Type,Extra\nalpha,Branded,x\nBeta,Partner,y\n"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sess core.ImportSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, core.SessionReady, sess.State)
	assert.Equal(t, []string{"Extra"}, sess.IgnoredHeaders)
	require.Len(t, sess.Rows, 2)
	assert.True(t, sess.Rows[0].Duplicate)
	assert.Equal(t, core.ActionUpdate, sess.Rows[0].Action)
	assert.Contains(t, sess.Rows[0].Changes, "Show Type")
	assert.NotContains(t, sess.Rows[0].Changes, "Active")
	assert.Equal(t, core.ActionCreate, sess.Rows[1].Action)

	// Update needs a match.
	rec = serve(s, jsonRequest(http.MethodPut, "/api/import/"+sess.ID+"/rows/2/action", `{"action":"update"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VAL003", decodeError(t, rec).Code)

	rec = serve(s, jsonRequest(http.MethodPut, "/api/import/"+sess.ID+"/rows/2/action", `{"action":"rename"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VAL002", decodeError(t, rec).Code)

	rec = serve(s, jsonRequest(http.MethodPut, "/api/import/"+sess.ID+"/rows/9/action", `{"action":"skip"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(s, jsonRequest(http.MethodPut, "/api/import/"+sess.ID+"/rows/2/action", `{"action":"skip"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, 1, sess.Summary.SkipRows)

	rec = serve(s, httptest.NewRequest(http.MethodPost, "/api/import/"+sess.ID+"/commit", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "showsChanged", rec.Header().Get("HX-Trigger"))

	var result core.CommitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "Successfully imported 1 show(s)", result.Message)
	assert.True(t, result.Refresh)

	require.Len(t, api.commits, 1)
	assert.Equal(t, []core.RowAction{
		{Title: "alpha", Action: core.ActionUpdate},
		{Title: "Beta", Action: core.ActionSkip},
	}, api.commits[0])

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/import/"+sess.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, core.SessionCommitted, sess.State)

	rec = serve(s, httptest.NewRequest(http.MethodPost, "/api/import/"+sess.ID+"/commit", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "IMP003", decodeError(t, rec).Code)
	assert.Len(t, api.commits, 1)
}

func TestCommitImport_HTMXPartial(t *testing.T) {
	s := newTestServer(t, &stubAPI{}, nil)

	rec := serve(s, uploadRequest(t, "Show Name\nBold\n"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sess core.ImportSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))

	req := httptest.NewRequest(http.MethodPost, "/api/import/"+sess.ID+"/commit", nil)
	req.Header.Set("HX-Request", "true")
	rec = serve(s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Successfully imported 1 show(s)")
	assert.Contains(t, rec.Body.String(), "alert-success")
}

func TestDiscardImport(t *testing.T) {
	s := newTestServer(t, &stubAPI{}, nil)

	rec := serve(s, uploadRequest(t, "Show Name\nAlpha\n"))
	require.Equal(t, http.StatusOK, rec.Code)
	var sess core.ImportSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))

	rec = serve(s, httptest.NewRequest(http.MethodDelete, "/api/import/"+sess.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/import/"+sess.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "IMP001", decodeError(t, rec).Code)

	rec = serve(s, httptest.NewRequest(http.MethodPost, "/api/import/"+sess.ID+"/commit", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRespondError_HTMXAlertEscapes(t *testing.T) {
	s := newTestServer(t, &stubAPI{}, nil)

	req := uploadRequest(t, "Show Name,Show Type\nAlpha,Bogus\n")
	req.Header.Set("HX-Request", "true")
	rec := serve(s, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "Code: VAL001")
	assert.Contains(t, body, "Invalid Show Type &#39;Bogus&#39;")
}

func TestImportStatus(t *testing.T) {
	s := newTestServer(t, &stubAPI{}, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/import/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Limiter  core.ImportLimiterStatus `json:"limiter"`
		Sessions int                      `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Limiter.MaxConcurrent)
	assert.Equal(t, 2, body.Limiter.Available)
	assert.Zero(t, body.Sessions)
}

func TestImportRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100, ImportLimit: 1}
	s := newTestServer(t, &stubAPI{}, cfg)

	rec := serve(s, uploadRequest(t, "Show Name\nAlpha\n"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(s, uploadRequest(t, "Show Name\nBeta\n"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Other routes use the general budget.
	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/import/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, s.PruneRateLimiters())
}

func TestListShows(t *testing.T) {
	api := &stubAPI{active: []core.ShowRecord{
		{ID: "1", Title: "Alpha", ShowType: "Original"},
		{ID: "2", Title: "Beta", ShowType: "Original"},
		{ID: "3", Title: "Delta", ShowType: "Branded"},
		{ID: "4", Title: "Gamma", ShowType: "Original"},
	}}
	s := newTestServer(t, api, nil)

	q := url.Values{}
	q.Set("filter[Show Type]", "eq:Original")
	q.Set("sort", "Show Name")
	q.Set("dir", "desc")
	q.Set("page_size", "2")
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/shows?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page core.ListPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "Gamma", page.Rows[0].Title)
	assert.Equal(t, "Beta", page.Rows[1].Title)

	q.Set("page", "2")
	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/shows?"+q.Encode(), nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Alpha", page.Rows[0].Title)
}

func TestListShows_Archived(t *testing.T) {
	api := &stubAPI{archived: []core.ShowRecord{{ID: "9", Title: "Old"}}}
	s := newTestServer(t, api, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/shows?archived=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var page core.ListPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Rows, 1)
	assert.True(t, page.Rows[0].Archived)
}

func TestCreateShow(t *testing.T) {
	api := &stubAPI{}
	s := newTestServer(t, api, nil)

	rec := serve(s, jsonRequest(http.MethodPost, "/api/shows", `{"title":"New Show","show_type":"partner","region":"rural"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created core.ShowRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "new-id", created.ID)
	assert.Equal(t, "Partner", created.ShowType)
	assert.Equal(t, "Rural", created.Region)

	rec = serve(s, jsonRequest(http.MethodPost, "/api/shows", `{"title":"","side_bonus_percent":120}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "VAL009", body.Code)
	assert.Equal(t, "The show has invalid values", body.Message)
	assert.Len(t, body.Errors, 2)

	rec = serve(s, jsonRequest(http.MethodPost, "/api/shows", `{"title":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VAL008", decodeError(t, rec).Code)
}

func TestCreateShow_ActiveByDefault(t *testing.T) {
	s := newTestServer(t, &stubAPI{}, nil)

	rec := serve(s, jsonRequest(http.MethodPost, "/api/shows", `{"title":"X"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, true, created["is_active"])

	rec = serve(s, jsonRequest(http.MethodPost, "/api/shows", `{"title":"Y","is_active":false}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, false, created["is_active"])
}

func TestCommitResultPartial(t *testing.T) {
	var buf strings.Builder
	err := commitResultPartial(&core.CommitResult{
		Message: "Imported 1 show(s), 1 failed",
		Failed:  1,
		Skipped: 2,
		Errors:  []string{"Row 2: <b>taken</b>"},
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `<div class="alert alert-warning" role="status">`)
	assert.Contains(t, html, "<p>2 row(s) skipped</p>")
	assert.Contains(t, html, "Row 2: &lt;b&gt;taken&lt;/b&gt;")
}

func TestUpdateShow_NotFound(t *testing.T) {
	s := newTestServer(t, &stubAPI{}, nil)

	rec := serve(s, jsonRequest(http.MethodPut, "/api/shows/missing", `{"title":"X"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "API004", decodeError(t, rec).Code)
}

func TestShowMutations(t *testing.T) {
	s := newTestServer(t, &stubAPI{}, nil)

	for _, path := range []string{"/api/shows/1/archive", "/api/shows/1/unarchive"} {
		rec := serve(s, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code, path)
	}
	rec := serve(s, httptest.NewRequest(http.MethodDelete, "/api/shows/1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(s, jsonRequest(http.MethodPost, "/api/shows/bulk-archive", `{"ids":["1","2","2"," "]}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var res core.BulkResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Successful)

	rec = serve(s, jsonRequest(http.MethodPost, "/api/shows/bulk-delete", `{"ids":[]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VAL006", decodeError(t, rec).Code)
}

func TestCheckTitle(t *testing.T) {
	api := &stubAPI{archived: []core.ShowRecord{{ID: "7", Title: "Old Show"}}}
	s := newTestServer(t, api, nil)

	rec := serve(s, jsonRequest(http.MethodPost, "/api/shows/check-title", `{"title":"old show"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var res core.TitleCheck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.IsDuplicate)
	assert.True(t, res.IsArchived)
	assert.Equal(t, core.SuggestUnarchiveAndEdit, res.Suggestion)

	rec = serve(s, jsonRequest(http.MethodPost, "/api/shows/check-title", `{"title":"old show","exclude_id":"7"}`))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.IsDuplicate)
}

func TestDownloadTemplate(t *testing.T) {
	s := newTestServer(t, &stubAPI{}, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/template", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "show_import_template.csv")

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, core.TemplateHeaders(), rows[0])
}

func TestExport(t *testing.T) {
	api := &stubAPI{active: []core.ShowRecord{
		{ID: "1", Title: "Alpha", ShowType: "Original", IsActive: true},
		{ID: "2", Title: "Beta", ShowType: "Branded", IsActive: true},
	}}
	s := newTestServer(t, api, nil)

	q := url.Values{}
	q.Set("filter[Show Type]", "eq:Branded")
	q.Set("page_size", "1")
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/export?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Row-Count"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "shows_")

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Beta", rows[1][0])
}

func TestRevenue(t *testing.T) {
	rev := 1000.0
	api := &stubAPI{
		active:   []core.ShowRecord{{ID: "1", Title: "Alpha", ShowType: "Original", Revenue2025: &rev}},
		archived: []core.ShowRecord{{ID: "2", Title: "Old"}},
	}
	s := newTestServer(t, api, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/dashboard/revenue", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var sum core.RevenueSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 2, sum.TotalShows)
	assert.Equal(t, 1, sum.ArchivedShows)
}

func TestHealth(t *testing.T) {
	cfg := testConfig()
	svc := core.NewService(&stubAPI{}, cfg.Import)

	tests := []struct {
		circuit CircuitReporter
		want    string
	}{
		{nil, "ok"},
		{stubCircuit("closed"), "ok"},
		{stubCircuit("half-open"), "ok"},
		{stubCircuit("open"), "degraded"},
	}
	for _, tt := range tests {
		s := NewServer(svc, cfg, tt.circuit)
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tt.want, body["status"])
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&core.ValidationErrors{Errors: []string{"Row 1: x"}}, http.StatusUnprocessableEntity},
		{&core.ValidationErrors{Errors: []string{"x"}, Form: true}, http.StatusUnprocessableEntity},
		{core.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{core.ErrTooManyRows, http.StatusRequestEntityTooLarge},
		{core.ErrEmptyFile, http.StatusBadRequest},
		{core.ErrSessionNotFound, http.StatusNotFound},
		{core.ErrAlreadyCommitted, http.StatusConflict},
		{core.ErrTooManyImports, http.StatusServiceUnavailable},
		{errors.New("duplicate check failed: boom"), http.StatusBadGateway},
		{errors.New("show api: circuit breaker open"), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("something odd"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(core.MapError(tt.err).Code))
		})
	}
}

func TestParseListState(t *testing.T) {
	q := url.Values{}
	q.Set("q", " tech ")
	q.Add("filter[Show Type]", "in:Original,Partner")
	q.Add("filter[Revenue 2025]", "gte:1000")
	q.Add("filter[Revenue 2025]", "contains:1") // not valid for numbers
	q.Add("filter[Nope]", "eq:x")
	q.Set("sort", "Revenue 2025,Show Name")
	q.Set("dir", "desc")
	q.Set("page_size", "50")
	q.Set("page", "3")

	r := httptest.NewRequest(http.MethodGet, "/api/shows?"+q.Encode(), nil)
	state := parseListState(r)

	assert.Equal(t, "tech", state.Search)
	assert.Len(t, state.Filters, 2)
	assert.Equal(t, []core.SortSpec{
		{Column: "Revenue 2025", Dir: "desc"},
		{Column: "Show Name", Dir: "asc"},
	}, state.Sorts)
	assert.Equal(t, 50, state.PageSize)
	assert.Equal(t, 3, state.Page)

	empty := parseListState(httptest.NewRequest(http.MethodGet, "/api/shows?page=0&page_size=x", nil))
	assert.Equal(t, core.NewListState(), empty)
}
