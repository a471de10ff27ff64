package core

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/showdesk/internal/config"
)

// fakeAPI is an in-memory show API. Titles match case-insensitively.
type fakeAPI struct {
	mu       sync.Mutex
	active   []ShowRecord
	archived []ShowRecord

	checkCalls  int
	checkGate   chan struct{} // when set, CheckDuplicates waits on it
	waiting     chan struct{} // signalled when CheckDuplicates starts waiting
	checkErr    error
	commitErr   error
	commitCalls int
	lastActions []RowAction
	failTitles  map[string]bool // BulkCreateWithActions fails these rows
}

func (f *fakeAPI) find(title string) (*ShowRecord, bool) {
	for i := range f.active {
		if strings.EqualFold(f.active[i].Title, title) {
			rec := f.active[i]
			return &rec, false
		}
	}
	for i := range f.archived {
		if strings.EqualFold(f.archived[i].Title, title) {
			rec := f.archived[i]
			rec.Archived = true
			return &rec, true
		}
	}
	return nil, false
}

func (f *fakeAPI) ListShows(ctx context.Context) ([]ShowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ShowRecord(nil), f.active...), nil
}

func (f *fakeAPI) ListArchivedShows(ctx context.Context) ([]ShowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ShowRecord(nil), f.archived...), nil
}

func (f *fakeAPI) CreateShow(ctx context.Context, rec ShowRecord) (*ShowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = uuid.NewString()
	f.active = append(f.active, rec)
	return &rec, nil
}

func (f *fakeAPI) UpdateShow(ctx context.Context, id string, rec ShowRecord) (*ShowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.active {
		if f.active[i].ID == id {
			f.active[i] = rec
			return &rec, nil
		}
	}
	return nil, errors.New("show api: status 404: not found")
}

func (f *fakeAPI) move(id string, from, to *[]ShowRecord) error {
	for i, rec := range *from {
		if rec.ID == id {
			*from = append((*from)[:i], (*from)[i+1:]...)
			*to = append(*to, rec)
			return nil
		}
	}
	return errors.New("show api: status 404: not found")
}

func (f *fakeAPI) DeleteShow(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var trash []ShowRecord
	if err := f.move(id, &f.active, &trash); err == nil {
		return nil
	}
	return f.move(id, &f.archived, &trash)
}

func (f *fakeAPI) ArchiveShow(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.move(id, &f.active, &f.archived)
}

func (f *fakeAPI) UnarchiveShow(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.move(id, &f.archived, &f.active)
}

func (f *fakeAPI) bulk(ids []string, op func(string) error) *BulkResult {
	res := &BulkResult{}
	for _, id := range ids {
		if err := op(id); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, id+": "+err.Error())
			continue
		}
		res.Successful++
	}
	return res
}

func (f *fakeAPI) BulkArchive(ctx context.Context, ids []string) (*BulkResult, error) {
	return f.bulk(ids, func(id string) error { return f.ArchiveShow(ctx, id) }), nil
}

func (f *fakeAPI) BulkDelete(ctx context.Context, ids []string) (*BulkResult, error) {
	return f.bulk(ids, func(id string) error { return f.DeleteShow(ctx, id) }), nil
}

func (f *fakeAPI) CheckSingleDuplicate(ctx context.Context, rec ShowRecord) (*DuplicateMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkCalls++
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	existing, archived := f.find(rec.Title)
	if existing == nil {
		return &DuplicateMatch{}, nil
	}
	return &DuplicateMatch{Exists: true, ExistingShow: existing, IsArchived: archived}, nil
}

func (f *fakeAPI) CheckDuplicates(ctx context.Context, recs []ShowRecord) ([]DuplicateMatch, error) {
	f.mu.Lock()
	gate, waiting := f.checkGate, f.waiting
	f.mu.Unlock()
	if gate != nil {
		if waiting != nil {
			waiting <- struct{}{}
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkCalls++
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	out := make([]DuplicateMatch, len(recs))
	for i, rec := range recs {
		if existing, archived := f.find(rec.Title); existing != nil {
			out[i] = DuplicateMatch{Exists: true, ExistingShow: existing, IsArchived: archived}
		}
	}
	return out, nil
}

func (f *fakeAPI) BulkCreateWithActions(ctx context.Context, recs []ShowRecord, actions []RowAction) (*BulkResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commitCalls++
	f.lastActions = append([]RowAction(nil), actions...)
	if f.commitErr != nil {
		return nil, f.commitErr
	}

	res := &BulkResult{}
	for i, rec := range recs {
		switch actions[i].Action {
		case ActionSkip:
			continue
		case ActionCreate, ActionUpdate:
			if f.failTitles[rec.Title] {
				res.Failed++
				res.Errors = append(res.Errors, rec.Title+": rejected")
				continue
			}
			res.Successful++
		}
	}
	return res, nil
}

func testImportConfig() config.ImportConfig {
	return config.ImportConfig{
		MaxFileSize:   1 << 20,
		MaxRows:       100,
		MaxConcurrent: 2,
		MaxWaitTime:   time.Second,
		SessionTTL:    time.Minute,
	}
}

func analyze(t *testing.T, svc *Service, csv string) *ImportSession {
	t.Helper()
	sess, err := svc.AnalyzeImport(context.Background(), "shows.csv", strings.NewReader(csv), AnalyzeOptions{})
	require.NoError(t, err)
	return sess
}

func TestAnalyzeImport_NoDuplicates(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, testImportConfig())

	sess := analyze(t, svc, "Show Name,Show Type\nAlpha,original\nBeta,partner\n")

	assert.Equal(t, SessionReady, sess.State)
	require.Len(t, sess.Rows, 2)
	for _, r := range sess.Rows {
		assert.Equal(t, ActionCreate, r.Action)
		assert.False(t, r.Duplicate)
	}
	assert.Equal(t, "Original", sess.Rows[0].Record.ShowType)
	assert.Equal(t, 2, sess.Summary.CreateRows)
	assert.Equal(t, 1, svc.SessionCount())
	assert.Equal(t, 1, api.checkCalls)
}

func TestAnalyzeImport_ArchivedMatch(t *testing.T) {
	api := &fakeAPI{archived: []ShowRecord{{ID: "old-1", Title: "Beta", IsActive: true}}}
	svc := NewService(api, testImportConfig())

	sess := analyze(t, svc, "Show Name\nAlpha\nbeta\n")

	require.Len(t, sess.Rows, 2)
	beta := sess.Rows[1]
	assert.True(t, beta.Duplicate)
	assert.True(t, beta.IsArchived)
	assert.Equal(t, ActionUpdate, beta.Action)
	require.NotNil(t, beta.Existing)
	assert.Equal(t, "old-1", beta.Existing.ID)
	assert.Equal(t, 1, sess.Summary.ArchivedMatches)
}

func TestAnalyzeImport_DuplicateCheckIsIdempotent(t *testing.T) {
	api := &fakeAPI{active: []ShowRecord{{ID: "1", Title: "Alpha"}}}
	svc := NewService(api, testImportConfig())
	csv := "Show Name\nAlpha\nBeta\n"

	first := analyze(t, svc, csv)
	second := analyze(t, svc, csv)

	require.Len(t, second.Rows, len(first.Rows))
	for i := range first.Rows {
		assert.Equal(t, first.Rows[i].Duplicate, second.Rows[i].Duplicate)
		assert.Equal(t, first.Rows[i].Action, second.Rows[i].Action)
	}
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAnalyzeImport_ValidationLeavesNoSession(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, testImportConfig())

	_, err := svc.AnalyzeImport(context.Background(), "bad.csv",
		strings.NewReader("Show Name,Show Type\nAlpha,Original\n,Branded\nGamma,Licensed\n"), AnalyzeOptions{})

	var verr *ValidationErrors
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 2)
	assert.True(t, strings.HasPrefix(verr.Errors[0], "Row 2:"))
	assert.True(t, strings.HasPrefix(verr.Errors[1], "Row 3:"))
	assert.Equal(t, 0, svc.SessionCount())
	assert.Equal(t, 0, api.checkCalls, "invalid files never reach the duplicate check")
}

func TestAnalyzeImport_Limits(t *testing.T) {
	cfg := testImportConfig()
	cfg.MaxFileSize = 32
	cfg.MaxRows = 2
	svc := NewService(&fakeAPI{}, cfg)
	ctx := context.Background()

	_, err := svc.AnalyzeImport(ctx, "big.csv", strings.NewReader("Show Name\n"+strings.Repeat("x", 64)+"\n"), AnalyzeOptions{})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = svc.AnalyzeImport(ctx, "rows.csv", strings.NewReader("Show Name\nA\nB\nC\n"), AnalyzeOptions{})
	assert.ErrorIs(t, err, ErrTooManyRows)

	_, err = svc.AnalyzeImport(ctx, "none.csv", nil, AnalyzeOptions{})
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = svc.AnalyzeImport(ctx, "id.csv", strings.NewReader("Show Name\nA\n"), AnalyzeOptions{SessionID: "not-a-uuid"})
	require.Error(t, err)
	assert.Equal(t, "VAL007", MapError(err).Code)
}

func TestAnalyzeImport_DuplicateCheckFailure(t *testing.T) {
	api := &fakeAPI{checkErr: errors.New("show api: circuit breaker open")}
	svc := NewService(api, testImportConfig())

	_, err := svc.AnalyzeImport(context.Background(), "a.csv", strings.NewReader("Show Name\nA\n"), AnalyzeOptions{})
	require.Error(t, err)
	assert.Equal(t, "DUP001", MapError(err).Code)
	assert.Equal(t, 0, svc.SessionCount())
}

func TestAnalyzeImport_DiscardDuringCheck(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{checkGate: gate}
	svc := NewService(api, testImportConfig())
	id := uuid.NewString()

	errc := make(chan error, 1)
	go func() {
		_, err := svc.AnalyzeImport(context.Background(), "a.csv",
			strings.NewReader("Show Name\nAlpha\n"), AnalyzeOptions{SessionID: id})
		errc <- err
	}()

	require.Eventually(t, func() bool {
		sess, err := svc.Session(id)
		return err == nil && sess.State == SessionChecking
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, svc.DiscardSession(id))
	close(gate)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrSessionDiscarded)
	case <-time.After(2 * time.Second):
		t.Fatal("AnalyzeImport did not return")
	}

	_, err := svc.Session(id)
	assert.ErrorIs(t, err, ErrSessionNotFound, "a late duplicate answer must not revive the session")
	assert.Equal(t, 0, svc.SessionCount())
}

func TestAnalyzeImport_SessionIDConflict(t *testing.T) {
	svc := NewService(&fakeAPI{}, testImportConfig())
	id := uuid.NewString()
	ctx := context.Background()

	_, err := svc.AnalyzeImport(ctx, "a.csv", strings.NewReader("Show Name\nA\n"), AnalyzeOptions{SessionID: id})
	require.NoError(t, err)
	_, err = svc.AnalyzeImport(ctx, "b.csv", strings.NewReader("Show Name\nB\n"), AnalyzeOptions{SessionID: id})
	assert.ErrorIs(t, err, ErrSessionIDConflict)
}

func TestCommitImport_PartialSuccess(t *testing.T) {
	api := &fakeAPI{failTitles: map[string]bool{"Beta": true}}
	svc := NewService(api, testImportConfig())
	sess := analyze(t, svc, "Show Name\nAlpha\nBeta\n")

	res, err := svc.CommitImport(context.Background(), sess.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Successful)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, "Successfully imported 1 show(s), 1 failed", res.Message)
	assert.True(t, res.Refresh)
	assert.Len(t, res.Errors, 1)

	after, err := svc.Session(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, SessionCommitted, after.State)
	require.NotNil(t, after.Result)
	assert.Equal(t, 1, after.Result.Failed)
}

func TestCommitImport_ActionsAndSkips(t *testing.T) {
	api := &fakeAPI{active: []ShowRecord{{ID: "1", Title: "Alpha"}}}
	svc := NewService(api, testImportConfig())
	sess := analyze(t, svc, "Show Name\nAlpha\nBeta\nGamma\n")

	_, err := svc.SetAction(sess.ID, 2, ActionUpdate)
	assert.ErrorIs(t, err, ErrUpdateWithoutMatch)

	updated, err := svc.SetAction(sess.ID, 3, ActionSkip)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Summary.SkipRows)

	res, err := svc.CommitImport(context.Background(), sess.ID)
	require.NoError(t, err)

	assert.Equal(t, []RowAction{
		{Title: "Alpha", Action: ActionUpdate},
		{Title: "Beta", Action: ActionCreate},
		{Title: "Gamma", Action: ActionSkip},
	}, api.lastActions)
	assert.Equal(t, 2, res.Successful)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, "Successfully imported 2 show(s)", res.Message)
}

func TestCommitImport_AllSkipped(t *testing.T) {
	svc := NewService(&fakeAPI{}, testImportConfig())
	sess := analyze(t, svc, "Show Name\nAlpha\n")
	_, err := svc.SetAction(sess.ID, 1, ActionSkip)
	require.NoError(t, err)

	res, err := svc.CommitImport(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "No shows were imported", res.Message)
	assert.False(t, res.Refresh)
}

func TestCommitImport_Twice(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, testImportConfig())
	sess := analyze(t, svc, "Show Name\nAlpha\n")

	_, err := svc.CommitImport(context.Background(), sess.ID)
	require.NoError(t, err)

	_, err = svc.CommitImport(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrAlreadyCommitted)
	assert.Equal(t, 1, api.commitCalls)

	_, err = svc.SetAction(sess.ID, 1, ActionSkip)
	assert.ErrorIs(t, err, ErrAlreadyCommitted)
}

func TestCommitImport_FailureLeavesSessionReady(t *testing.T) {
	api := &fakeAPI{commitErr: errors.New("show api: status 502: bad gateway")}
	svc := NewService(api, testImportConfig())
	sess := analyze(t, svc, "Show Name\nAlpha\n")

	_, err := svc.CommitImport(context.Background(), sess.ID)
	require.Error(t, err)
	assert.Equal(t, "API001", MapError(err).Code)

	after, err := svc.Session(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, SessionReady, after.State)

	api.mu.Lock()
	api.commitErr = nil
	api.mu.Unlock()
	res, err := svc.CommitImport(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Successful)
	assert.Equal(t, 2, api.commitCalls, "retry is the caller's choice, never automatic")
}

func TestCommitImport_UnknownSession(t *testing.T) {
	svc := NewService(&fakeAPI{}, testImportConfig())
	_, err := svc.CommitImport(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, svc.DiscardSession("missing"), ErrSessionNotFound)
}

func TestExpireSessions(t *testing.T) {
	svc := NewService(&fakeAPI{}, testImportConfig())
	sess := analyze(t, svc, "Show Name\nAlpha\n")

	assert.Equal(t, 0, svc.ExpireSessions())

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Equal(t, 1, svc.ExpireSessions())
	_, err := svc.Session(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionSnapshotsAreCopies(t *testing.T) {
	svc := NewService(&fakeAPI{}, testImportConfig())
	sess := analyze(t, svc, "Show Name\nAlpha\n")

	sess.Rows[0].Action = ActionSkip
	again, err := svc.Session(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, again.Rows[0].Action)
}

func TestCheckTitle(t *testing.T) {
	api := &fakeAPI{
		active:   []ShowRecord{{ID: "a1", Title: "Alpha"}},
		archived: []ShowRecord{{ID: "b1", Title: "Beta"}},
	}
	svc := NewService(api, testImportConfig())
	ctx := context.Background()

	res, err := svc.CheckTitle(ctx, "  ", "")
	require.NoError(t, err)
	assert.False(t, res.IsDuplicate)
	assert.Equal(t, 0, api.checkCalls, "blank titles are not checked")

	res, err = svc.CheckTitle(ctx, "alpha", "")
	require.NoError(t, err)
	assert.True(t, res.IsDuplicate)
	assert.Equal(t, SuggestEditExisting, res.Suggestion)

	res, err = svc.CheckTitle(ctx, "Beta", "")
	require.NoError(t, err)
	assert.True(t, res.IsArchived)
	assert.Equal(t, SuggestUnarchiveAndEdit, res.Suggestion)

	res, err = svc.CheckTitle(ctx, "Alpha", "a1")
	require.NoError(t, err)
	assert.False(t, res.IsDuplicate, "the show being edited is not its own duplicate")

	api.checkErr = errors.New("connection refused")
	_, err = svc.CheckTitle(ctx, "Gamma", "")
	assert.Equal(t, "DUP001", MapError(err).Code)
}

func TestShowMutations(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, testImportConfig())
	ctx := context.Background()

	created, err := svc.CreateShow(ctx, ShowRecord{ID: "ignored", Title: " Alpha ", ShowType: "partner", IsActive: true})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", created.ID)
	assert.Equal(t, "Alpha", created.Title)
	assert.Equal(t, "Partner", created.ShowType)

	bad := 120.0
	_, err = svc.CreateShow(ctx, ShowRecord{Title: "Bad", MerchandisePercent: &bad})
	var verr *ValidationErrors
	assert.ErrorAs(t, err, &verr)

	updated, err := svc.UpdateShow(ctx, created.ID, ShowRecord{Title: "Alpha Two", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	_, err = svc.UpdateShow(ctx, " ", ShowRecord{Title: "x"})
	assert.ErrorIs(t, err, ErrNoIDs)

	require.NoError(t, svc.ArchiveShow(ctx, created.ID))
	archived, err := svc.ListShows(ctx, true)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.True(t, archived[0].Archived)

	require.NoError(t, svc.UnarchiveShow(ctx, created.ID))
	require.NoError(t, svc.DeleteShow(ctx, created.ID))

	err = svc.DeleteShow(ctx, created.ID)
	assert.Equal(t, "API004", MapError(err).Code)
}

func TestBulkOperations(t *testing.T) {
	api := &fakeAPI{active: []ShowRecord{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}}}
	svc := NewService(api, testImportConfig())
	ctx := context.Background()

	_, err := svc.BulkArchive(ctx, []string{" ", ""})
	assert.ErrorIs(t, err, ErrNoIDs)

	res, err := svc.BulkArchive(ctx, []string{"1", "1", " 2 ", "9"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Successful)
	assert.Equal(t, 1, res.Failed)

	res, err = svc.BulkDelete(ctx, []string{"1"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Successful)
}

func TestQueryAndExportShows(t *testing.T) {
	api := &fakeAPI{active: []ShowRecord{
		{ID: "1", Title: "Charlie", ShowType: "Original", Revenue2024: ptr(10)},
		{ID: "2", Title: "Alpha", ShowType: "Branded", Revenue2024: ptr(30)},
		{ID: "3", Title: "Bravo", ShowType: "Original"},
	}}
	svc := NewService(api, testImportConfig())
	ctx := context.Background()

	state := Reduce(NewListState(), ListAction{Kind: ListAddFilter,
		Filter: ColumnFilter{Column: "Show Type", Operator: OpEquals, Value: "original"}})
	state = Reduce(state, ListAction{Kind: ListToggleSort, Column: "Show Name"})

	page, err := svc.QueryShows(ctx, false, state)
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, "Bravo", page.Rows[0].Title)
	assert.Equal(t, "Charlie", page.Rows[1].Title)

	state = Reduce(state, ListAction{Kind: ListSetPageSize, PageSize: 1})
	var sb strings.Builder
	n, err := svc.ExportShows(ctx, &sb, false, state)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "export ignores paging")
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "Bravo,"))
}

func TestRevenueSummaryFromAPI(t *testing.T) {
	api := &fakeAPI{
		active:   []ShowRecord{{Title: "A", ShowType: "Original", IsActive: true, Revenue2023: ptr(100)}},
		archived: []ShowRecord{{Title: "B", IsActive: true, Revenue2023: ptr(50), Revenue2025: ptr(5)}},
	}
	svc := NewService(api, testImportConfig())

	sum, err := svc.RevenueSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalShows)
	assert.Equal(t, 1, sum.ActiveShows)
	assert.Equal(t, 1, sum.ArchivedShows)
	assert.InDelta(t, 150, sum.ByYear[0].Total, 1e-9)
}

func TestQueryShows_ReusesPageUntilShowsChange(t *testing.T) {
	api := &fakeAPI{active: []ShowRecord{
		{ID: "1", Title: "Alpha"},
		{ID: "2", Title: "Bravo"},
	}}
	svc := NewService(api, testImportConfig())
	ctx := context.Background()
	state := NewListState()

	first, err := svc.QueryShows(ctx, false, state)
	require.NoError(t, err)
	second, err := svc.QueryShows(ctx, false, state)
	require.NoError(t, err)
	assert.Same(t, &first.Rows[0], &second.Rows[0], "unchanged shows reuse the cached page")

	_, err = svc.CreateShow(ctx, ShowRecord{Title: "Charlie"})
	require.NoError(t, err)
	third, err := svc.QueryShows(ctx, false, state)
	require.NoError(t, err)
	assert.Equal(t, 3, third.Total)

	archived, err := svc.QueryShows(ctx, true, state)
	require.NoError(t, err)
	assert.Zero(t, archived.Total, "archived lists have their own view")
}

func TestCreateShow_JSONBodyWithoutActiveFlag(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, testImportConfig())

	var rec ShowRecord
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Fresh Show"}`), &rec))
	created, err := svc.CreateShow(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, created.IsActive, "a show created without is_active is active")

	require.NoError(t, json.Unmarshal([]byte(`{"title":"Paused","is_active":false}`), &rec))
	created, err = svc.CreateShow(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, created.IsActive)
}

func TestAnalyzeImport_FailedCheckKeepsReusedSessionID(t *testing.T) {
	gate := make(chan struct{})
	waiting := make(chan struct{}, 1)
	api := &fakeAPI{checkGate: gate, waiting: waiting}
	svc := NewService(api, testImportConfig())
	id := uuid.NewString()
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() {
		_, err := svc.AnalyzeImport(ctx, "old.csv",
			strings.NewReader("Show Name\nAlpha\n"), AnalyzeOptions{SessionID: id})
		errc <- err
	}()

	select {
	case <-waiting:
	case <-time.After(2 * time.Second):
		t.Fatal("duplicate check never started")
	}
	require.NoError(t, svc.DiscardSession(id))

	api.mu.Lock()
	api.checkGate = nil
	api.mu.Unlock()
	fresh, err := svc.AnalyzeImport(ctx, "new.csv",
		strings.NewReader("Show Name\nBeta\n"), AnalyzeOptions{SessionID: id})
	require.NoError(t, err)

	api.mu.Lock()
	api.checkErr = errors.New("connection refused")
	api.mu.Unlock()
	close(gate)

	select {
	case err := <-errc:
		assert.Equal(t, "DUP001", MapError(err).Code)
	case <-time.After(2 * time.Second):
		t.Fatal("AnalyzeImport did not return")
	}

	sess, err := svc.Session(id)
	require.NoError(t, err, "the failed check must not drop the newer session")
	assert.Equal(t, SessionReady, sess.State)
	assert.Equal(t, fresh.FileName, sess.FileName)
}
