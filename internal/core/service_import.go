package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// AnalyzeOptions tunes one call to AnalyzeImport.
type AnalyzeOptions struct {
	// SessionID lets the caller know the session id before analysis ends,
	// so it can discard the session while the duplicate check is in flight.
	// Empty means a new id is generated.
	SessionID string
}

// AnalyzeImport runs parse, validation and the batch duplicate check, and
// stores the resulting preview as a ready session. Validation failures come
// back as *ValidationErrors and leave no session behind.
func (s *Service) AnalyzeImport(ctx context.Context, fileName string, r io.Reader, opts AnalyzeOptions) (*ImportSession, error) {
	if r == nil {
		return nil, ErrNoFile
	}
	start := time.Now()

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxFileSize {
		return nil, ErrFileTooLarge
	}

	parsed, err := ParseFile(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if s.cfg.MaxRows > 0 && len(parsed.Rows) > s.cfg.MaxRows {
		return nil, fmt.Errorf("%w: %d rows, limit is %d", ErrTooManyRows, len(parsed.Rows), s.cfg.MaxRows)
	}

	id := opts.SessionID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}

	now := s.now()
	sess := &ImportSession{
		ID:             id,
		FileName:       fileName,
		State:          SessionChecking,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.cfg.SessionTTL),
		IgnoredHeaders: parsed.IgnoredHeaders,
		IPAddress:      GetIPAddressFromContext(ctx),
		UserAgent:      GetUserAgentFromContext(ctx),
	}

	s.mu.Lock()
	if _, exists := s.sessions[id]; exists {
		s.mu.Unlock()
		return nil, ErrSessionIDConflict
	}
	s.sessions[id] = sess
	s.mu.Unlock()

	matches, err := s.api.CheckDuplicates(ctx, parsed.Records())
	if err != nil {
		s.dropSession(id, sess)
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}

	rows, err := BuildPreview(parsed.Rows, matches)
	if err != nil {
		s.dropSession(id, sess)
		return nil, err
	}
	inFile := FindInFileDuplicates(parsed.Rows)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The session may have been discarded while the check was in flight.
	if cur, ok := s.sessions[id]; !ok || cur != sess || sess.State == SessionDiscarded {
		slog.Info("import discarded during duplicate check", "session_id", id, "file", fileName)
		return nil, ErrSessionDiscarded
	}

	sess.Rows = rows
	sess.InFileDuplicates = inFile
	sess.Summary = Summarize(rows, inFile)
	sess.State = SessionReady

	slog.Info("import analyzed",
		"session_id", id,
		"file", fileName,
		"rows", sess.Summary.TotalRows,
		"duplicates", sess.Summary.DuplicateRows,
		"ignored_headers", len(sess.IgnoredHeaders),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return sess.clone(), nil
}

// SetAction changes what the commit will do with one row.
func (s *Service) SetAction(id string, row int, action Action) (*ImportSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.State != SessionReady {
		return nil, sessionStateError(sess.State)
	}
	if err := SetRowAction(sess.Rows, row, action); err != nil {
		return nil, err
	}
	sess.Summary = Summarize(sess.Rows, sess.InFileDuplicates)
	return sess.clone(), nil
}

// CommitImport sends the session's records and actions to the show API in
// one batch. A failed call leaves the session ready so the user can retry;
// nothing is retried automatically.
func (s *Service) CommitImport(ctx context.Context, id string) (*CommitResult, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if sess.State != SessionReady {
		state := sess.State
		s.mu.Unlock()
		return nil, sessionStateError(state)
	}
	sess.State = SessionCommitting
	plan := PlanCommit(sess.Rows)
	s.mu.Unlock()

	if err := s.limiter.Acquire(ctx); err != nil {
		s.setState(id, SessionReady)
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()
	res, err := s.api.BulkCreateWithActions(ctx, plan.Records, plan.Actions)
	if err != nil {
		s.setState(id, SessionReady)
		slog.Error("import commit failed", "session_id", id, "error", err)
		return nil, fmt.Errorf("commit failed: %w", err)
	}

	result := newCommitResult(res, plan)

	s.mu.Lock()
	sess.State = SessionCommitted
	sess.Result = result
	s.mu.Unlock()

	slog.Info("import committed",
		"session_id", id,
		"successful", result.Successful,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"ignored", result.Ignored,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

// dropSession removes sess unless id has since been discarded and reused by
// another import.
func (s *Service) dropSession(id string, sess *ImportSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[id] == sess {
		delete(s.sessions, id)
	}
}

func sessionStateError(state SessionState) error {
	switch state {
	case SessionCommitted:
		return ErrAlreadyCommitted
	case SessionCommitting:
		return ErrCommitInProgress
	case SessionDiscarded:
		return ErrSessionDiscarded
	default:
		return ErrSessionNotReady
	}
}
