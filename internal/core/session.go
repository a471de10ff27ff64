package core

import (
	"errors"
	"time"
)

var (
	ErrNoFile            = errors.New("no file provided")
	ErrFileTooLarge      = errors.New("file too large")
	ErrTooManyRows       = errors.New("too many rows")
	ErrInvalidAction     = errors.New("invalid action")
	ErrRowNotFound       = errors.New("row not found in import")
	ErrSessionNotFound   = errors.New("import session not found")
	ErrSessionDiscarded  = errors.New("import session discarded")
	ErrSessionNotReady   = errors.New("import session is not ready")
	ErrCommitInProgress  = errors.New("import commit in progress")
	ErrAlreadyCommitted  = errors.New("import already committed")
	ErrSessionIDConflict = errors.New("import session id already in use")
)

// SessionState is the lifecycle stage of an import session.
type SessionState string

const (
	SessionChecking   SessionState = "checking"
	SessionReady      SessionState = "ready"
	SessionCommitting SessionState = "committing"
	SessionCommitted  SessionState = "committed"
	SessionDiscarded  SessionState = "discarded"
)

// ImportSession holds one run of the import pipeline, from the parsed file
// through the user's per-row decisions to the commit result.
type ImportSession struct {
	ID               string            `json:"id"`
	FileName         string            `json:"file_name"`
	State            SessionState      `json:"state"`
	CreatedAt        time.Time         `json:"created_at"`
	ExpiresAt        time.Time         `json:"expires_at"`
	IgnoredHeaders   []string          `json:"ignored_headers,omitempty"`
	Rows             []PreviewRow      `json:"rows"`
	InFileDuplicates []DuplicateInFile `json:"in_file_duplicates,omitempty"`
	Summary          PreviewSummary    `json:"summary"`
	Result           *CommitResult     `json:"result,omitempty"`

	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

func (sess *ImportSession) clone() *ImportSession {
	c := *sess
	c.IgnoredHeaders = append([]string(nil), sess.IgnoredHeaders...)
	c.Rows = append([]PreviewRow(nil), sess.Rows...)
	c.InFileDuplicates = append([]DuplicateInFile(nil), sess.InFileDuplicates...)
	if sess.Result != nil {
		r := *sess.Result
		c.Result = &r
	}
	return &c
}

func (sess *ImportSession) expired(now time.Time) bool {
	return sess.State != SessionCommitting && now.After(sess.ExpiresAt)
}
