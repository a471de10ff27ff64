package core

import (
	"sync"
	"time"

	"github.com/JonMunkholm/showdesk/internal/config"
)

// Service provides the core business logic for show imports and show
// management. Persistence belongs to the show API behind api.
type Service struct {
	api     ShowAPI
	cfg     config.ImportConfig
	limiter *ImportLimiter
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*ImportSession

	views map[bool]*ListView // keyed by archived
}

// NewService creates a Service backed by the given show API.
func NewService(api ShowAPI, cfg config.ImportConfig) *Service {
	return &Service{
		api:      api,
		cfg:      cfg,
		limiter:  NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		now:      time.Now,
		sessions: make(map[string]*ImportSession),
		views: map[bool]*ListView{
			false: NewListView(nil),
			true:  NewListView(nil),
		},
	}
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// Limiter exposes the import limiter for shutdown draining.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// Session returns a snapshot of an import session.
func (s *Service) Session(id string) (*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.clone(), nil
}

// SessionCount returns how many import sessions are held.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// DiscardSession drops a session that has not started committing. A
// duplicate check still in flight for it will have its answer ignored.
func (s *Service) DiscardSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if sess.State == SessionCommitting {
		return ErrCommitInProgress
	}
	sess.State = SessionDiscarded
	delete(s.sessions, id)
	return nil
}

// ExpireSessions removes sessions past their TTL and returns how many.
func (s *Service) ExpireSessions() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if sess.expired(now) {
			sess.State = SessionDiscarded
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Service) setState(id string, state SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.State = state
	}
}
