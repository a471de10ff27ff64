package core

// scheduler.go runs background maintenance for the service.
//
// The session janitor removes import previews that were never committed or
// discarded, so abandoned dialogs do not hold parsed files in memory.

import (
	"context"
	"log/slog"
	"time"
)

// StartSessionJanitor removes expired import sessions every interval until
// ctx is cancelled. It blocks; run it in its own goroutine.
func (s *Service) StartSessionJanitor(ctx context.Context, interval time.Duration) {
	slog.Info("session janitor started", "interval", interval, "ttl", s.cfg.SessionTTL)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			if n := s.ExpireSessions(); n > 0 {
				slog.Info("expired import sessions", "removed", n, "remaining", s.SessionCount())
			}
		}
	}
}
