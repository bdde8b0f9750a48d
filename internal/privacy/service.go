package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/tomiwa-dev/naijapulse/internal/database"
)

// Service handles the privacy obligations of running anonymous sessions:
// IP anonymization at the storage boundary, on-demand erasure, and the
// retention policy the cleanup job enforces.
type Service struct {
	repo      *database.Repository
	retention time.Duration
}

// NewService creates a privacy service.
func NewService(repo *database.Repository, retention time.Duration) *Service {
	return &Service{repo: repo, retention: retention}
}

// AnonymizeIP hashes a client IP before it touches storage. Sessions only
// need a stable per-client token, never the address itself.
func (s *Service) AnonymizeIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:16])
}

// EraseSession removes a session and everything keyed to it: preferences,
// filter state and the recently-viewed list.
func (s *Service) EraseSession(sessionID string) error {
	if err := s.repo.DeleteSession(sessionID); err != nil {
		return err
	}

	slog.Info("Session data erased on request", "session_id", sessionID)
	return nil
}

// CleanupExpired drops sessions past the retention window. Returns the
// number of sessions removed.
func (s *Service) CleanupExpired() (int64, error) {
	removed, err := s.repo.DeleteStaleSessions(s.retention)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		slog.Info("Retention cleanup completed", "sessions_removed", removed)
	}
	return removed, nil
}

// GetDataRetentionInfo describes the retention policy for the policy
// endpoint.
func (s *Service) GetDataRetentionInfo() map[string]interface{} {
	return map[string]interface{}{
		"session_retention_days": int(s.retention.Hours() / 24),
		"stored_per_session":     []string{"theme", "default_period", "filters", "recently_viewed"},
		"ip_handling":            "hashed with SHA-256 before storage",
		"erasure":                "DELETE /api/v1/session removes all session data immediately",
		"accounts":               "none; sessions are anonymous",
	}
}
