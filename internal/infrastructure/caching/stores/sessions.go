// Package stores provides concrete cache store implementations
package stores

import (
	"sync"
	"time"

	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/types"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
)

// SessionsStore implements session state caching operations
type SessionsStore struct {
	sessions map[string]*types.SessionData
	mu       sync.RWMutex
	logger   *logging.ChanneledLogger
}

// NewSessionsStore creates a new sessions cache store
func NewSessionsStore(logger *logging.ChanneledLogger) *SessionsStore {
	if logger != nil {
		logger.Cache().Info("Initializing sessions cache store")
	}
	return &SessionsStore{
		sessions: make(map[string]*types.SessionData),
		logger:   logger,
	}
}

// Set stores session data
func (ss *SessionsStore) Set(session *types.SessionData) {
	start := time.Now()
	ss.mu.Lock()
	ss.sessions[session.SessionID] = session
	ss.mu.Unlock()

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "set", "type", "session", "sessionId", session.SessionID, "duration", time.Since(start))
	}
}

// Get retrieves session data by id
func (ss *SessionsStore) Get(sessionID string) (*types.SessionData, bool) {
	start := time.Now()
	ss.mu.RLock()
	session, found := ss.sessions[sessionID]
	ss.mu.RUnlock()

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "get", "type", "session", "sessionId", sessionID, "hit", found, "duration", time.Since(start))
	}
	return session, found
}

// Delete removes session data
func (ss *SessionsStore) Delete(sessionID string) {
	ss.mu.Lock()
	delete(ss.sessions, sessionID)
	ss.mu.Unlock()

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "delete", "type", "session", "sessionId", sessionID)
	}
}

// Count returns the number of tracked sessions
func (ss *SessionsStore) Count() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// PurgeExpired removes sessions idle beyond the TTL and returns the count removed
func (ss *SessionsStore) PurgeExpired(ttl time.Duration) int {
	start := time.Now()
	cutoff := time.Now().UTC().Add(-ttl)

	ss.mu.Lock()
	defer ss.mu.Unlock()

	removed := 0
	for id, session := range ss.sessions {
		session.Mu.RLock()
		expired := session.LastActivityTime.Before(cutoff)
		session.Mu.RUnlock()
		if expired {
			delete(ss.sessions, id)
			removed++
		}
	}

	if removed > 0 && ss.logger != nil {
		ss.logger.Cache().Info("Expired sessions purged", "removed", removed, "duration", time.Since(start))
	}
	return removed
}
