// Package services provides session lifecycle orchestration
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/manager"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/types"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/security"
)

// SessionMetrics is the reporting view of one session plus pipeline state.
type SessionMetrics struct {
	SessionID         string        `json:"sessionId"`
	UserID            string        `json:"userId,omitempty"`
	StartTime         time.Time     `json:"startTime"`
	LastActivityTime  time.Time     `json:"lastActivityTime"`
	EventCount        int           `json:"eventCount"`
	Ended             bool          `json:"ended"`
	QueueSize         int           `json:"queueSize"`
	BatchCount        int64         `json:"batchCount"`
	DeliveredCount    int64         `json:"deliveredCount"`
	AvgProcessingTime time.Duration `json:"avgProcessingTime"`
}

// SessionService manages tracked session lifecycle.
type SessionService struct {
	cache    *manager.Manager
	delivery *DeliveryService
	logger   *logging.ChanneledLogger
}

// NewSessionService creates a new session service with its dependencies.
func NewSessionService(cache *manager.Manager, delivery *DeliveryService, logger *logging.ChanneledLogger) *SessionService {
	return &SessionService{
		cache:    cache,
		delivery: delivery,
		logger:   logger,
	}
}

// Start creates a new session and returns its id.
func (s *SessionService) Start(userID string) *types.SessionData {
	now := time.Now().UTC()
	session := &types.SessionData{
		SessionID:        security.GenerateSessionID(),
		UserID:           userID,
		StartTime:        now,
		LastActivityTime: now,
	}
	s.cache.SetSession(session)

	s.logger.Session().Info("Session started",
		"sessionId", session.SessionID,
		"userId", logging.SanitizeUserID(userID))
	return session
}

// Get retrieves a session by id.
func (s *SessionService) Get(sessionID string) (*types.SessionData, bool) {
	return s.cache.GetSession(sessionID)
}

// Touch records event activity against a session. Ended sessions reject
// further activity.
func (s *SessionService) Touch(sessionID string) error {
	session, found := s.cache.GetSession(sessionID)
	if !found {
		return fmt.Errorf("session %s not found", sessionID)
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()

	if session.Ended {
		return fmt.Errorf("session %s has ended", sessionID)
	}

	session.EventCount++
	session.LastActivityTime = time.Now().UTC()
	return nil
}

// End marks a session as ended and drains the delivery queue best-effort.
// Draining failures are logged, never surfaced; the session still ends.
func (s *SessionService) End(ctx context.Context, sessionID string) error {
	session, found := s.cache.GetSession(sessionID)
	if !found {
		return fmt.Errorf("session %s not found", sessionID)
	}

	session.Mu.Lock()
	if session.Ended {
		session.Mu.Unlock()
		return fmt.Errorf("session %s has already ended", sessionID)
	}
	session.Ended = true
	session.EndTime = time.Now().UTC()
	eventCount := session.EventCount
	duration := session.EndTime.Sub(session.StartTime)
	session.Mu.Unlock()

	drained := s.delivery.Drain(ctx)

	s.logger.Session().Info("Session ended",
		"sessionId", sessionID,
		"events", eventCount,
		"duration", duration,
		"queueDrained", drained)
	return nil
}

// Metrics returns the reporting view of a session with current pipeline counters.
func (s *SessionService) Metrics(sessionID string) (*SessionMetrics, error) {
	session, found := s.cache.GetSession(sessionID)
	if !found {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}

	pipeline := s.delivery.Metrics()

	session.Mu.RLock()
	defer session.Mu.RUnlock()

	return &SessionMetrics{
		SessionID:         session.SessionID,
		UserID:            session.UserID,
		StartTime:         session.StartTime,
		LastActivityTime:  session.LastActivityTime,
		EventCount:        session.EventCount,
		Ended:             session.Ended,
		QueueSize:         pipeline.QueueSize,
		BatchCount:        pipeline.BatchCount,
		DeliveredCount:    pipeline.Delivered,
		AvgProcessingTime: pipeline.AvgProcessingTime,
	}, nil
}
