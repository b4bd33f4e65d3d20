// Package manager provides centralized cache operations by delegating to
// specialized stores.
package manager

import (
	"github.com/pulsekit/pulse-go/internal/domain/entities/content"
	"github.com/pulsekit/pulse-go/internal/domain/entities/engagement"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/stores"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/types"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/pkg/config"
)

// Manager provides centralized cache operations by delegating to specialized stores.
type Manager struct {
	sessionsStore        *stores.SessionsStore
	scoresStore          *stores.ScoresStore
	recommendationsStore *stores.RecommendationsStore
	logger               *logging.ChanneledLogger
}

// NewManager creates a cache manager wired to all stores
func NewManager(logger *logging.ChanneledLogger) *Manager {
	if logger != nil {
		logger.Cache().Info("Initializing cache manager", "stores", []string{"sessions", "scores", "recommendations"})
	}

	return &Manager{
		sessionsStore:        stores.NewSessionsStore(logger),
		scoresStore:          stores.NewScoresStore(config.HistoryMaxPoints, logger),
		recommendationsStore: stores.NewRecommendationsStore(logger),
		logger:               logger,
	}
}

// Session operations

func (m *Manager) SetSession(session *types.SessionData) {
	m.sessionsStore.Set(session)
}

func (m *Manager) GetSession(sessionID string) (*types.SessionData, bool) {
	return m.sessionsStore.Get(sessionID)
}

func (m *Manager) DeleteSession(sessionID string) {
	m.sessionsStore.Delete(sessionID)
}

func (m *Manager) SessionCount() int {
	return m.sessionsStore.Count()
}

// Score and segment operations

func (m *Manager) GetScore(userID string) (*engagement.Score, bool) {
	return m.scoresStore.GetScore(userID, config.ScoreCacheTTL)
}

func (m *Manager) SetScore(userID string, score *engagement.Score) {
	m.scoresStore.SetScore(userID, score)
}

func (m *Manager) GetSegment(userID string) (*engagement.Segment, bool) {
	return m.scoresStore.GetSegment(userID, config.SegmentCacheTTL)
}

func (m *Manager) SetSegment(userID string, segment *engagement.Segment) {
	m.scoresStore.SetSegment(userID, segment)
}

func (m *Manager) GetScoreHistory(userID string) []engagement.HistoryPoint {
	return m.scoresStore.GetHistory(userID)
}

// InvalidateUser drops the cached score, segment, and recommendations for a
// user. Score and segment caches always invalidate together.
func (m *Manager) InvalidateUser(userID string) {
	m.scoresStore.Invalidate(userID)
	m.recommendationsStore.InvalidateUser(userID)
}

// Recommendation operations

func (m *Manager) GetRecommendations(userID, requestContext string, limit int) ([]content.Recommendation, bool) {
	key := m.recommendationsStore.Key(userID, requestContext, limit)
	return m.recommendationsStore.Get(key, config.RecommendationCacheTTL)
}

func (m *Manager) SetRecommendations(userID, requestContext string, limit int, recs []content.Recommendation) {
	key := m.recommendationsStore.Key(userID, requestContext, limit)
	m.recommendationsStore.Set(key, recs)
}

// PurgeExpired sweeps expired entries from all stores and returns the total
// number removed. Lazy TTL checks on read remain authoritative; this is
// hygiene only.
func (m *Manager) PurgeExpired() int {
	removed := m.sessionsStore.PurgeExpired(config.SessionTTL)
	removed += m.scoresStore.PurgeExpired(config.ScoreCacheTTL, config.SegmentCacheTTL)
	removed += m.recommendationsStore.PurgeExpired(config.RecommendationCacheTTL)
	return removed
}

// Stats returns cache population counts
func (m *Manager) Stats() map[string]any {
	return map[string]any{
		"sessions": m.sessionsStore.Count(),
	}
}
