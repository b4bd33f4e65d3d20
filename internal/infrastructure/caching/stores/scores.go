// Package stores provides concrete cache store implementations
package stores

import (
	"sync"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/entities/engagement"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/types"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
)

// ScoresStore implements engagement score and segment caching, plus the
// per-user score history series used by trend analysis.
type ScoresStore struct {
	scores     map[string]*types.ScoreEntry
	segments   map[string]*types.SegmentEntry
	history    map[string][]engagement.HistoryPoint
	maxHistory int
	mu         sync.RWMutex
	logger     *logging.ChanneledLogger
}

// NewScoresStore creates a new scores cache store
func NewScoresStore(maxHistory int, logger *logging.ChanneledLogger) *ScoresStore {
	if logger != nil {
		logger.Cache().Info("Initializing scores cache store", "maxHistory", maxHistory)
	}
	return &ScoresStore{
		scores:     make(map[string]*types.ScoreEntry),
		segments:   make(map[string]*types.SegmentEntry),
		history:    make(map[string][]engagement.HistoryPoint),
		maxHistory: maxHistory,
		logger:     logger,
	}
}

// GetScore retrieves a cached score if it is younger than the TTL
func (ss *ScoresStore) GetScore(userID string, ttl time.Duration) (*engagement.Score, bool) {
	start := time.Now()
	ss.mu.RLock()
	entry, found := ss.scores[userID]
	ss.mu.RUnlock()

	if found && time.Since(entry.StoredAt) > ttl {
		found = false
	}

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "get", "type", "score", "userId", logging.SanitizeUserID(userID), "hit", found, "duration", time.Since(start))
	}
	if !found {
		return nil, false
	}
	return entry.Score, true
}

// SetScore caches a score and appends it to the user's history series.
// The series is capped; the oldest points fall off first.
func (ss *ScoresStore) SetScore(userID string, score *engagement.Score) {
	start := time.Now()
	ss.mu.Lock()
	ss.scores[userID] = &types.ScoreEntry{Score: score, StoredAt: time.Now().UTC()}

	series := append(ss.history[userID], engagement.HistoryPoint{
		Timestamp: score.ComputedAt,
		Score:     score.Total,
	})
	if len(series) > ss.maxHistory {
		series = series[len(series)-ss.maxHistory:]
	}
	ss.history[userID] = series
	ss.mu.Unlock()

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "set", "type", "score", "userId", logging.SanitizeUserID(userID), "total", score.Total, "historyPoints", len(series), "duration", time.Since(start))
	}
}

// GetSegment retrieves a cached segment if it is younger than the TTL
func (ss *ScoresStore) GetSegment(userID string, ttl time.Duration) (*engagement.Segment, bool) {
	ss.mu.RLock()
	entry, found := ss.segments[userID]
	ss.mu.RUnlock()

	if !found || time.Since(entry.StoredAt) > ttl {
		return nil, false
	}
	return entry.Segment, true
}

// SetSegment caches a segment classification
func (ss *ScoresStore) SetSegment(userID string, segment *engagement.Segment) {
	ss.mu.Lock()
	ss.segments[userID] = &types.SegmentEntry{Segment: segment, StoredAt: time.Now().UTC()}
	ss.mu.Unlock()

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "set", "type", "segment", "userId", logging.SanitizeUserID(userID), "segment", segment.Segment)
	}
}

// GetHistory returns a copy of the user's score history series, oldest first
func (ss *ScoresStore) GetHistory(userID string) []engagement.HistoryPoint {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	series := ss.history[userID]
	out := make([]engagement.HistoryPoint, len(series))
	copy(out, series)
	return out
}

// Invalidate drops the cached score and segment for a user. History survives
// invalidation so trends keep their series.
func (ss *ScoresStore) Invalidate(userID string) {
	ss.mu.Lock()
	delete(ss.scores, userID)
	delete(ss.segments, userID)
	ss.mu.Unlock()

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "invalidate", "type", "score", "userId", logging.SanitizeUserID(userID))
	}
}

// PurgeExpired removes score and segment entries older than their TTLs
func (ss *ScoresStore) PurgeExpired(scoreTTL, segmentTTL time.Duration) int {
	start := time.Now()
	now := time.Now()

	ss.mu.Lock()
	defer ss.mu.Unlock()

	removed := 0
	for userID, entry := range ss.scores {
		if now.Sub(entry.StoredAt) > scoreTTL {
			delete(ss.scores, userID)
			removed++
		}
	}
	for userID, entry := range ss.segments {
		if now.Sub(entry.StoredAt) > segmentTTL {
			delete(ss.segments, userID)
			removed++
		}
	}

	if removed > 0 && ss.logger != nil {
		ss.logger.Cache().Info("Expired score entries purged", "removed", removed, "duration", time.Since(start))
	}
	return removed
}
