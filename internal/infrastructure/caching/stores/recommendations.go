// Package stores provides concrete cache store implementations
package stores

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/entities/content"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/types"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
)

// RecommendationsStore implements recommendation result caching keyed by
// user, request context, and limit.
type RecommendationsStore struct {
	entries map[string]*types.RecommendationEntry
	mu      sync.RWMutex
	logger  *logging.ChanneledLogger
}

// NewRecommendationsStore creates a new recommendations cache store
func NewRecommendationsStore(logger *logging.ChanneledLogger) *RecommendationsStore {
	if logger != nil {
		logger.Cache().Info("Initializing recommendations cache store")
	}
	return &RecommendationsStore{
		entries: make(map[string]*types.RecommendationEntry),
		logger:  logger,
	}
}

// Key builds the cache key for a recommendation request
func (rs *RecommendationsStore) Key(userID, requestContext string, limit int) string {
	return fmt.Sprintf("%s:%s:%d", userID, requestContext, limit)
}

// Get retrieves cached recommendations if they are younger than the TTL
func (rs *RecommendationsStore) Get(key string, ttl time.Duration) ([]content.Recommendation, bool) {
	start := time.Now()
	rs.mu.RLock()
	entry, found := rs.entries[key]
	rs.mu.RUnlock()

	if found && time.Since(entry.StoredAt) > ttl {
		found = false
	}

	if rs.logger != nil {
		rs.logger.Cache().Debug("Cache operation", "operation", "get", "type", "recommendations", "key", key, "hit", found, "duration", time.Since(start))
	}
	if !found {
		return nil, false
	}
	return entry.Recommendations, true
}

// Set caches a ranked recommendation list
func (rs *RecommendationsStore) Set(key string, recommendations []content.Recommendation) {
	rs.mu.Lock()
	rs.entries[key] = &types.RecommendationEntry{
		Recommendations: recommendations,
		StoredAt:        time.Now().UTC(),
	}
	rs.mu.Unlock()

	if rs.logger != nil {
		rs.logger.Cache().Debug("Cache operation", "operation", "set", "type", "recommendations", "key", key, "count", len(recommendations))
	}
}

// InvalidateUser drops all cached recommendation lists for a user
func (rs *RecommendationsStore) InvalidateUser(userID string) {
	prefix := userID + ":"

	rs.mu.Lock()
	removed := 0
	for key := range rs.entries {
		if strings.HasPrefix(key, prefix) {
			delete(rs.entries, key)
			removed++
		}
	}
	rs.mu.Unlock()

	if removed > 0 && rs.logger != nil {
		rs.logger.Cache().Debug("Cache operation", "operation", "invalidate", "type", "recommendations", "userId", logging.SanitizeUserID(userID), "removed", removed)
	}
}

// PurgeExpired removes recommendation entries older than the TTL
func (rs *RecommendationsStore) PurgeExpired(ttl time.Duration) int {
	start := time.Now()
	now := time.Now()

	rs.mu.Lock()
	defer rs.mu.Unlock()

	removed := 0
	for key, entry := range rs.entries {
		if now.Sub(entry.StoredAt) > ttl {
			delete(rs.entries, key)
			removed++
		}
	}

	if removed > 0 && rs.logger != nil {
		rs.logger.Cache().Info("Expired recommendation entries purged", "removed", removed, "duration", time.Since(start))
	}
	return removed
}
