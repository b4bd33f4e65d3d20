// Package types defines the cache entry shapes shared by the cache stores.
package types

import (
	"sync"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/entities/content"
	"github.com/pulsekit/pulse-go/internal/domain/entities/engagement"
)

// SessionData holds the live state of a tracked session.
type SessionData struct {
	Mu               sync.RWMutex `json:"-"`
	SessionID        string       `json:"sessionId"`
	UserID           string       `json:"userId,omitempty"`
	StartTime        time.Time    `json:"startTime"`
	LastActivityTime time.Time    `json:"lastActivityTime"`
	EventCount       int          `json:"eventCount"`
	Ended            bool         `json:"ended"`
	EndTime          time.Time    `json:"endTime,omitempty"`
}

// ScoreEntry is a cached engagement score with its storage timestamp.
type ScoreEntry struct {
	Score    *engagement.Score
	StoredAt time.Time
}

// SegmentEntry is a cached segment classification with its storage timestamp.
type SegmentEntry struct {
	Segment  *engagement.Segment
	StoredAt time.Time
}

// RecommendationEntry is a cached ranked recommendation list.
type RecommendationEntry struct {
	Recommendations []content.Recommendation
	StoredAt        time.Time
}
