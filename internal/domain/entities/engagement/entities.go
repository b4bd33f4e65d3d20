// Package engagement provides the derived engagement domain entities
package engagement

import "time"

// UserProfile aggregates a user's historical events into a structured
// interaction profile. Derived, never persisted; safe to recompute.
type UserProfile struct {
	UserID               string         `json:"userId"`
	SessionCount         int            `json:"sessionCount"`
	EventCount           int            `json:"eventCount"`
	AvgEventsPerSession  float64        `json:"avgEventsPerSession"`
	InteractionTypeCounts map[string]int `json:"interactionTypes"`
	LastActiveTime       time.Time      `json:"lastActiveTime"`
}

// ComponentScores holds the four normalized component scores, each in [0,100].
type ComponentScores struct {
	Activity    int `json:"activityLevel"`
	Interaction int `json:"contentInteraction"`
	Social      int `json:"socialEngagement"`
	Frequency   int `json:"sessionFrequency"`
}

// Weights holds the component weights. Must sum to 1.0.
type Weights struct {
	Activity    float64 `json:"activity"`
	Interaction float64 `json:"interaction"`
	Social      float64 `json:"social"`
	Frequency   float64 `json:"frequency"`
}

// Score is a computed engagement score on a 0-100 scale.
type Score struct {
	UserID     string          `json:"userId"`
	Total      int             `json:"total"`
	Components ComponentScores `json:"components"`
	Weights    Weights         `json:"weights"`
	ComputedAt time.Time       `json:"computedAt"`
}

// Segment labels in descending engagement order.
const (
	SegmentPowerUser = "power-user"
	SegmentActive    = "active"
	SegmentCasual    = "casual"
	SegmentDormant   = "dormant"
)

// Segment classifies a user by engagement score.
type Segment struct {
	UserID          string    `json:"userId"`
	Segment         string    `json:"segment"`
	Score           int       `json:"score"`
	Confidence      float64   `json:"confidence"`
	Characteristics []string  `json:"characteristics"`
	ComputedAt      time.Time `json:"computedAt"`
}

// HistoryPoint is one entry in a user's append-only score series.
type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Score     int       `json:"score"`
}

// Trend classifications.
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// TrendSummary reports recent-vs-older score movement for a user.
type TrendSummary struct {
	UserID           string         `json:"userId"`
	Trend            string         `json:"trend"`
	ChangePercentage int            `json:"changePercentage"`
	RecentAverage    int            `json:"recentAverage"`
	OlderAverage     int            `json:"olderAverage"`
	DataPoints       []HistoryPoint `json:"dataPoints,omitempty"`
	ComputedAt       time.Time      `json:"computedAt"`
}

// TypeCount pairs an interaction category with its occurrence count.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// InteractionPatterns summarizes a user's interaction behavior.
type InteractionPatterns struct {
	UserID               string      `json:"userId"`
	FavoriteContentTypes []TypeCount `json:"favoriteContentTypes"`
	InteractionFrequency string      `json:"interactionFrequency"`
	SessionCount         int         `json:"sessionCount"`
	AvgEventsPerSession  float64     `json:"avgEventsPerSession"`
	LastActiveTime       time.Time   `json:"lastActiveTime"`
}

// Comparison positions a user's score against the population average.
type Comparison struct {
	UserID       string `json:"userId"`
	UserScore    int    `json:"userScore"`
	AverageScore int    `json:"averageScore"`
	Difference   int    `json:"difference"`
	Percentile   int    `json:"percentile"`
	Status       string `json:"status"`
}

// LifetimeValue is the churn/LTV heuristic derived from the engagement score.
type LifetimeValue struct {
	UserID          string     `json:"userId"`
	EstimatedLTV    int        `json:"estimatedLTV"`
	EngagementScore int        `json:"engagementScore"`
	ChurnRiskScore  float64    `json:"churnRiskScore"`
	PredictedChurn  *time.Time `json:"predictedChurnDate,omitempty"`
	Recommendation  string     `json:"recommendation"`
}
