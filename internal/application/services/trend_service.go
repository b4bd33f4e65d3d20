// Package services provides engagement trend analysis
package services

import (
	"math"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/entities/engagement"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/manager"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
)

// TrendService classifies score movement from a user's history series.
type TrendService struct {
	cache       *manager.Manager
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewTrendService creates a new trend service with its dependencies.
func NewTrendService(cache *manager.Manager, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *TrendService {
	return &TrendService{
		cache:       cache,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Analyze compares the recent window of the history series against the
// window before it. Fewer than two points is a sentinel outcome, not an
// error.
func (s *TrendService) Analyze(userID string) *engagement.TrendSummary {
	marker := s.perfTracker.StartOperation("analytics:trend_analysis")
	defer s.perfTracker.CompleteOperation(marker)

	history := s.cache.GetScoreHistory(userID)
	summary := AnalyzeTrend(userID, history)

	marker.AddMetadata("dataPoints", len(history))
	s.logger.Analytics().Debug("Trend analyzed",
		"userId", logging.SanitizeUserID(userID),
		"trend", summary.Trend,
		"change", summary.ChangePercentage)
	return summary
}

// AnalyzeTrend runs the recent-vs-older window comparison over a history
// series, oldest first.
func AnalyzeTrend(userID string, history []engagement.HistoryPoint) *engagement.TrendSummary {
	summary := &engagement.TrendSummary{
		UserID:     userID,
		Trend:      engagement.TrendInsufficientData,
		ComputedAt: time.Now().UTC(),
	}

	if len(history) < 2 {
		return summary
	}

	recent := history[maxInt(0, len(history)-10):]
	older := history[maxInt(0, len(history)-20) : len(history)-len(recent)]

	recentAvg := averageScore(recent)
	olderAvg := averageScore(older)

	summary.RecentAverage = int(math.Round(recentAvg))
	summary.OlderAverage = int(math.Round(olderAvg))
	summary.DataPoints = recent

	// Flat baseline: no movement to classify.
	if olderAvg == 0 {
		summary.Trend = engagement.TrendStable
		summary.ChangePercentage = 0
		return summary
	}

	change := (recentAvg - olderAvg) / olderAvg * 100
	summary.ChangePercentage = int(math.Round(change))

	switch {
	case change > 10:
		summary.Trend = engagement.TrendImproving
	case change < -10:
		summary.Trend = engagement.TrendDeclining
	default:
		summary.Trend = engagement.TrendStable
	}

	return summary
}

func averageScore(points []engagement.HistoryPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	sum := 0
	for _, p := range points {
		sum += p.Score
	}
	return float64(sum) / float64(len(points))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
